package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExplanationCache keeps processed term explanations in redis, keyed by the
// term and the system prompt that produced them.
type ExplanationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewExplanationCache(rdb *redis.Client, ttl time.Duration) *ExplanationCache {
	return &ExplanationCache{rdb: rdb, ttl: ttl}
}

func explanationKey(term, systemPrompt string) string {
	sum := sha256.Sum256([]byte(term + "\x00" + systemPrompt))
	return "explain:" + hex.EncodeToString(sum[:])
}

func (c *ExplanationCache) Get(ctx context.Context, term, systemPrompt string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, explanationKey(term, systemPrompt)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *ExplanationCache) Set(ctx context.Context, term, systemPrompt, explanation string) error {
	return c.rdb.Set(ctx, explanationKey(term, systemPrompt), explanation, c.ttl).Err()
}
