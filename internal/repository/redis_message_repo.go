package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hoctap-backend/internal/models"
)

const messageLogKey = "chat:messages"

// RedisMessageRepo stores the log as a JSON list shared by every instance.
// A positive capacity trims the oldest entries after each write.
type RedisMessageRepo struct {
	rdb      *redis.Client
	capacity int
}

func NewRedisMessageRepo(rdb *redis.Client, capacity int) *RedisMessageRepo {
	return &RedisMessageRepo{rdb: rdb, capacity: capacity}
}

func (r *RedisMessageRepo) Save(ctx context.Context, m *models.ChatMessage) error {
	return r.SaveAll(ctx, []*models.ChatMessage{m})
}

func (r *RedisMessageRepo) SaveAll(ctx context.Context, msgs []*models.ChatMessage) error {
	if err := prepare(msgs...); err != nil {
		return err
	}

	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		values = append(values, data)
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, messageLogKey, values...)
		if r.capacity > 0 {
			pipe.LTrim(ctx, messageLogKey, int64(-r.capacity), -1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	return nil
}

// SaveIfEmpty watches the log key so a concurrent write aborts the seed; the
// loser of that race sees a non-empty log on retry.
func (r *RedisMessageRepo) SaveIfEmpty(ctx context.Context, m *models.ChatMessage) (bool, error) {
	if err := prepare(m); err != nil {
		return false, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("failed to encode message: %w", err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		var saved bool
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.LLen(ctx, messageLogKey).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.RPush(ctx, messageLogKey, data)
				return nil
			})
			saved = err == nil
			return err
		}, messageLogKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to seed message log: %w", err)
		}
		return saved, nil
	}
	return false, fmt.Errorf("failed to seed message log: %w", redis.TxFailedErr)
}

func (r *RedisMessageRepo) List(ctx context.Context) ([]*models.ChatMessage, error) {
	raw, err := r.rdb.LRange(ctx, messageLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	messages := make([]*models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		m := &models.ChatMessage{}
		if err := json.Unmarshal([]byte(item), m); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *RedisMessageRepo) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, messageLogKey).Err()
}
