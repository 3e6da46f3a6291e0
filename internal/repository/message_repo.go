package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hoctap-backend/internal/models"
)

// ErrInvalidMessage is wrapped by every repository when a message fails
// models.ChatMessage.Validate. Nothing is written in that case.
var ErrInvalidMessage = errors.New("invalid message")

// MessageRepository is the append-only chat message log.
type MessageRepository interface {
	Save(ctx context.Context, m *models.ChatMessage) error
	// SaveAll writes every message or none of them.
	SaveAll(ctx context.Context, msgs []*models.ChatMessage) error
	// SaveIfEmpty writes m only when the log holds no messages, reporting
	// whether it did. The check and the write are atomic.
	SaveIfEmpty(ctx context.Context, m *models.ChatMessage) (bool, error)
	// List returns messages oldest first.
	List(ctx context.Context) ([]*models.ChatMessage, error)
	Clear(ctx context.Context) error
}

// prepare fills in the ID and timestamp when unset and validates each message.
func prepare(msgs ...*models.ChatMessage) error {
	for i, m := range msgs {
		if m == nil {
			return fmt.Errorf("%w: message %d is nil", ErrInvalidMessage, i)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	}
	for _, m := range msgs {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now().UTC()
		}
	}
	return nil
}

// MemoryMessageRepo keeps the log in process memory. With a positive
// capacity the oldest messages are evicted first.
type MemoryMessageRepo struct {
	mu       sync.RWMutex
	messages []*models.ChatMessage
	capacity int
}

func NewMemoryMessageRepo(capacity int) *MemoryMessageRepo {
	return &MemoryMessageRepo{capacity: capacity}
}

func (r *MemoryMessageRepo) Save(ctx context.Context, m *models.ChatMessage) error {
	return r.SaveAll(ctx, []*models.ChatMessage{m})
}

func (r *MemoryMessageRepo) SaveAll(_ context.Context, msgs []*models.ChatMessage) error {
	if err := prepare(msgs...); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range msgs {
		stored := *m
		r.messages = append(r.messages, &stored)
	}
	if r.capacity > 0 && len(r.messages) > r.capacity {
		overflow := len(r.messages) - r.capacity
		r.messages = append([]*models.ChatMessage(nil), r.messages[overflow:]...)
	}
	return nil
}

func (r *MemoryMessageRepo) SaveIfEmpty(_ context.Context, m *models.ChatMessage) (bool, error) {
	if err := prepare(m); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) > 0 {
		return false, nil
	}
	stored := *m
	r.messages = append(r.messages, &stored)
	return true, nil
}

func (r *MemoryMessageRepo) List(_ context.Context) ([]*models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ChatMessage, len(r.messages))
	for i, m := range r.messages {
		c := *m
		out[i] = &c
	}
	return out, nil
}

func (r *MemoryMessageRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
	return nil
}
