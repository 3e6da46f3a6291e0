package services

import (
	"context"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/repository"
)

const WelcomeMessage = `<p>Xin chào! Tôi là trợ lý học tập AI bằng tiếng Việt. Tôi có thể giúp bạn:</p><ul class="list-disc pl-5 mt-2"><li>Giải bài tập đầy đủ</li><li>Giải bài tập rút gọn</li><li>Gợi ý hướng làm bài</li><li>Giải bài tập từ ảnh (dùng nút tải ảnh bên dưới)</li></ul><p class="mt-2">Hãy nhập bài tập của bạn hoặc tải ảnh lên để bắt đầu!</p>`

// Publisher fans log events out to live listeners.
type Publisher interface {
	Publish(ctx context.Context, msg models.WSMessage)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.WSMessage) {}

// ChatLog wraps a MessageRepository with the welcome message and live feed
// events. Repository failures come back as *StorageError.
type ChatLog struct {
	repo      repository.MessageRepository
	publisher Publisher
	log       *logger.Logger
}

func NewChatLog(repo repository.MessageRepository, publisher Publisher, log *logger.Logger) *ChatLog {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &ChatLog{repo: repo, publisher: publisher, log: log}
}

func welcome() *models.ChatMessage {
	return &models.ChatMessage{Role: models.RoleAssistant, Content: WelcomeMessage}
}

// Ensure seeds the welcome message into an empty log. Concurrent callers
// seed it at most once.
func (l *ChatLog) Ensure(ctx context.Context) error {
	seeded, err := l.repo.SaveIfEmpty(ctx, welcome())
	if err != nil {
		return &StorageError{Err: err}
	}
	if seeded {
		l.log.Debug("Seeded welcome message")
	}
	return nil
}

// Append saves msgs atomically and announces each one.
func (l *ChatLog) Append(ctx context.Context, msgs ...*models.ChatMessage) error {
	if err := l.repo.SaveAll(ctx, msgs); err != nil {
		return &StorageError{Err: err}
	}
	for _, m := range msgs {
		l.publisher.Publish(ctx, models.WSMessage{Type: models.EventMessageCreated, Payload: m})
	}
	return nil
}

// List returns the log, seeding the welcome message first if it is empty.
func (l *ChatLog) List(ctx context.Context) ([]*models.ChatMessage, error) {
	if err := l.Ensure(ctx); err != nil {
		return nil, err
	}
	msgs, err := l.repo.List(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return msgs, nil
}

// Reset clears the log back to the single welcome message.
func (l *ChatLog) Reset(ctx context.Context) ([]*models.ChatMessage, error) {
	if err := l.repo.Clear(ctx); err != nil {
		return nil, &StorageError{Err: err}
	}
	if _, err := l.repo.SaveIfEmpty(ctx, welcome()); err != nil {
		return nil, &StorageError{Err: err}
	}
	msgs, err := l.repo.List(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	l.log.Info("Message log reset")
	l.publisher.Publish(ctx, models.WSMessage{Type: models.EventMessagesCleared, Payload: msgs})
	return msgs, nil
}
