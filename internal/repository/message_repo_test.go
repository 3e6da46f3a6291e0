package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"hoctap-backend/internal/models"
)

func msg(role, content string) *models.ChatMessage {
	return &models.ChatMessage{Role: role, Content: content}
}

func TestMemoryMessageRepo_SaveAssignsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	m := msg(models.RoleUser, "<p>xin chào</p>")

	if err := repo.Save(context.Background(), m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("Expected ID to be assigned")
	}
	if m.Timestamp.IsZero() {
		t.Error("Expected timestamp to be assigned")
	}
}

func TestMemoryMessageRepo_ListKeepsOrder(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, msg(models.RoleUser, fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, _ := repo.List(ctx)
	if len(got) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(got))
	}
	for i, m := range got {
		if want := fmt.Sprintf("m%d", i); m.Content != want {
			t.Errorf("Expected %q at %d, got %q", want, i, m.Content)
		}
	}
}

func TestMemoryMessageRepo_SaveAllIsAllOrNothing(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()

	err := repo.SaveAll(ctx, []*models.ChatMessage{
		msg(models.RoleUser, "hỏi"),
		msg("robot", "đáp"),
	})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("Expected ErrInvalidMessage, got %v", err)
	}

	got, _ := repo.List(ctx)
	if len(got) != 0 {
		t.Errorf("Expected nothing written, got %d messages", len(got))
	}
}

func TestMemoryMessageRepo_RejectsInvalid(t *testing.T) {
	bad := "essay"
	tests := []struct {
		name string
		m    *models.ChatMessage
	}{
		{"nil message", nil},
		{"empty content", msg(models.RoleAssistant, "   ")},
		{"unknown role", msg("admin", "x")},
		{"unknown action", &models.ChatMessage{Role: models.RoleUser, Content: "x", Action: &bad}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewMemoryMessageRepo(0)
			if err := repo.Save(context.Background(), tc.m); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("Expected ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestMemoryMessageRepo_CapacityEvictsOldest(t *testing.T) {
	repo := NewMemoryMessageRepo(2)
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c"} {
		repo.Save(ctx, msg(models.RoleUser, c))
	}

	got, _ := repo.List(ctx)
	if len(got) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got))
	}
	if got[0].Content != "b" || got[1].Content != "c" {
		t.Errorf("Expected [b c], got [%s %s]", got[0].Content, got[1].Content)
	}
}

func TestMemoryMessageRepo_ListReturnsCopies(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()
	repo.Save(ctx, msg(models.RoleUser, "gốc"))

	got, _ := repo.List(ctx)
	got[0].Content = "sửa"

	again, _ := repo.List(ctx)
	if again[0].Content != "gốc" {
		t.Errorf("Expected stored message untouched, got %q", again[0].Content)
	}
}

func TestMemoryMessageRepo_Clear(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()
	repo.Save(ctx, msg(models.RoleUser, "x"))

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, _ := repo.List(ctx)
	if len(got) != 0 {
		t.Errorf("Expected empty log, got %d", len(got))
	}
}

func TestMemoryMessageRepo_ConcurrentSaves(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo.SaveAll(ctx, []*models.ChatMessage{
				msg(models.RoleUser, fmt.Sprintf("q%d", i)),
				msg(models.RoleAssistant, fmt.Sprintf("a%d", i)),
			})
		}(i)
	}
	wg.Wait()

	got, _ := repo.List(ctx)
	if len(got) != 100 {
		t.Fatalf("Expected 100 messages, got %d", len(got))
	}
	// Pairs are written under one lock, so each answer follows its question.
	for i := 0; i < len(got); i += 2 {
		if got[i].Content[1:] != got[i+1].Content[1:] {
			t.Errorf("Expected pair at %d, got %q and %q", i, got[i].Content, got[i+1].Content)
		}
	}
}

func TestMemoryMessageRepo_SaveIfEmpty(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()

	saved, err := repo.SaveIfEmpty(ctx, msg(models.RoleAssistant, "<p>chào</p>"))
	if err != nil || !saved {
		t.Fatalf("Expected first seed to be saved, got saved=%v err=%v", saved, err)
	}
	saved, err = repo.SaveIfEmpty(ctx, msg(models.RoleAssistant, "<p>chào</p>"))
	if err != nil || saved {
		t.Fatalf("Expected second seed to be skipped, got saved=%v err=%v", saved, err)
	}

	if _, err := repo.SaveIfEmpty(ctx, msg("admin", "x")); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("Expected ErrInvalidMessage, got %v", err)
	}
}

func TestMemoryMessageRepo_ConcurrentSaveIfEmpty(t *testing.T) {
	repo := NewMemoryMessageRepo(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.SaveIfEmpty(ctx, msg(models.RoleAssistant, "<p>chào</p>"))
		}()
	}
	wg.Wait()

	got, _ := repo.List(ctx)
	if len(got) != 1 {
		t.Errorf("Expected exactly one seeded message, got %d", len(got))
	}
}

func TestExplanationKey(t *testing.T) {
	a := explanationKey("đạo hàm", "")
	if a != explanationKey("đạo hàm", "") {
		t.Error("Expected key to be deterministic")
	}
	if a == explanationKey("đạo hàm", "ngắn gọn") {
		t.Error("Expected system prompt to change the key")
	}
	if a == explanationKey("đạo hàm\x00", "") {
		t.Error("Expected separator to keep term and prompt apart")
	}
}
