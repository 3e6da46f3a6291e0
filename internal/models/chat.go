package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	ActionComplete = "complete"
	ActionConcise  = "concise"
	ActionHint     = "hint"
)

// ChatMessage is one entry of the message log. Content is always an HTML
// fragment. Messages are never edited after they are saved.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Action    *string   `json:"action,omitempty"`
	ImageData *string   `json:"imageData,omitempty"`
}

// Validate checks the message against the log schema.
func (m *ChatMessage) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return fmt.Errorf("invalid role %q", m.Role)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if m.Action != nil && !IsValidAction(*m.Action) {
		return fmt.Errorf("invalid action %q", *m.Action)
	}
	return nil
}

// IsValidAction reports whether action is one of the tutoring modes.
func IsValidAction(action string) bool {
	switch action {
	case ActionComplete, ActionConcise, ActionHint:
		return true
	}
	return false
}

// ChatRequest is the payload of POST /api/chat.
type ChatRequest struct {
	Message      string  `json:"message"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
	Action       *string `json:"action,omitempty"`
	ImageData    string  `json:"imageData,omitempty"`
}

// ExplainRequest is the payload of POST /api/explain.
type ExplainRequest struct {
	Term         string `json:"term"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// ExplainResponse carries the processed explanation HTML.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// MessagesResponse lists the message log.
type MessagesResponse struct {
	Messages []*ChatMessage `json:"messages"`
}
