package handlers

import (
	"context"
	"net/http"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

type messageLog interface {
	List(ctx context.Context) ([]*models.ChatMessage, error)
	Reset(ctx context.Context) ([]*models.ChatMessage, error)
}

type MessageHandler struct {
	chatLog messageLog
	log     *logger.Logger
}

func NewMessageHandler(chatLog messageLog, log *logger.Logger) *MessageHandler {
	return &MessageHandler{chatLog: chatLog, log: log}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chatLog.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessagesResponse{Messages: msgs})
}

// Clear resets the log to the welcome message and returns it.
func (h *MessageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chatLog.Reset(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessagesResponse{Messages: msgs})
}
