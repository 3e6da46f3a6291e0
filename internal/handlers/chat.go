package handlers

import (
	"context"
	"net/http"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

type tutorService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatMessage, error)
	Explain(ctx context.Context, req models.ExplainRequest) (string, error)
	Practice(ctx context.Context, req models.PracticeRequest) ([]models.PracticeQuestion, error)
}

type TutorHandler struct {
	tutor tutorService
	log   *logger.Logger
}

func NewTutorHandler(tutor tutorService, log *logger.Logger) *TutorHandler {
	return &TutorHandler{tutor: tutor, log: log}
}

// Chat answers one message and returns the stored assistant message.
func (h *TutorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.tutor.Chat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}
