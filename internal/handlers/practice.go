package handlers

import (
	"net/http"

	"hoctap-backend/internal/models"
)

func (h *TutorHandler) Practice(w http.ResponseWriter, r *http.Request) {
	var req models.PracticeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	questions, err := h.tutor.Practice(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PracticeResponse{Questions: questions})
}
