package handlers

import (
	"net/http"

	"hoctap-backend/internal/models"
)

func (h *TutorHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req models.ExplainRequest
	if !decodeBody(w, r, &req) {
		return
	}

	explanation, err := h.tutor.Explain(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ExplainResponse{Explanation: explanation})
}
