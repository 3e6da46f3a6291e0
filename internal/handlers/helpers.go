package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
	"hoctap-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Error.Fields = fields
	return resp
}

// decodeBody reads a JSON body, writing the 400/413 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("PAYLOAD_TOO_LARGE", "Request body is too large", r))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	return true
}

// handleServiceError maps service errors to responses. Upstream and storage
// causes are logged, never returned.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var (
		validationErr *services.ValidationError
		upstreamErr   *services.UpstreamError
		emptyErr      *services.EmptyResponseError
		storageErr    *services.StorageError
	)
	reqLog := log.With("request_id", r.Header.Get("X-Request-ID"), "path", r.URL.Path)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", firstFieldMessage(validationErr), validationErr.Fields, r))
	case errors.As(err, &upstreamErr):
		reqLog.Error("Model call failed", "timeout", upstreamErr.Timeout, "error", upstreamErr.Err)
		if upstreamErr.Timeout {
			resp := errorResp("AI_TIMEOUT", "The AI service took too long to respond", r)
			resp.Error.Retryable = true
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to generate response", r))
	case errors.As(err, &emptyErr):
		reqLog.Warn("Model returned an empty response")
		resp := errorResp("AI_EMPTY_RESPONSE", "The AI service returned an empty response", r)
		resp.RawResponse = emptyErr.Raw
		writeJSON(w, http.StatusInternalServerError, resp)
	case errors.As(err, &storageErr):
		reqLog.Error("Message log failure", "error", storageErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorResp("STORAGE_ERROR", "Failed to save messages", r))
	default:
		reqLog.Error("Unexpected error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// firstFieldMessage picks a stable human message for a validation error.
func firstFieldMessage(e *services.ValidationError) string {
	for _, key := range []string{"message", "term", "subject", "grade", "action", "imageData"} {
		if msg, ok := e.Fields[key]; ok {
			return msg
		}
	}
	return "Validation failed"
}
