package api

import (
	"encoding/json"
	"net/http"

	apperrors "ideas-backend/internal/errors"
)

// Success sends a JSON response with the given status.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error sends {"error": message}.
func Error(w http.ResponseWriter, statusCode int, message string) {
	Success(w, statusCode, ErrorResponse{Error: message})
}

// ValidationFailed sends a 400 listing every failed field.
func ValidationFailed(w http.ResponseWriter, message string, fields []apperrors.FieldError) {
	Success(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: fields})
}
