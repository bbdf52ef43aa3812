package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "ideas-backend/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestResponses(t *testing.T) {
	t.Run("Should write JSON with the status", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Success(rec, http.StatusCreated, map[string]string{"id": "1"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
	})

	t.Run("Should omit details on plain errors", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Error(rec, http.StatusNotFound, "Idea not found")

		assert.JSONEq(t, `{"error":"Idea not found"}`, rec.Body.String())
	})

	t.Run("Should list failed fields", func(t *testing.T) {
		rec := httptest.NewRecorder()

		ValidationFailed(rec, "Invalid input data", []apperrors.FieldError{
			{Field: "rating", Rule: "max", Message: "rating must be at most 5"},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid input data","details":[{"field":"rating","rule":"max","message":"rating must be at most 5"}]}`, rec.Body.String())
	})
}

func TestSwaggerHandler_NothingRegistered(t *testing.T) {
	rec := httptest.NewRecorder()

	SwaggerHandler()(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
