package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "ideas-backend/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorTypes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		check  func(error) bool
	}{
		{"validation", apperrors.NewValidationError("bad"), http.StatusBadRequest, apperrors.IsValidation},
		{"not found", apperrors.NewNotFoundError("Idea"), http.StatusNotFound, apperrors.IsNotFound},
		{"unauthorized", apperrors.NewUnauthorizedError(""), http.StatusUnauthorized, apperrors.IsUnauthorized},
		{"unavailable", apperrors.NewUnavailableError("supabase"), http.StatusServiceUnavailable, apperrors.IsUnavailable},
		{"timeout", apperrors.NewTimeoutError("select"), http.StatusGatewayTimeout, apperrors.IsTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.status, apperrors.GetHTTPStatus(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("Should keep the type of a wrapped AppError", func(t *testing.T) {
		base := apperrors.NewValidationError("Invalid input data", apperrors.FieldError{Field: "name", Rule: "required"})
		wrapped := apperrors.Wrap(base, "create topic")

		assert.True(t, apperrors.IsValidation(wrapped))
		assert.Len(t, apperrors.GetFields(wrapped), 1)
		assert.True(t, stderrors.Is(wrapped, base))
	})

	t.Run("Should classify plain errors as internal", func(t *testing.T) {
		wrapped := apperrors.Wrap(fmt.Errorf("boom"), "list ideas")

		assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetType(wrapped))
		assert.Equal(t, http.StatusInternalServerError, apperrors.GetHTTPStatus(wrapped))
	})

	t.Run("Should return nil for nil", func(t *testing.T) {
		assert.Nil(t, apperrors.Wrap(nil, "noop"))
	})

	t.Run("Should be found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("lookup: %w", apperrors.NewNotFoundError("Idea topic"))
		assert.True(t, apperrors.IsNotFound(err))
	})
}
