// Package handlers provides the HTTP handlers of the ideas API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/domain/idea"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/validation"
	"ideas-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and checks its validation tags.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		api.ValidationFailed(w, validation.InvalidInputMessage, apperrors.GetFields(err))
		return false
	}
	return true
}

// pathID returns the {id} path parameter when it is a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		api.ValidationFailed(w, validation.InvalidInputMessage, []apperrors.FieldError{
			{Field: "id", Rule: "uuid", Message: "id must be a valid UUID"},
		})
		return "", false
	}
	return id.String(), true
}

// listFilter reads ?search= and ?tags=a,b.
func listFilter(r *http.Request) idea.ListFilter {
	q := r.URL.Query()
	filter := idea.ListFilter{Search: q.Get("search")}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}
	return filter
}

func currentUser(r *http.Request) *auth.User {
	user, _ := auth.GetUserFromContext(r.Context())
	return user
}

// respondError maps a service error onto the response. action completes the
// generic "Failed to ..." message; resource names the entity for 404s.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, action, resource string) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if user := currentUser(r); user != nil {
		fields = append(fields, zap.String("user_id", user.ID))
	}
	if id := chi.URLParam(r, "id"); id != "" {
		fields = append(fields, zap.String("resource_id", id))
	}

	switch apperrors.GetType(err) {
	case apperrors.ErrorTypeValidation:
		message := validation.InvalidInputMessage
		details := apperrors.GetFields(err)
		var appErr *apperrors.AppError
		if len(details) == 0 && errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
		api.ValidationFailed(w, message, details)
	case apperrors.ErrorTypeNotFound:
		api.Error(w, http.StatusNotFound, resource+" not found")
	case apperrors.ErrorTypeUnauthorized:
		api.Error(w, http.StatusUnauthorized, auth.MessageAuthenticationRequired)
	case apperrors.ErrorTypeUnavailable:
		logger.Warn("Backend unavailable", fields...)
		api.Error(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	case apperrors.ErrorTypeTimeout:
		logger.Warn("Backend timed out", fields...)
		api.Error(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.Error("Request failed", fields...)
		api.Error(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
