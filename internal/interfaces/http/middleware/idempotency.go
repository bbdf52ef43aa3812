package middleware

import (
	"bytes"
	"context"
	"net/http"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/repository"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader carries the client's key for a create request.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"
)

// Idempotency replays the first successful response of a keyed request. Requests
// without the header, or without a signed-in user, pass straight through.
func Idempotency(store repository.IdempotencyStore, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(IdempotencyKeyHeader)
			user, err := auth.GetUserFromContext(r.Context())
			if raw == "" || err != nil {
				next.ServeHTTP(w, r)
				return
			}

			key := repository.NewIdempotencyKey(user.ID, r.Method+" "+r.URL.Path, raw)
			stored, found, err := store.Get(r.Context(), key)
			if err != nil {
				logger.Warn("Idempotency lookup failed", zap.String("user_id", user.ID), zap.Error(err))
			}
			if found {
				if stored.ContentType != "" {
					w.Header().Set("Content-Type", stored.ContentType)
				}
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(stored.StatusCode)
				_, _ = w.Write(stored.Body)
				return
			}

			var body bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status < http.StatusOK || status >= http.StatusMultipleChoices {
				return
			}
			resp := repository.StoredResponse{
				StatusCode:  status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
			}
			if err := store.Store(context.WithoutCancel(r.Context()), key, resp); err != nil {
				logger.Warn("Failed to store idempotent response", zap.String("user_id", user.ID), zap.Error(err))
			}
		})
	}
}
