// Package middleware holds the HTTP middleware of the ideas API.
package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"ideas-backend/internal/auth"
	"ideas-backend/internal/config"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/pkg/api"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Gate resolves the session user and keeps anonymous callers out of protected paths.
type Gate struct {
	authenticator auth.Authenticator
	cfg           config.Auth
	logger        *zap.Logger
}

// NewGate creates the path-prefix authentication gate.
func NewGate(authenticator auth.Authenticator, cfg config.Auth, logger *zap.Logger) *Gate {
	return &Gate{authenticator: authenticator, cfg: cfg, logger: logger}
}

// Handler applies the gate:
//   - anonymous request to a protected /api path: 401 JSON
//   - anonymous request to another protected path: 302 to the login page
//   - signed-in request to an auth page: 302 to the home page
//
// Everything else passes through, with the user in the context when one was resolved.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		user, err := g.resolve(r)
		if err != nil {
			g.logger.Error("Session lookup failed",
				zap.String("path", path),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
				zap.Error(err),
			)
			if matchesAny(path, g.cfg.ProtectedPaths) {
				api.Error(w, apperrors.GetHTTPStatus(err), "Authentication service unavailable")
				return
			}
		}

		if user != nil && matchesAny(path, g.cfg.AuthPages) {
			http.Redirect(w, r, g.cfg.HomePath, http.StatusFound)
			return
		}

		if user == nil && matchesAny(path, g.cfg.ProtectedPaths) {
			if isAPIPath(path) {
				api.Error(w, http.StatusUnauthorized, auth.MessageAuthenticationRequired)
				return
			}
			target := g.cfg.LoginPath + "?redirectTo=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		if user != nil {
			r = r.WithContext(auth.SetUserInContext(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// resolve returns nil, nil for anonymous or rejected sessions. An error means
// the session could not be checked at all.
func (g *Gate) resolve(r *http.Request) (*auth.User, error) {
	token := auth.TokenFromRequest(r, g.cfg.SessionCookie)
	if token == "" {
		return nil, nil
	}

	user, err := g.authenticator.Authenticate(r.Context(), token)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrAuthenticationRequired),
		errors.Is(err, auth.ErrAuthenticationFailed),
		apperrors.IsUnauthorized(err):
		return nil, nil
	default:
		return nil, err
	}
}

// WithAuth calls next only when the request carries an authenticated user.
func WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.GetUserFromContext(r.Context()); err != nil {
			api.Error(w, http.StatusUnauthorized, auth.MessageAuthenticationRequired)
			return
		}
		next(w, r)
	}
}

// matchesAny reports whether path equals one of prefixes or lies beneath it.
func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
