// Package auth carries the authenticated caller through request contexts and
// defines how access tokens are resolved into users.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrAuthenticationRequired is returned when no session is present.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrAuthenticationFailed is returned when a session was present but could not be verified.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// Messages returned to clients for the errors above.
const (
	MessageAuthenticationRequired = "Authentication required"
	MessageAuthenticationFailed   = "Authentication failed"
)

// User is the caller resolved from a Supabase session.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	AccessToken string `json:"-"`
}

// Authenticator resolves an access token into the session's user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (*User, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (*User, error) {
	return f(ctx, token)
}

type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*User, error) {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok || user == nil {
		return nil, ErrAuthenticationRequired
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// TokenFromRequest reads the access token from the Authorization header,
// falling back to the named session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
