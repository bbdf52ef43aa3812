package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"ideas-backend/internal/auth"
	apperrors "ideas-backend/internal/errors"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// Session is an issued Supabase session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	User         auth.User `json:"user"`
}

// SignUpResult holds the new user and, when the project auto-confirms
// emails, the session that was opened for them.
type SignUpResult struct {
	User    auth.User `json:"user"`
	Session *Session  `json:"session"`
}

// AuthService talks to the project's GoTrue server.
type AuthService struct {
	factory    *ClientFactory
	httpClient http.Client
}

var _ auth.Authenticator = (*AuthService)(nil)

// NewAuthService creates the GoTrue-backed auth service.
func NewAuthService(factory *ClientFactory, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AuthService{
		factory:    factory,
		httpClient: http.Client{Timeout: timeout},
	}
}

func (s *AuthService) gotrue() (gotrue.Client, error) {
	client, err := s.factory.Anonymous()
	if err != nil {
		return nil, err
	}
	return client.Auth.WithClient(s.httpClient), nil
}

// Authenticate resolves the session's user with GET /auth/v1/user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.User, error) {
	if token == "" {
		return nil, auth.ErrAuthenticationRequired
	}
	client, err := s.gotrue()
	if err != nil {
		return nil, err
	}

	resp, err := run(ctx, func() (*types.UserResponse, error) {
		return client.WithToken(token).GetUser()
	})
	if err != nil {
		if status, _ := gotrueStatus(err); status > 0 && status < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %v", auth.ErrAuthenticationFailed, err)
		}
		return nil, mapAuthError(err, "")
	}

	user := toUser(resp.User)
	user.AccessToken = token
	return &user, nil
}

// SignIn opens a session with email and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	client, err := s.gotrue()
	if err != nil {
		return nil, err
	}

	resp, err := run(ctx, func() (*types.TokenResponse, error) {
		return client.SignInWithEmailPassword(email, password)
	})
	if err != nil {
		return nil, mapAuthError(err, "Invalid login credentials")
	}
	return toSession(resp.Session), nil
}

// SignUp registers a new user.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*SignUpResult, error) {
	client, err := s.gotrue()
	if err != nil {
		return nil, err
	}

	resp, err := run(ctx, func() (*types.SignupResponse, error) {
		return client.Signup(types.SignupRequest{Email: email, Password: password})
	})
	if err != nil {
		if status, message := gotrueStatus(err); status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return nil, apperrors.NewValidationError(message).WithCause(err)
		}
		return nil, mapAuthError(err, "")
	}

	if resp.Session.AccessToken != "" {
		session := toSession(resp.Session)
		return &SignUpResult{User: session.User, Session: session}, nil
	}
	return &SignUpResult{User: toUser(resp.User)}, nil
}

// Refresh exchanges a refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	client, err := s.gotrue()
	if err != nil {
		return nil, err
	}

	resp, err := run(ctx, func() (*types.TokenResponse, error) {
		return client.RefreshToken(refreshToken)
	})
	if err != nil {
		return nil, mapAuthError(err, "Invalid refresh token")
	}
	return toSession(resp.Session), nil
}

// SignOut revokes the refresh tokens of the session behind accessToken.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	client, err := s.gotrue()
	if err != nil {
		return err
	}

	_, err = run(ctx, func() (struct{}, error) {
		return struct{}{}, client.WithToken(accessToken).Logout()
	})
	if err != nil {
		return mapAuthError(err, "")
	}
	return nil
}

// Ping checks that GoTrue answers its health endpoint.
func (s *AuthService) Ping(ctx context.Context) error {
	client, err := s.gotrue()
	if err != nil {
		return err
	}
	_, err = run(ctx, client.HealthCheck)
	if err != nil {
		return apperrors.NewUnavailableError("supabase").WithCause(err)
	}
	return nil
}

var gotrueStatusPattern = regexp.MustCompile(`(?s)^response status code (\d+)(?::\s*(.*))?$`)

// gotrueStatus extracts the HTTP status and server message from a gotrue-go error.
func gotrueStatus(err error) (int, string) {
	m := gotrueStatusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, ""
	}
	status, _ := strconv.Atoi(m[1])

	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	message := m[2]
	if json.Unmarshal([]byte(m[2]), &body) == nil {
		switch {
		case body.ErrorDescription != "":
			message = body.ErrorDescription
		case body.Msg != "":
			message = body.Msg
		case body.Message != "":
			message = body.Message
		}
	}
	return status, message
}

func mapAuthError(err error, clientMessage string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("auth").WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, types.ErrInvalidTokenRequest):
		return apperrors.NewValidationError(clientMessage).WithCause(err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return apperrors.NewUnavailableError("supabase").WithCause(err)
	}

	status, message := gotrueStatus(err)
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.NewUnavailableError("supabase auth").WithCause(err)
	case status >= 400 && status < 500:
		if clientMessage == "" {
			clientMessage = message
		}
		return apperrors.NewUnauthorizedError(clientMessage).WithCause(err)
	}
	return apperrors.Wrap(err, "auth request failed")
}

func toUser(u types.User) auth.User {
	return auth.User{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  u.Role,
	}
}

func toSession(s types.Session) *Session {
	return &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		ExpiresAt:    s.ExpiresAt,
		User:         toUser(s.User),
	}
}
