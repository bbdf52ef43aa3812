package supabase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"ideas-backend/internal/auth"
	apperrors "ideas-backend/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `{"id":"7f9c0a4e-1111-4c5e-9a3b-2f5a6b7c8d9e","aud":"authenticated","role":"authenticated","email":"ada@example.com","app_metadata":{},"user_metadata":{},"identities":[]}`

const sessionJSON = `{"access_token":"new-access","refresh_token":"new-refresh","token_type":"bearer","expires_in":3600,"expires_at":1714557600,"user":` + userJSON + `}`

func TestAuthService_Authenticate(t *testing.T) {
	fake := newFakeSupabase(t)
	svc := NewAuthService(fake.factory(t), time.Second)

	t.Run("Should resolve the session user", func(t *testing.T) {
		fake.respond(http.StatusOK, userJSON)

		user, err := svc.Authenticate(context.Background(), "access-token")

		require.NoError(t, err)
		assert.Equal(t, "7f9c0a4e-1111-4c5e-9a3b-2f5a6b7c8d9e", user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "access-token", user.AccessToken)

		req := fake.last(t)
		assert.Equal(t, "/auth/v1/user", req.Path)
		assert.Equal(t, "Bearer access-token", req.Header.Get("Authorization"))
	})

	t.Run("Should fail authentication on a rejected token", func(t *testing.T) {
		fake.respond(http.StatusUnauthorized, `{"msg":"invalid JWT"}`)

		_, err := svc.Authenticate(context.Background(), "expired")

		assert.True(t, errors.Is(err, auth.ErrAuthenticationFailed))
	})

	t.Run("Should require a token", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "")

		assert.ErrorIs(t, err, auth.ErrAuthenticationRequired)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	fake := newFakeSupabase(t)
	svc := NewAuthService(fake.factory(t), time.Second)

	t.Run("Should return the issued session", func(t *testing.T) {
		fake.respond(http.StatusOK, sessionJSON)

		session, err := svc.SignIn(context.Background(), "ada@example.com", "secret1")

		require.NoError(t, err)
		assert.Equal(t, "new-access", session.AccessToken)
		assert.Equal(t, "ada@example.com", session.User.Email)
		req := fake.last(t)
		assert.Equal(t, "/auth/v1/token", req.Path)
		assert.Equal(t, "password", req.Query["grant_type"])
	})

	t.Run("Should map bad credentials to unauthorized", func(t *testing.T) {
		fake.respond(http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)

		_, err := svc.SignIn(context.Background(), "ada@example.com", "wrong-pass")

		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestAuthService_SignUp(t *testing.T) {
	fake := newFakeSupabase(t)
	svc := NewAuthService(fake.factory(t), time.Second)

	t.Run("Should return a session when auto confirm is on", func(t *testing.T) {
		fake.respond(http.StatusOK, sessionJSON)

		result, err := svc.SignUp(context.Background(), "ada@example.com", "secret1")

		require.NoError(t, err)
		require.NotNil(t, result.Session)
		assert.Equal(t, "ada@example.com", result.User.Email)
	})

	t.Run("Should return only the user when confirmation is pending", func(t *testing.T) {
		fake.respond(http.StatusOK, userJSON)

		result, err := svc.SignUp(context.Background(), "ada@example.com", "secret1")

		require.NoError(t, err)
		assert.Nil(t, result.Session)
		assert.Equal(t, "7f9c0a4e-1111-4c5e-9a3b-2f5a6b7c8d9e", result.User.ID)
	})

	t.Run("Should surface the server message as a validation error", func(t *testing.T) {
		fake.respond(http.StatusUnprocessableEntity, `{"code":422,"msg":"User already registered"}`)

		_, err := svc.SignUp(context.Background(), "ada@example.com", "secret1")

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "User already registered", appErr.Message)
	})
}

func TestAuthService_RefreshAndSignOut(t *testing.T) {
	fake := newFakeSupabase(t)
	svc := NewAuthService(fake.factory(t), time.Second)

	fake.respond(http.StatusOK, sessionJSON)
	session, err := svc.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", session.RefreshToken)
	assert.Equal(t, "refresh_token", fake.last(t).Query["grant_type"])

	fake.respond(http.StatusNoContent, "")
	require.NoError(t, svc.SignOut(context.Background(), "new-access"))
	req := fake.last(t)
	assert.Equal(t, "/auth/v1/logout", req.Path)
	assert.Equal(t, "Bearer new-access", req.Header.Get("Authorization"))
}

func TestAuthService_Ping(t *testing.T) {
	fake := newFakeSupabase(t)
	svc := NewAuthService(fake.factory(t), time.Second)

	fake.respond(http.StatusOK, `{"version":"v2","name":"GoTrue","description":"auth"}`)
	assert.NoError(t, svc.Ping(context.Background()))

	fake.server.Close()
	err := svc.Ping(context.Background())
	assert.True(t, apperrors.IsUnavailable(err))
}
