package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		Email: "ada@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7f9c0a4e-1111-4c5e-9a3b-2f5a6b7c8d9e",
			Audience:  jwt.ClaimStrings{DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret, "")
	require.NoError(t, err)

	t.Run("Should resolve a valid token into a user", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims())

		user, err := verifier.Authenticate(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "7f9c0a4e-1111-4c5e-9a3b-2f5a6b7c8d9e", user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, token, user.AccessToken)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := verifier.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		_, err := verifier.Authenticate(context.Background(), signToken(t, "another-secret-another-secret-another", validClaims()))

		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("Should reject the wrong audience", func(t *testing.T) {
		claims := validClaims()
		claims.Audience = jwt.ClaimStrings{"anon"}

		_, err := verifier.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("Should require a subject", func(t *testing.T) {
		claims := validClaims()
		claims.Subject = ""

		_, err := verifier.ValidateToken(signToken(t, testSecret, claims))

		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("Should report a missing token as authentication required", func(t *testing.T) {
		_, err := verifier.Authenticate(context.Background(), "")

		assert.True(t, errors.Is(err, ErrAuthenticationRequired))
	})
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("", "")
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	ctx := SetUserInContext(context.Background(), &User{ID: "u1"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		expect string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer abc") }, "abc"},
		{"non bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, ""},
		{"session cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "xyz"}) }, "xyz"},
		{"nothing", func(r *http.Request) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/ideas", nil)
			tt.setup(r)
			assert.Equal(t, tt.expect, TokenFromRequest(r, "sb-access-token"))
		})
	}
}
