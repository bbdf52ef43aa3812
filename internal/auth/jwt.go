package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// DefaultAudience is the audience Supabase stamps on user access tokens.
const DefaultAudience = "authenticated"

// Claims are the fields read from a Supabase access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier checks Supabase access tokens locally against the project's JWT secret.
type JWTVerifier struct {
	secret   []byte
	audience string
}

// NewJWTVerifier creates a verifier for HS256 tokens signed with secret.
func NewJWTVerifier(secret, audience string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("secret key required for HS256")
	}
	if audience == "" {
		audience = DefaultAudience
	}
	return &JWTVerifier{secret: []byte(secret), audience: audience}, nil
}

// ValidateToken validates a token and returns its claims.
func (v *JWTVerifier) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrAuthenticationRequired
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if !slices.Contains(claims.Audience, v.audience) {
		return nil, fmt.Errorf("%w: invalid audience", ErrInvalidClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}
	return claims, nil
}

// Authenticate implements Authenticator without a network round trip.
func (v *JWTVerifier) Authenticate(_ context.Context, token string) (*User, error) {
	claims, err := v.ValidateToken(token)
	if err != nil {
		if errors.Is(err, ErrAuthenticationRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return &User{
		ID:          claims.Subject,
		Email:       claims.Email,
		Role:        claims.Role,
		AccessToken: token,
	}, nil
}
