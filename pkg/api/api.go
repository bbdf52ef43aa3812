// Package api defines the contracts for API requests and responses that are
// not domain entities.
package api

import (
	apperrors "ideas-backend/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string                 `json:"error" example:"Invalid input data"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// MessageResponse confirms an operation that returns no entity.
type MessageResponse struct {
	Message string `json:"message" example:"Idea deleted successfully"`
}

// CredentialsRequest is the body of POST /api/auth/login and /api/auth/signup.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"s3cret!"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// HealthResponse is returned by /health and /ready.
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}
