package supabase

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"

	"ideas-backend/internal/domain/idea"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/validation"
)

// PostgREST and PostgreSQL error codes the repositories care about.
const (
	codeNoRows           = "PGRST116"
	codeForeignKey       = "23503"
	codeInvalidText      = "22P02"
	codeCheckViolation   = "23514"
	codeNotNullViolation = "23502"
	codeJWTExpired       = "PGRST301"
	codeJWTInvalid       = "PGRST302"
)

// postgrest-go reports failures as "(CODE) message".
var postgrestErrorPattern = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)

func postgrestCode(err error) (string, string) {
	m := postgrestErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return "", err.Error()
	}
	return m[1], m[2]
}

// mapError converts a PostgREST client error into an AppError. resource names
// the entity for not found messages.
func mapError(operation, resource string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError(operation).WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return apperrors.NewUnavailableError("supabase").WithCause(err)
	}

	code, message := postgrestCode(err)
	switch code {
	case codeNoRows:
		return apperrors.NewNotFoundError(resource).WithCode(code).WithCause(err)
	case codeForeignKey:
		return apperrors.NewValidationError(validation.InvalidInputMessage, apperrors.FieldError{
			Field:   idea.ColumnTopicID,
			Rule:    "exists",
			Message: "ideaTopicId must reference an existing idea topic",
		}).WithCode(code).WithCause(err)
	case codeInvalidText, codeCheckViolation, codeNotNullViolation:
		return apperrors.NewValidationError(validation.InvalidInputMessage, apperrors.FieldError{
			Rule:    "constraint",
			Message: message,
		}).WithCode(code).WithCause(err)
	case codeJWTExpired, codeJWTInvalid:
		return apperrors.NewUnauthorizedError("Authentication failed").WithCode(code).WithCause(err)
	}

	return apperrors.NewDatabaseError(operation, err).WithCode(code)
}
