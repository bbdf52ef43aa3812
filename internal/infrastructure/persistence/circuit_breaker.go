// Package persistence wraps repositories with cross-cutting behaviour:
// circuit breaking, metrics and tracing.
package persistence

import (
	"context"
	"errors"

	"ideas-backend/internal/config"
	"ideas-backend/internal/domain/idea"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/repository"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NewCircuitBreaker builds the breaker shared by all repositories that hit the backend.
func NewCircuitBreaker(name string, cfg config.CircuitBreaker, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful treats answers from a healthy backend as successes even when
// they are errors for the caller.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch apperrors.GetType(err) {
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeValidation, apperrors.ErrorTypeUnauthorized:
		return true
	}
	return false
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperrors.NewUnavailableError("supabase").WithCause(err)
		}
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

type breakerTopicRepository struct {
	inner repository.TopicRepository
	cb    *gobreaker.CircuitBreaker
}

// WithTopicCircuitBreaker guards a topic repository with cb.
func WithTopicCircuitBreaker(inner repository.TopicRepository, cb *gobreaker.CircuitBreaker) repository.TopicRepository {
	return &breakerTopicRepository{inner: inner, cb: cb}
}

func (r *breakerTopicRepository) Create(ctx context.Context, topic *idea.IdeaTopic) (*idea.IdeaTopic, error) {
	return execute(r.cb, func() (*idea.IdeaTopic, error) { return r.inner.Create(ctx, topic) })
}

func (r *breakerTopicRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error) {
	return execute(r.cb, func() ([]idea.IdeaTopic, error) { return r.inner.List(ctx, userID, filter) })
}

func (r *breakerTopicRepository) Get(ctx context.Context, userID, id string) (*idea.IdeaTopic, error) {
	return execute(r.cb, func() (*idea.IdeaTopic, error) { return r.inner.Get(ctx, userID, id) })
}

func (r *breakerTopicRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.IdeaTopic, error) {
	return execute(r.cb, func() (*idea.IdeaTopic, error) { return r.inner.Update(ctx, userID, id, changes) })
}

func (r *breakerTopicRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := execute(r.cb, func() (struct{}, error) { return struct{}{}, r.inner.Delete(ctx, userID, id) })
	return err
}

type breakerIdeaRepository struct {
	inner repository.IdeaRepository
	cb    *gobreaker.CircuitBreaker
}

// WithIdeaCircuitBreaker guards an idea repository with cb.
func WithIdeaCircuitBreaker(inner repository.IdeaRepository, cb *gobreaker.CircuitBreaker) repository.IdeaRepository {
	return &breakerIdeaRepository{inner: inner, cb: cb}
}

func (r *breakerIdeaRepository) Create(ctx context.Context, in *idea.Idea) (*idea.Idea, error) {
	return execute(r.cb, func() (*idea.Idea, error) { return r.inner.Create(ctx, in) })
}

func (r *breakerIdeaRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error) {
	return execute(r.cb, func() ([]idea.Idea, error) { return r.inner.List(ctx, userID, filter) })
}

func (r *breakerIdeaRepository) ListByTopic(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error) {
	return execute(r.cb, func() ([]idea.Idea, error) { return r.inner.ListByTopic(ctx, userID, topicID, filter) })
}

func (r *breakerIdeaRepository) Get(ctx context.Context, userID, id string) (*idea.Idea, error) {
	return execute(r.cb, func() (*idea.Idea, error) { return r.inner.Get(ctx, userID, id) })
}

func (r *breakerIdeaRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.Idea, error) {
	return execute(r.cb, func() (*idea.Idea, error) { return r.inner.Update(ctx, userID, id, changes) })
}

func (r *breakerIdeaRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := execute(r.cb, func() (struct{}, error) { return struct{}{}, r.inner.Delete(ctx, userID, id) })
	return err
}
