// Package ideas provides business logic for ideas and their feedback.
package ideas

import (
	"context"
	"time"

	"ideas-backend/internal/domain/idea"
	appErrors "ideas-backend/internal/errors"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/repository"

	"go.uber.org/zap"
)

// Service defines the idea operations available to handlers.
type Service interface {
	Create(ctx context.Context, userID string, in idea.CreateIdeaInput) (*idea.Idea, error)
	FindAll(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error)

	// FindByTopicID lists the ideas of one topic, optionally narrowed by search.
	FindByTopicID(ctx context.Context, userID, topicID, search string) ([]idea.Idea, error)

	// FindByID returns nil, nil when the user owns no idea with this id.
	FindByID(ctx context.Context, userID, id string) (*idea.Idea, error)
	Update(ctx context.Context, userID, id string, in idea.UpdateIdeaInput) (*idea.Idea, error)
	Delete(ctx context.Context, userID, id string) error
	SearchByTags(ctx context.Context, userID string, tags []string) ([]idea.Idea, error)

	// AddFeedback sets rating and feedback in one update.
	AddFeedback(ctx context.Context, userID, id string, in idea.FeedbackInput) (*idea.Idea, error)
}

type service struct {
	repo      repository.IdeaRepository
	publisher repository.EventPublisher
	metrics   *observability.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an idea service. metrics may be nil.
func NewService(repo repository.IdeaRepository, publisher repository.EventPublisher, metrics *observability.Collector, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Create files the idea under in.IdeaTopicID. Only the foreign key checks the
// topic; it is not required to belong to userID.
func (s *service) Create(ctx context.Context, userID string, in idea.CreateIdeaInput) (*idea.Idea, error) {
	created, err := s.repo.Create(ctx, idea.NewIdea(userID, in, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to create idea")
	}

	if s.metrics != nil {
		s.metrics.IdeasCreated.Inc()
	}
	s.publish(ctx, idea.NewEvent(idea.EventIdeaCreated, created.ID, userID, created))
	return created, nil
}

func (s *service) FindAll(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error) {
	ideas, err := s.repo.List(ctx, userID, filter.Normalize())
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list ideas")
	}
	return orEmpty(ideas), nil
}

func (s *service) FindByTopicID(ctx context.Context, userID, topicID, search string) ([]idea.Idea, error) {
	filter := idea.ListFilter{Search: search}.Normalize()
	ideas, err := s.repo.ListByTopic(ctx, userID, topicID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list ideas of topic")
	}
	return orEmpty(ideas), nil
}

func (s *service) FindByID(ctx context.Context, userID, id string) (*idea.Idea, error) {
	found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, "failed to get idea")
	}
	return found, nil
}

func (s *service) Update(ctx context.Context, userID, id string, in idea.UpdateIdeaInput) (*idea.Idea, error) {
	changes := in.Changes(s.now())

	updated, err := s.repo.Update(ctx, userID, id, changes)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to update idea")
	}

	s.publish(ctx, idea.NewEvent(idea.EventIdeaUpdated, id, userID, changes))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, "failed to delete idea")
	}

	s.publish(ctx, idea.NewEvent(idea.EventIdeaDeleted, id, userID, nil))
	return nil
}

func (s *service) SearchByTags(ctx context.Context, userID string, tags []string) ([]idea.Idea, error) {
	return s.FindAll(ctx, userID, idea.ListFilter{Tags: tags})
}

func (s *service) AddFeedback(ctx context.Context, userID, id string, in idea.FeedbackInput) (*idea.Idea, error) {
	changes := in.Changes(s.now())

	updated, err := s.repo.Update(ctx, userID, id, changes)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to add feedback")
	}

	if s.metrics != nil {
		s.metrics.FeedbackSubmitted.Inc()
	}
	s.publish(ctx, idea.NewEvent(idea.EventIdeaFeedback, id, userID, map[string]interface{}{
		idea.ColumnRating:   updated.Rating,
		idea.ColumnFeedback: updated.Feedback,
	}))
	return updated, nil
}

func (s *service) publish(ctx context.Context, event idea.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err),
		)
	}
}

func orEmpty(ideas []idea.Idea) []idea.Idea {
	if ideas == nil {
		return []idea.Idea{}
	}
	return ideas
}
