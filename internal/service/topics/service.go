// Package topics provides business logic for idea topics.
package topics

import (
	"context"
	"time"

	"ideas-backend/internal/domain/idea"
	appErrors "ideas-backend/internal/errors"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/repository"

	"go.uber.org/zap"
)

// Service defines the topic operations available to handlers.
type Service interface {
	// Create stores a new topic owned by userID.
	Create(ctx context.Context, userID string, in idea.CreateTopicInput) (*idea.IdeaTopic, error)

	// FindAll lists the user's topics, newest first.
	FindAll(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error)

	// FindByID returns nil, nil when the user owns no topic with this id.
	FindByID(ctx context.Context, userID, id string) (*idea.IdeaTopic, error)

	// Update patches only the supplied fields.
	Update(ctx context.Context, userID, id string, in idea.UpdateTopicInput) (*idea.IdeaTopic, error)

	// Delete removes the topic. Its ideas are left in place.
	Delete(ctx context.Context, userID, id string) error

	// SearchByTags lists topics carrying every one of tags.
	SearchByTags(ctx context.Context, userID string, tags []string) ([]idea.IdeaTopic, error)
}

type service struct {
	repo      repository.TopicRepository
	publisher repository.EventPublisher
	metrics   *observability.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a topic service. metrics may be nil.
func NewService(repo repository.TopicRepository, publisher repository.EventPublisher, metrics *observability.Collector, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, userID string, in idea.CreateTopicInput) (*idea.IdeaTopic, error) {
	topic := idea.NewTopic(userID, in, s.now())

	created, err := s.repo.Create(ctx, topic)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to create idea topic")
	}

	if s.metrics != nil {
		s.metrics.TopicsCreated.Inc()
	}
	s.publish(ctx, idea.NewEvent(idea.EventTopicCreated, created.ID, userID, created))
	return created, nil
}

func (s *service) FindAll(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error) {
	topics, err := s.repo.List(ctx, userID, filter.Normalize())
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list idea topics")
	}
	if topics == nil {
		topics = []idea.IdeaTopic{}
	}
	return topics, nil
}

func (s *service) FindByID(ctx context.Context, userID, id string) (*idea.IdeaTopic, error) {
	topic, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, "failed to get idea topic")
	}
	return topic, nil
}

func (s *service) Update(ctx context.Context, userID, id string, in idea.UpdateTopicInput) (*idea.IdeaTopic, error) {
	changes := in.Changes(s.now())

	updated, err := s.repo.Update(ctx, userID, id, changes)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to update idea topic")
	}

	s.publish(ctx, idea.NewEvent(idea.EventTopicUpdated, id, userID, changes))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, "failed to delete idea topic")
	}

	s.publish(ctx, idea.NewEvent(idea.EventTopicDeleted, id, userID, nil))
	return nil
}

func (s *service) SearchByTags(ctx context.Context, userID string, tags []string) ([]idea.IdeaTopic, error) {
	return s.FindAll(ctx, userID, idea.ListFilter{Tags: tags})
}

// publish never fails the caller: the row is already written.
func (s *service) publish(ctx context.Context, event idea.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
