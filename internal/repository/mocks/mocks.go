// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"ideas-backend/internal/domain/idea"

	"github.com/stretchr/testify/mock"
)

// TopicRepository is a mock of repository.TopicRepository.
type TopicRepository struct {
	mock.Mock
}

func (m *TopicRepository) Create(ctx context.Context, topic *idea.IdeaTopic) (*idea.IdeaTopic, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.IdeaTopic), args.Error(1)
}

func (m *TopicRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]idea.IdeaTopic), args.Error(1)
}

func (m *TopicRepository) Get(ctx context.Context, userID, id string) (*idea.IdeaTopic, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.IdeaTopic), args.Error(1)
}

func (m *TopicRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.IdeaTopic, error) {
	args := m.Called(ctx, userID, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.IdeaTopic), args.Error(1)
}

func (m *TopicRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// IdeaRepository is a mock of repository.IdeaRepository.
type IdeaRepository struct {
	mock.Mock
}

func (m *IdeaRepository) Create(ctx context.Context, in *idea.Idea) (*idea.Idea, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.Idea), args.Error(1)
}

func (m *IdeaRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]idea.Idea), args.Error(1)
}

func (m *IdeaRepository) ListByTopic(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error) {
	args := m.Called(ctx, userID, topicID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]idea.Idea), args.Error(1)
}

func (m *IdeaRepository) Get(ctx context.Context, userID, id string) (*idea.Idea, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.Idea), args.Error(1)
}

func (m *IdeaRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.Idea, error) {
	args := m.Called(ctx, userID, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idea.Idea), args.Error(1)
}

func (m *IdeaRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// EventPublisher is a mock of repository.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, events ...idea.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
