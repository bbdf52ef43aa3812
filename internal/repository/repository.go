// Package repository declares the storage boundaries the services depend on.
// Every read and write is scoped to the owning user.
package repository

import (
	"context"

	"ideas-backend/internal/domain/idea"
)

// TopicRepository persists idea topics.
type TopicRepository interface {
	// Create inserts a new topic and returns the stored row.
	Create(ctx context.Context, topic *idea.IdeaTopic) (*idea.IdeaTopic, error)

	// List returns the user's topics, newest first, narrowed by filter.
	List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error)

	// Get returns a not found error when no owned topic has this id.
	Get(ctx context.Context, userID, id string) (*idea.IdeaTopic, error)

	// Update patches the given columns and returns the updated row.
	Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.IdeaTopic, error)

	// Delete removes the topic. Deleting a missing row is not an error.
	Delete(ctx context.Context, userID, id string) error
}

// IdeaRepository persists ideas.
type IdeaRepository interface {
	Create(ctx context.Context, idea *idea.Idea) (*idea.Idea, error)
	List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error)
	ListByTopic(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error)
	Get(ctx context.Context, userID, id string) (*idea.Idea, error)
	Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.Idea, error)
	Delete(ctx context.Context, userID, id string) error
}

// EventPublisher delivers lifecycle events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...idea.Event) error
}
