package idea

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle change of a topic or idea.
type EventType string

const (
	EventTopicCreated EventType = "idea_topic.created"
	EventTopicUpdated EventType = "idea_topic.updated"
	EventTopicDeleted EventType = "idea_topic.deleted"
	EventIdeaCreated  EventType = "idea.created"
	EventIdeaUpdated  EventType = "idea.updated"
	EventIdeaFeedback EventType = "idea.feedback_added"
	EventIdeaDeleted  EventType = "idea.deleted"
)

// Event records something that happened to an aggregate owned by a user.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	UserID      string      `json:"user_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Payload     interface{} `json:"payload,omitempty"`
}

// NewEvent stamps a new event with an id and time.
func NewEvent(eventType EventType, aggregateID, userID string, payload interface{}) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		UserID:      userID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}
