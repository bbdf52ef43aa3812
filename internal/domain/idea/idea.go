// Package idea holds the entities of the ideas app: topics, the ideas filed
// under them, and the inputs accepted for creating and changing both.
package idea

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Table names as they exist in the Supabase schema.
const (
	TopicTable = "IdeaTopic"
	IdeaTable  = "Idea"
)

// Column names shared by both tables.
const (
	ColumnID          = "id"
	ColumnUserID      = "user_id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnTags        = "tags"
	ColumnCreatedAt   = "createdAt"
	ColumnUpdatedAt   = "updatedAt"
	ColumnRating      = "rating"
	ColumnFeedback    = "feedback"
	ColumnTopicID     = "ideaTopicId"
)

// IdeaTopic groups related ideas for one user.
type IdeaTopic struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   Timestamp `json:"createdAt" swaggertype:"string" format:"date-time"`
	UpdatedAt   Timestamp `json:"updatedAt" swaggertype:"string" format:"date-time"`
}

// Idea is a single idea filed under a topic, optionally rated and annotated.
type Idea struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Rating      int       `json:"rating"`
	Feedback    *string   `json:"feedback"`
	IdeaTopicID string    `json:"ideaTopicId"`
	CreatedAt   Timestamp `json:"createdAt" swaggertype:"string" format:"date-time"`
	UpdatedAt   Timestamp `json:"updatedAt" swaggertype:"string" format:"date-time"`
}

// CreateTopicInput is the payload for creating a topic.
type CreateTopicInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required,min=1,max=500"`
	Tags        []string `json:"tags"`
}

// UpdateTopicInput is a partial topic update. Nil fields are left unchanged.
type UpdateTopicInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,min=1,max=500"`
	Tags        *[]string `json:"tags"`
}

// CreateIdeaInput is the payload for creating an idea.
type CreateIdeaInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"required,min=1,max=1000"`
	Tags        []string `json:"tags"`
	IdeaTopicID string   `json:"ideaTopicId" validate:"required,uuid"`
}

// UpdateIdeaInput is a partial idea update. Nil fields are left unchanged.
type UpdateIdeaInput struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string   `json:"description" validate:"omitempty,min=1,max=1000"`
	Tags        *[]string `json:"tags"`
	Rating      *int      `json:"rating" validate:"omitempty,min=0,max=5"`
	Feedback    *string   `json:"feedback" validate:"omitempty,max=500"`
}

// FeedbackInput sets rating and feedback together.
type FeedbackInput struct {
	Rating   *int   `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"required,min=1,max=500"`
}

// ListFilter narrows list queries.
type ListFilter struct {
	Search string
	Tags   []string
}

// Normalize trims the search term and drops blank tags.
func (f ListFilter) Normalize() ListFilter {
	out := ListFilter{Search: strings.TrimSpace(f.Search)}
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out.Tags = append(out.Tags, tag)
		}
	}
	return out
}

// NewTopic builds a topic owned by userID with a fresh id and timestamps.
func NewTopic(userID string, in CreateTopicInput, now time.Time) *IdeaTopic {
	ts := NewTimestamp(now)
	return &IdeaTopic{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Tags:        tagsOrEmpty(in.Tags),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// NewIdea builds an unrated idea owned by userID.
func NewIdea(userID string, in CreateIdeaInput, now time.Time) *Idea {
	ts := NewTimestamp(now)
	return &Idea{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Tags:        tagsOrEmpty(in.Tags),
		Rating:      0,
		Feedback:    nil,
		IdeaTopicID: in.IdeaTopicID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// Changes returns the columns to patch: only the fields that were supplied, plus updatedAt.
func (in UpdateTopicInput) Changes(now time.Time) map[string]interface{} {
	changes := map[string]interface{}{ColumnUpdatedAt: now.UTC()}
	if in.Name != nil {
		changes[ColumnName] = *in.Name
	}
	if in.Description != nil {
		changes[ColumnDescription] = *in.Description
	}
	if in.Tags != nil {
		changes[ColumnTags] = tagsOrEmpty(*in.Tags)
	}
	return changes
}

// Changes returns the columns to patch: only the fields that were supplied, plus updatedAt.
func (in UpdateIdeaInput) Changes(now time.Time) map[string]interface{} {
	changes := map[string]interface{}{ColumnUpdatedAt: now.UTC()}
	if in.Name != nil {
		changes[ColumnName] = *in.Name
	}
	if in.Description != nil {
		changes[ColumnDescription] = *in.Description
	}
	if in.Tags != nil {
		changes[ColumnTags] = tagsOrEmpty(*in.Tags)
	}
	if in.Rating != nil {
		changes[ColumnRating] = *in.Rating
	}
	if in.Feedback != nil {
		changes[ColumnFeedback] = *in.Feedback
	}
	return changes
}

// Changes returns the rating/feedback patch.
func (in FeedbackInput) Changes(now time.Time) map[string]interface{} {
	rating := 0
	if in.Rating != nil {
		rating = *in.Rating
	}
	return map[string]interface{}{
		ColumnRating:    rating,
		ColumnFeedback:  in.Feedback,
		ColumnUpdatedAt: now.UTC(),
	}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
