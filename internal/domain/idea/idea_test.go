package idea

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewTopic(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	topic := NewTopic("user-1", CreateTopicInput{Name: "Side projects", Description: "Things to build"}, now)

	_, err := uuid.Parse(topic.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", topic.UserID)
	assert.Equal(t, []string{}, topic.Tags)
	assert.Equal(t, now, topic.CreatedAt.Time)
	assert.Equal(t, now, topic.UpdatedAt.Time)
}

func TestNewIdea_Defaults(t *testing.T) {
	topicID := uuid.New().String()

	idea := NewIdea("user-1", CreateIdeaInput{
		Name:        "CLI for notes",
		Description: "A tiny CLI",
		Tags:        []string{"go", "cli"},
		IdeaTopicID: topicID,
	}, time.Now())

	assert.Equal(t, "user-1", idea.UserID)
	assert.Equal(t, 0, idea.Rating)
	assert.Nil(t, idea.Feedback)
	assert.Equal(t, topicID, idea.IdeaTopicID)
	assert.Equal(t, []string{"go", "cli"}, idea.Tags)
}

func TestUpdateIdeaInput_Changes(t *testing.T) {
	now := time.Now()

	t.Run("Should only include supplied fields", func(t *testing.T) {
		changes := UpdateIdeaInput{Rating: intPtr(0)}.Changes(now)

		assert.Len(t, changes, 2)
		assert.Equal(t, 0, changes[ColumnRating])
		assert.Contains(t, changes, ColumnUpdatedAt)
		assert.NotContains(t, changes, ColumnName)
		assert.NotContains(t, changes, ColumnFeedback)
	})

	t.Run("Should include every field when all are set", func(t *testing.T) {
		tags := []string{"a"}
		changes := UpdateIdeaInput{
			Name:        strPtr("n"),
			Description: strPtr("d"),
			Tags:        &tags,
			Rating:      intPtr(4),
			Feedback:    strPtr("nice"),
		}.Changes(now)

		assert.Len(t, changes, 6)
		assert.Equal(t, "nice", changes[ColumnFeedback])
	})
}

func TestUpdateTopicInput_Changes(t *testing.T) {
	empty := []string(nil)
	changes := UpdateTopicInput{Description: strPtr("new"), Tags: &empty}.Changes(time.Now())

	assert.Equal(t, "new", changes[ColumnDescription])
	assert.Equal(t, []string{}, changes[ColumnTags])
	assert.NotContains(t, changes, ColumnName)
}

func TestFeedbackInput_Changes(t *testing.T) {
	changes := FeedbackInput{Rating: intPtr(5), Feedback: "great"}.Changes(time.Now())

	assert.Equal(t, 5, changes[ColumnRating])
	assert.Equal(t, "great", changes[ColumnFeedback])
	assert.Contains(t, changes, ColumnUpdatedAt)
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{Search: "  cli ", Tags: []string{" go", "", "  "}}.Normalize()

	assert.Equal(t, "cli", f.Search)
	assert.Equal(t, []string{"go"}, f.Tags)
	assert.Empty(t, ListFilter{Search: "   "}.Normalize().Search)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventIdeaCreated, "idea-1", "user-1", nil)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventIdeaCreated, e.Type)
	assert.Equal(t, "idea-1", e.AggregateID)
	assert.False(t, e.OccurredAt.IsZero())
}
