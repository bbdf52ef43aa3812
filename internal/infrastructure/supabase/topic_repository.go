package supabase

import (
	"context"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/repository"
)

const topicResource = "Idea topic"

// TopicRepository stores topics in the IdeaTopic table.
type TopicRepository struct {
	clients ClientProvider
}

var _ repository.TopicRepository = (*TopicRepository)(nil)

// NewTopicRepository creates a topic repository.
func NewTopicRepository(clients ClientProvider) *TopicRepository {
	return &TopicRepository{clients: clients}
}

func (r *TopicRepository) Create(ctx context.Context, topic *idea.IdeaTopic) (*idea.IdeaTopic, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("insert", topicResource, err)
	}

	created, err := run(ctx, func() (*idea.IdeaTopic, error) {
		var row idea.IdeaTopic
		_, err := client.From(idea.TopicTable).
			Insert(topic, false, "", "representation", "").
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("insert", topicResource, err)
	}
	return created, nil
}

func (r *TopicRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("select", topicResource, err)
	}

	rows, err := run(ctx, func() ([]idea.IdeaTopic, error) {
		var rows []idea.IdeaTopic
		q := client.From(idea.TopicTable).
			Select("*", "", false).
			Eq(idea.ColumnUserID, userID)
		_, err := applyListFilter(q, filter).ExecuteTo(&rows)
		return rows, err
	})
	if err != nil {
		return nil, mapError("select", topicResource, err)
	}
	if rows == nil {
		rows = []idea.IdeaTopic{}
	}
	return rows, nil
}

func (r *TopicRepository) Get(ctx context.Context, userID, id string) (*idea.IdeaTopic, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("select", topicResource, err)
	}

	topic, err := run(ctx, func() (*idea.IdeaTopic, error) {
		var row idea.IdeaTopic
		_, err := client.From(idea.TopicTable).
			Select("*", "", false).
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("select", topicResource, err)
	}
	return topic, nil
}

func (r *TopicRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.IdeaTopic, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("update", topicResource, err)
	}

	topic, err := run(ctx, func() (*idea.IdeaTopic, error) {
		var row idea.IdeaTopic
		_, err := client.From(idea.TopicTable).
			Update(changes, "representation", "").
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("update", topicResource, err)
	}
	return topic, nil
}

func (r *TopicRepository) Delete(ctx context.Context, userID, id string) error {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return mapError("delete", topicResource, err)
	}

	_, err = run(ctx, func() ([]byte, error) {
		body, _, err := client.From(idea.TopicTable).
			Delete("minimal", "").
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Execute()
		return body, err
	})
	return mapError("delete", topicResource, err)
}
