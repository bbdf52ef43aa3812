package supabase

import (
	"context"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/repository"
)

const ideaResource = "Idea"

// IdeaRepository stores ideas in the Idea table.
type IdeaRepository struct {
	clients ClientProvider
}

var _ repository.IdeaRepository = (*IdeaRepository)(nil)

// NewIdeaRepository creates an idea repository.
func NewIdeaRepository(clients ClientProvider) *IdeaRepository {
	return &IdeaRepository{clients: clients}
}

func (r *IdeaRepository) Create(ctx context.Context, in *idea.Idea) (*idea.Idea, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("insert", ideaResource, err)
	}

	created, err := run(ctx, func() (*idea.Idea, error) {
		var row idea.Idea
		_, err := client.From(idea.IdeaTable).
			Insert(in, false, "", "representation", "").
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("insert", ideaResource, err)
	}
	return created, nil
}

func (r *IdeaRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error) {
	return r.list(ctx, userID, "", filter)
}

func (r *IdeaRepository) ListByTopic(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error) {
	return r.list(ctx, userID, topicID, filter)
}

func (r *IdeaRepository) list(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("select", ideaResource, err)
	}

	rows, err := run(ctx, func() ([]idea.Idea, error) {
		var rows []idea.Idea
		q := client.From(idea.IdeaTable).
			Select("*", "", false).
			Eq(idea.ColumnUserID, userID)
		if topicID != "" {
			q = q.Eq(idea.ColumnTopicID, topicID)
		}
		_, err := applyListFilter(q, filter).ExecuteTo(&rows)
		return rows, err
	})
	if err != nil {
		return nil, mapError("select", ideaResource, err)
	}
	if rows == nil {
		rows = []idea.Idea{}
	}
	return rows, nil
}

func (r *IdeaRepository) Get(ctx context.Context, userID, id string) (*idea.Idea, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("select", ideaResource, err)
	}

	found, err := run(ctx, func() (*idea.Idea, error) {
		var row idea.Idea
		_, err := client.From(idea.IdeaTable).
			Select("*", "", false).
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("select", ideaResource, err)
	}
	return found, nil
}

func (r *IdeaRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.Idea, error) {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return nil, mapError("update", ideaResource, err)
	}

	updated, err := run(ctx, func() (*idea.Idea, error) {
		var row idea.Idea
		_, err := client.From(idea.IdeaTable).
			Update(changes, "representation", "").
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Single().
			ExecuteTo(&row)
		return &row, err
	})
	if err != nil {
		return nil, mapError("update", ideaResource, err)
	}
	return updated, nil
}

func (r *IdeaRepository) Delete(ctx context.Context, userID, id string) error {
	client, err := r.clients.Client(ctx)
	if err != nil {
		return mapError("delete", ideaResource, err)
	}

	_, err = run(ctx, func() ([]byte, error) {
		body, _, err := client.From(idea.IdeaTable).
			Delete("minimal", "").
			Eq(idea.ColumnID, id).
			Eq(idea.ColumnUserID, userID).
			Execute()
		return body, err
	})
	return mapError("delete", ideaResource, err)
}
