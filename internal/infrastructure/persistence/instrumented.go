package persistence

import (
	"context"
	"time"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrument wraps one repository call in a span and records its outcome.
type instrument struct {
	table   string
	metrics *observability.Collector
	tracer  trace.Tracer
}

func (in instrument) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, attribute.String("db.table", in.table))
	ctx, span := in.tracer.Start(ctx, "repository."+in.table+"."+op, trace.WithAttributes(attrs...))
	started := time.Now()

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if in.metrics != nil {
			in.metrics.RecordDBOperation(op, in.table, err, time.Since(started))
		}
	}
}

type instrumentedTopicRepository struct {
	inner repository.TopicRepository
	instrument
}

// InstrumentTopics records metrics and spans around every topic repository call.
func InstrumentTopics(inner repository.TopicRepository, metrics *observability.Collector, tracer trace.Tracer) repository.TopicRepository {
	return &instrumentedTopicRepository{
		inner:      inner,
		instrument: instrument{table: idea.TopicTable, metrics: metrics, tracer: tracer},
	}
}

func (r *instrumentedTopicRepository) Create(ctx context.Context, topic *idea.IdeaTopic) (*idea.IdeaTopic, error) {
	ctx, done := r.start(ctx, "create",
		attribute.String("user.id", topic.UserID),
		attribute.String("resource.id", topic.ID),
	)
	created, err := r.inner.Create(ctx, topic)
	done(err)
	return created, err
}

func (r *instrumentedTopicRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.IdeaTopic, error) {
	ctx, done := r.start(ctx, "list",
		attribute.String("user.id", userID),
		attribute.Bool("filter.search", filter.Search != ""),
		attribute.Int("filter.tags", len(filter.Tags)),
	)
	topics, err := r.inner.List(ctx, userID, filter)
	done(err)
	return topics, err
}

func (r *instrumentedTopicRepository) Get(ctx context.Context, userID, id string) (*idea.IdeaTopic, error) {
	ctx, done := r.start(ctx, "get", attribute.String("user.id", userID), attribute.String("resource.id", id))
	topic, err := r.inner.Get(ctx, userID, id)
	done(err)
	return topic, err
}

func (r *instrumentedTopicRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.IdeaTopic, error) {
	ctx, done := r.start(ctx, "update", attribute.String("user.id", userID), attribute.String("resource.id", id))
	topic, err := r.inner.Update(ctx, userID, id, changes)
	done(err)
	return topic, err
}

func (r *instrumentedTopicRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, done := r.start(ctx, "delete", attribute.String("user.id", userID), attribute.String("resource.id", id))
	err := r.inner.Delete(ctx, userID, id)
	done(err)
	return err
}

type instrumentedIdeaRepository struct {
	inner repository.IdeaRepository
	instrument
}

// InstrumentIdeas records metrics and spans around every idea repository call.
func InstrumentIdeas(inner repository.IdeaRepository, metrics *observability.Collector, tracer trace.Tracer) repository.IdeaRepository {
	return &instrumentedIdeaRepository{
		inner:      inner,
		instrument: instrument{table: idea.IdeaTable, metrics: metrics, tracer: tracer},
	}
}

func (r *instrumentedIdeaRepository) Create(ctx context.Context, in *idea.Idea) (*idea.Idea, error) {
	ctx, done := r.start(ctx, "create",
		attribute.String("user.id", in.UserID),
		attribute.String("resource.id", in.ID),
		attribute.String("topic.id", in.IdeaTopicID),
	)
	created, err := r.inner.Create(ctx, in)
	done(err)
	return created, err
}

func (r *instrumentedIdeaRepository) List(ctx context.Context, userID string, filter idea.ListFilter) ([]idea.Idea, error) {
	ctx, done := r.start(ctx, "list", attribute.String("user.id", userID))
	ideas, err := r.inner.List(ctx, userID, filter)
	done(err)
	return ideas, err
}

func (r *instrumentedIdeaRepository) ListByTopic(ctx context.Context, userID, topicID string, filter idea.ListFilter) ([]idea.Idea, error) {
	ctx, done := r.start(ctx, "list_by_topic", attribute.String("user.id", userID), attribute.String("topic.id", topicID))
	ideas, err := r.inner.ListByTopic(ctx, userID, topicID, filter)
	done(err)
	return ideas, err
}

func (r *instrumentedIdeaRepository) Get(ctx context.Context, userID, id string) (*idea.Idea, error) {
	ctx, done := r.start(ctx, "get", attribute.String("user.id", userID), attribute.String("resource.id", id))
	found, err := r.inner.Get(ctx, userID, id)
	done(err)
	return found, err
}

func (r *instrumentedIdeaRepository) Update(ctx context.Context, userID, id string, changes map[string]interface{}) (*idea.Idea, error) {
	ctx, done := r.start(ctx, "update", attribute.String("user.id", userID), attribute.String("resource.id", id))
	updated, err := r.inner.Update(ctx, userID, id, changes)
	done(err)
	return updated, err
}

func (r *instrumentedIdeaRepository) Delete(ctx context.Context, userID, id string) error {
	ctx, done := r.start(ctx, "delete", attribute.String("user.id", userID), attribute.String("resource.id", id))
	err := r.inner.Delete(ctx, userID, id)
	done(err)
	return err
}
