package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"ideas-backend/internal/config"
	"ideas-backend/internal/domain/idea"
	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/infrastructure/observability"
	"ideas-backend/internal/repository/mocks"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func testBreaker() *gobreaker.CircuitBreaker {
	return NewCircuitBreaker("test", config.CircuitBreaker{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	}, zap.NewNop())
}

func TestCircuitBreaker_OpensOnBackendFailures(t *testing.T) {
	inner := new(mocks.TopicRepository)
	repo := WithTopicCircuitBreaker(inner, testBreaker())
	ctx := context.Background()
	backendDown := apperrors.NewUnavailableError("supabase")

	inner.On("List", ctx, "user-1", idea.ListFilter{}).Return(nil, backendDown).Twice()

	for i := 0; i < 2; i++ {
		_, err := repo.List(ctx, "user-1", idea.ListFilter{})
		require.Error(t, err)
	}

	_, err := repo.List(ctx, "user-1", idea.ListFilter{})

	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	inner.AssertNumberOfCalls(t, "List", 2)
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	inner := new(mocks.IdeaRepository)
	cb := testBreaker()
	repo := WithIdeaCircuitBreaker(inner, cb)
	ctx := context.Background()

	inner.On("Get", ctx, "user-1", "missing").Return(nil, apperrors.NewNotFoundError("Idea"))

	for i := 0; i < 5; i++ {
		_, err := repo.Get(ctx, "user-1", "missing")
		assert.True(t, apperrors.IsNotFound(err))
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	inner.AssertNumberOfCalls(t, "Get", 5)
}

func TestCircuitBreaker_PassesResultsThrough(t *testing.T) {
	inner := new(mocks.IdeaRepository)
	repo := WithIdeaCircuitBreaker(inner, testBreaker())
	ctx := context.Background()
	stored := &idea.Idea{ID: "idea-1", UserID: "user-1"}

	inner.On("Create", ctx, stored).Return(stored, nil)
	inner.On("Delete", ctx, "user-1", "idea-1").Return(nil)

	created, err := repo.Create(ctx, stored)
	require.NoError(t, err)
	assert.Same(t, stored, created)
	assert.NoError(t, repo.Delete(ctx, "user-1", "idea-1"))
}

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(context.Canceled))
	assert.True(t, isSuccessful(apperrors.NewValidationError("bad")))
	assert.True(t, isSuccessful(apperrors.NewUnauthorizedError("no")))
	assert.False(t, isSuccessful(apperrors.NewDatabaseError("select", errors.New("boom"))))
	assert.False(t, isSuccessful(context.DeadlineExceeded))
}

func TestInstrumentedRepositories(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
	metrics := observability.NewCollector("test")
	ctx := context.Background()

	t.Run("Should record a span and a successful operation", func(t *testing.T) {
		inner := new(mocks.TopicRepository)
		repo := InstrumentTopics(inner, metrics, tracer)
		inner.On("Get", mock.Anything, "user-1", "topic-1").Return(&idea.IdeaTopic{ID: "topic-1"}, nil)

		topic, err := repo.Get(ctx, "user-1", "topic-1")

		require.NoError(t, err)
		assert.Equal(t, "topic-1", topic.ID)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DBOperations.WithLabelValues("get", idea.TopicTable, "success")))

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		last := spans[len(spans)-1]
		assert.Equal(t, "repository.IdeaTopic.get", last.Name())
		attrs := map[string]string{}
		for _, kv := range last.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, "user-1", attrs["user.id"])
		assert.Equal(t, "topic-1", attrs["resource.id"])
		assert.Equal(t, idea.TopicTable, attrs["db.table"])
	})

	t.Run("Should record failures", func(t *testing.T) {
		inner := new(mocks.IdeaRepository)
		repo := InstrumentIdeas(inner, metrics, tracer)
		inner.On("Delete", mock.Anything, "user-1", "idea-1").Return(errors.New("boom"))

		err := repo.Delete(ctx, "user-1", "idea-1")

		require.Error(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DBOperations.WithLabelValues("delete", idea.IdeaTable, "error")))
		spans := recorder.Ended()
		last := spans[len(spans)-1]
		assert.Len(t, last.Events(), 1)
	})
}
