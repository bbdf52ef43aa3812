package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ideas-backend/internal/domain/idea"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeEventBridge struct {
	calls  []*eventbridge.PutEventsInput
	output *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &eventbridge.PutEventsOutput{}, nil
}

func makeEvents(n int) []idea.Event {
	events := make([]idea.Event, n)
	for i := range events {
		events[i] = idea.NewEvent(idea.EventIdeaCreated, "idea-1", "user-1", map[string]string{"name": "CLI"})
	}
	return events
}

func TestEventBridgePublisher_Publish(t *testing.T) {
	t.Run("Should split events into batches of ten", func(t *testing.T) {
		client := &fakeEventBridge{}
		publisher := NewEventBridgePublisher(client, "ideas-bus", "", zap.NewNop())

		err := publisher.Publish(context.Background(), makeEvents(23)...)

		require.NoError(t, err)
		require.Len(t, client.calls, 3)
		assert.Len(t, client.calls[0].Entries, 10)
		assert.Len(t, client.calls[2].Entries, 3)
	})

	t.Run("Should describe each event", func(t *testing.T) {
		client := &fakeEventBridge{}
		publisher := NewEventBridgePublisher(client, "ideas-bus", "ideas.test", zap.NewNop())
		event := idea.NewEvent(idea.EventTopicDeleted, "topic-1", "user-1", nil)

		require.NoError(t, publisher.Publish(context.Background(), event))

		entry := client.calls[0].Entries[0]
		assert.Equal(t, "ideas-bus", aws.ToString(entry.EventBusName))
		assert.Equal(t, "ideas.test", aws.ToString(entry.Source))
		assert.Equal(t, "idea_topic.deleted", aws.ToString(entry.DetailType))

		var detail map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
		assert.Equal(t, "topic-1", detail["aggregate_id"])
		assert.Equal(t, "user-1", detail["user_id"])
	})

	t.Run("Should not call EventBridge without events", func(t *testing.T) {
		client := &fakeEventBridge{}
		publisher := NewEventBridgePublisher(client, "", "", zap.NewNop())

		require.NoError(t, publisher.Publish(context.Background()))
		assert.Empty(t, client.calls)
	})

	t.Run("Should report API failures", func(t *testing.T) {
		client := &fakeEventBridge{err: errors.New("throttled")}
		publisher := NewEventBridgePublisher(client, "", "", zap.NewNop())

		err := publisher.Publish(context.Background(), makeEvents(1)...)

		assert.ErrorContains(t, err, "throttled")
	})

	t.Run("Should report rejected entries", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		client := &fakeEventBridge{output: &eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("ok")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
			},
		}}
		publisher := NewEventBridgePublisher(client, "", "", zap.New(core))

		err := publisher.Publish(context.Background(), makeEvents(2)...)

		assert.ErrorContains(t, err, "1 events failed to publish")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "InternalFailure", logs.All()[0].ContextMap()["code"])
	})
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := NewLogPublisher(zap.New(core))

	require.NoError(t, publisher.Publish(context.Background(), makeEvents(2)...))

	assert.Equal(t, 2, logs.FilterMessage("Domain event").Len())
}
