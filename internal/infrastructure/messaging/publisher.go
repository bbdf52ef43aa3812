// Package messaging delivers topic and idea lifecycle events.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"ideas-backend/internal/domain/idea"
	"ideas-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// EventBridge accepts at most 10 entries per PutEvents call.
const maxBatchSize = 10

// PutEventsAPI is the part of the EventBridge client the publisher needs.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher implements repository.EventPublisher using AWS EventBridge.
type EventBridgePublisher struct {
	client   PutEventsAPI
	eventBus string
	source   string
	logger   *zap.Logger
}

var _ repository.EventPublisher = (*EventBridgePublisher)(nil)

// NewEventBridgePublisher creates a new EventBridge publisher.
func NewEventBridgePublisher(client PutEventsAPI, eventBus, source string, logger *zap.Logger) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "ideas.backend"
	}
	return &EventBridgePublisher{
		client:   client,
		eventBus: eventBus,
		source:   source,
		logger:   logger,
	}
}

// Publish sends events in batches of ten.
func (p *EventBridgePublisher) Publish(ctx context.Context, events ...idea.Event) error {
	for i := 0; i < len(events); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := p.publishBatch(ctx, events[i:end]); err != nil {
			return fmt.Errorf("failed to publish event batch: %w", err)
		}
	}
	return nil
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, events []idea.Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(events))
	for _, event := range events {
		detail, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
		}
		occurredAt := event.OccurredAt
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.eventBus),
			Source:       aws.String(p.source),
			DetailType:   aws.String(string(event.Type)),
			Detail:       aws.String(string(detail)),
			Resources:    []string{event.AggregateID},
			Time:         &occurredAt,
		})
	}

	output, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to put events: %w", err)
	}

	if output.FailedEntryCount > 0 {
		for i, entry := range output.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("EventBridge rejected event",
					zap.String("event_id", events[i].ID),
					zap.String("event_type", string(events[i].Type)),
					zap.String("code", aws.ToString(entry.ErrorCode)),
					zap.String("message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d events failed to publish", output.FailedEntryCount)
	}

	p.logger.Debug("Published events", zap.Int("count", len(entries)), zap.String("bus", p.eventBus))
	return nil
}

// LogPublisher writes events to the log. It is used when no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ repository.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events ...idea.Event) error {
	for _, event := range events {
		p.logger.Info("Domain event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.String("user_id", event.UserID),
			zap.Time("occurred_at", event.OccurredAt),
		)
	}
	return nil
}
