// Package dynamodb keeps idempotency records in a DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "ideas-backend/internal/errors"
	"ideas-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const responseSortKey = "RESPONSE"

// API is the part of the DynamoDB client the store needs.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// idempotencyItem is the stored record. ExpiresAt is the table's TTL attribute.
type idempotencyItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	UserID      string `dynamodbav:"UserID"`
	Operation   string `dynamodbav:"Operation"`
	StatusCode  int    `dynamodbav:"StatusCode"`
	ContentType string `dynamodbav:"ContentType"`
	Body        []byte `dynamodbav:"Body"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	ExpiresAt   int64  `dynamodbav:"ExpiresAt"`
}

// IdempotencyStore implements repository.IdempotencyStore on DynamoDB.
type IdempotencyStore struct {
	client    API
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates a store writing to tableName.
func NewIdempotencyStore(client API, tableName string, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
	}
}

func itemKey(key repository.IdempotencyKey) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: key.String()},
		"SK": &types.AttributeValueMemberS{Value: responseSortKey},
	}
}

// Get returns the stored response. DynamoDB deletes expired items lazily,
// so expiry is checked here as well.
func (s *IdempotencyStore) Get(ctx context.Context, key repository.IdempotencyKey) (*repository.StoredResponse, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, mapError(err, "read idempotency record")
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}

	var item idempotencyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	if item.ExpiresAt <= s.now().Unix() {
		return nil, false, nil
	}

	return &repository.StoredResponse{
		StatusCode:  item.StatusCode,
		ContentType: item.ContentType,
		Body:        item.Body,
	}, true, nil
}

// Store writes resp unless a live record for key exists already. Losing that
// race is not an error: the first response wins.
func (s *IdempotencyStore) Store(ctx context.Context, key repository.IdempotencyKey, resp repository.StoredResponse) error {
	now := s.now()
	av, err := attributevalue.MarshalMap(idempotencyItem{
		PK:          key.String(),
		SK:          responseSortKey,
		UserID:      key.UserID,
		Operation:   key.Operation,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Body:        resp.Body,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		ExpiresAt:   now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("PK")),
		expression.Name("ExpiresAt").LessThanEqual(expression.Value(now.Unix())),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return nil
		}
		return mapError(err, "store idempotency record")
	}
	return nil
}

// Throttling and capacity errors are retryable and surface as Unavailable.
var throttlingCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"ServiceUnavailable":                     true,
	"InternalServerError":                    true,
}

func mapError(err error, operation string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if throttlingCodes[apiErr.ErrorCode()] {
			return apperrors.NewUnavailableError("dynamodb").WithCode(apiErr.ErrorCode()).WithCause(err)
		}
		return apperrors.NewDatabaseError(operation, err).WithCode(apiErr.ErrorCode())
	}
	return apperrors.NewDatabaseError(operation, err)
}
