package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// experimentItem is the DynamoDB shape of an experiment. Variant counters are
// kept inside the JSON payload; the whole experiment is written under one key
// so updates stay single-item.
type experimentItem struct {
	ID         string `dynamodbav:"id"`
	ScenarioID string `dynamodbav:"scenarioId"`
	Status     string `dynamodbav:"status"`
	Payload    []byte `dynamodbav:"payload"`
	UpdatedAt  string `dynamodbav:"updatedAt"`
}

type assignmentItem struct {
	Key       string `dynamodbav:"assignmentKey"`
	VariantID string `dynamodbav:"variantId"`
	CreatedAt string `dynamodbav:"createdAt"`
}

// DynamoStore persists experiments and assignments in DynamoDB, for
// deployments already running on AWS. Assignment inserts use a conditional
// put so the check-then-set is atomic.
type DynamoStore struct {
	client           dynamoAPI
	experimentsTable string
	assignmentsTable string
	logger           *logging.Logger
}

// NewDynamoStore builds a store over the given tables.
func NewDynamoStore(client dynamoAPI, experimentsTable, assignmentsTable string, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("experiment: dynamodb client cannot be nil")
	}
	if experimentsTable == "" || assignmentsTable == "" {
		panic("experiment: table names cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{
		client:           client,
		experimentsTable: experimentsTable,
		assignmentsTable: assignmentsTable,
		logger:           logger,
	}
}

// Put writes the full experiment state.
func (s *DynamoStore) Put(ctx context.Context, e *Experiment) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("experiment: failed to marshal: %w", err)
	}
	item, err := attributevalue.MarshalMap(experimentItem{
		ID:         e.ID,
		ScenarioID: e.ScenarioID,
		Status:     string(e.Status),
		Payload:    payload,
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("experiment: failed to marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.experimentsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("experiment: failed to persist: %w", err)
	}
	return nil
}

// Get loads an experiment by id, or ErrNotFound.
func (s *DynamoStore) Get(ctx context.Context, id string) (*Experiment, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.experimentsTable),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("experiment: failed to load: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var item experimentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("experiment: failed to unmarshal item: %w", err)
	}
	var e Experiment
	if err := json.Unmarshal(item.Payload, &e); err != nil {
		return nil, fmt.Errorf("experiment: failed to decode payload: %w", err)
	}
	return &e, nil
}

// Assign inserts the assignment with a conditional put; when the condition
// fails another writer holds it, so return theirs.
func (s *DynamoStore) Assign(ctx context.Context, userID, experimentID, variantID string) (string, error) {
	item, err := attributevalue.MarshalMap(assignmentItem{
		Key:       assignmentKey(userID, experimentID),
		VariantID: variantID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("experiment: failed to marshal assignment: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.assignmentsTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(assignmentKey)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			s.logger.Debug("assignment already held, returning existing",
				"experiment_id", experimentID)
			return s.Assignment(ctx, userID, experimentID)
		}
		return "", fmt.Errorf("experiment: failed to assign: %w", err)
	}
	return variantID, nil
}

// Assignment returns the assigned variant id, or "" when none exists.
func (s *DynamoStore) Assignment(ctx context.Context, userID, experimentID string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.assignmentsTable),
		Key:            map[string]types.AttributeValue{"assignmentKey": &types.AttributeValueMemberS{Value: assignmentKey(userID, experimentID)}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("experiment: failed to read assignment: %w", err)
	}
	if out.Item == nil {
		return "", nil
	}
	var item assignmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("experiment: failed to unmarshal assignment: %w", err)
	}
	return item.VariantID, nil
}
