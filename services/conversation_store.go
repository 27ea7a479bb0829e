package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appConfig "github.com/fixup-labs/fixup-api/config"
	"github.com/fixup-labs/fixup-api/models"
)

// MaxConversationPageSize caps the limit parameter on conversation listing
const MaxConversationPageSize = 50

// ConversationPage is one page of a user's conversations plus the token
// to request the next page, empty when no more exist.
type ConversationPage struct {
	Conversations     []models.Conversation `json:"conversations"`
	ContinuationToken string                `json:"continuation_token,omitempty"`
}

// ConversationStore persists conversations partitioned by their owner.
type ConversationStore interface {
	GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error)
	PutConversation(ctx context.Context, conv *models.Conversation) error
	ListConversations(ctx context.Context, userID string, limit int, continuationToken string) (*ConversationPage, error)
}

// DynamoConversationStore implements ConversationStore against DynamoDB.
//
// Table requirements:
//   - PK: user_id (string), SK: id (string)
type DynamoConversationStore struct {
	ddb       *dynamodb.Client
	tableName string
}

var conversationStoreInstance ConversationStore

// InitConversationStore initializes the conversation store with the shared DynamoDB client
func InitConversationStore(ddb *dynamodb.Client) ConversationStore {
	cfg := appConfig.GetConfig()
	conversationStoreInstance = &DynamoConversationStore{
		ddb:       ddb,
		tableName: cfg.ConversationsTable,
	}
	return conversationStoreInstance
}

// GetConversationStore returns the initialized conversation store instance
func GetConversationStore() ConversationStore {
	return conversationStoreInstance
}

// SetConversationStore sets the conversation store instance (primarily for testing)
func SetConversationStore(store ConversationStore) {
	conversationStoreInstance = store
}

func (s *DynamoConversationStore) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"id":      &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var conv models.Conversation
	if err := attributevalue.UnmarshalMap(out.Item, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

func (s *DynamoConversationStore) PutConversation(ctx context.Context, conv *models.Conversation) error {
	av, err := attributevalue.MarshalMap(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put conversation: %w", err)
	}
	return nil
}

func (s *DynamoConversationStore) ListConversations(ctx context.Context, userID string, limit int, continuationToken string) (*ConversationPage, error) {
	if limit <= 0 || limit > MaxConversationPageSize {
		limit = MaxConversationPageSize
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}

	if continuationToken != "" {
		startKey, err := decodePageToken(continuationToken)
		if err != nil {
			return nil, fmt.Errorf("invalid continuation token: %w", err)
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := s.ddb.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}

	convs := make([]models.Conversation, 0, len(out.Items))
	for _, raw := range out.Items {
		var conv models.Conversation
		if err := attributevalue.UnmarshalMap(raw, &conv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	page := &ConversationPage{Conversations: convs}
	if len(out.LastEvaluatedKey) > 0 {
		token, err := encodePageToken(out.LastEvaluatedKey)
		if err != nil {
			return nil, err
		}
		page.ContinuationToken = token
	}
	return page, nil
}

// pageKey is the serializable form of the conversations table key
type pageKey struct {
	UserID string `json:"user_id" dynamodbav:"user_id"`
	ID     string `json:"id" dynamodbav:"id"`
}

func encodePageToken(key map[string]types.AttributeValue) (string, error) {
	var pk pageKey
	if err := attributevalue.UnmarshalMap(key, &pk); err != nil {
		return "", fmt.Errorf("failed to encode page token: %w", err)
	}
	raw, err := json.Marshal(pk)
	if err != nil {
		return "", fmt.Errorf("failed to encode page token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func decodePageToken(token string) (map[string]types.AttributeValue, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var pk pageKey
	if err := json.Unmarshal(raw, &pk); err != nil {
		return nil, err
	}
	if pk.UserID == "" || pk.ID == "" {
		return nil, fmt.Errorf("incomplete page token")
	}
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: pk.UserID},
		"id":      &types.AttributeValueMemberS{Value: pk.ID},
	}, nil
}
