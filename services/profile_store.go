package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appConfig "github.com/fixup-labs/fixup-api/config"
	"github.com/fixup-labs/fixup-api/models"
)

// ProfileStore covers the users and professionals collections. Both are
// keyed by the token subject, so every write is scoped to the caller.
type ProfileStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	PutUser(ctx context.Context, user *models.User) error
	GetProfessional(ctx context.Context, id string) (*models.Professional, error)
	PutProfessional(ctx context.Context, pro *models.Professional) error
	ListProfessionalsByCategory(ctx context.Context, category string, limit int) ([]models.Professional, error)
}

// DynamoProfileStore implements ProfileStore against DynamoDB.
//
// Table requirements:
//   - users: PK id (string)
//   - professionals: PK id (string), GSI service_category-index (PK: service_category)
type DynamoProfileStore struct {
	ddb                *dynamodb.Client
	usersTable         string
	professionalsTable string
}

const professionalCategoryIndex = "service_category-index"

var profileStoreInstance ProfileStore

// InitProfileStore initializes the profile store with the shared DynamoDB client
func InitProfileStore(ddb *dynamodb.Client) ProfileStore {
	cfg := appConfig.GetConfig()
	profileStoreInstance = &DynamoProfileStore{
		ddb:                ddb,
		usersTable:         cfg.UsersTable,
		professionalsTable: cfg.ProfessionalsTable,
	}
	return profileStoreInstance
}

// GetProfileStore returns the initialized profile store instance
func GetProfileStore() ProfileStore {
	return profileStoreInstance
}

// SetProfileStore sets the profile store instance (primarily for testing)
func SetProfileStore(store ProfileStore) {
	profileStoreInstance = store
}

func (s *DynamoProfileStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.usersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (s *DynamoProfileStore) PutUser(ctx context.Context, user *models.User) error {
	av, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.usersTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

func (s *DynamoProfileStore) GetProfessional(ctx context.Context, id string) (*models.Professional, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.professionalsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var pro models.Professional
	if err := attributevalue.UnmarshalMap(out.Item, &pro); err != nil {
		return nil, fmt.Errorf("failed to unmarshal professional: %w", err)
	}
	return &pro, nil
}

func (s *DynamoProfileStore) PutProfessional(ctx context.Context, pro *models.Professional) error {
	av, err := attributevalue.MarshalMap(pro)
	if err != nil {
		return fmt.Errorf("failed to marshal professional: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.professionalsTable),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put professional: %w", err)
	}
	return nil
}

func (s *DynamoProfileStore) ListProfessionalsByCategory(ctx context.Context, category string, limit int) ([]models.Professional, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.professionalsTable),
		IndexName:              aws.String(professionalCategoryIndex),
		KeyConditionExpression: aws.String("service_category = :cat"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cat": &types.AttributeValueMemberS{Value: category},
		},
		Limit: aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query professionals: %w", err)
	}

	pros := make([]models.Professional, 0, len(out.Items))
	for _, raw := range out.Items {
		var pro models.Professional
		if err := attributevalue.UnmarshalMap(raw, &pro); err != nil {
			return nil, fmt.Errorf("failed to unmarshal professional: %w", err)
		}
		pros = append(pros, pro)
	}
	return pros, nil
}
