package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appConfig "github.com/fixup-labs/fixup-api/config"
	"github.com/fixup-labs/fixup-api/models"
)

// ProductStore reads product documents for search-result enrichment.
type ProductStore interface {
	GetProducts(ctx context.Context, ids []string) ([]models.Product, error)
}

// DynamoProductStore implements ProductStore against DynamoDB.
//
// Table requirements:
//   - PK: id (string)
type DynamoProductStore struct {
	ddb       *dynamodb.Client
	tableName string
}

var productStoreInstance ProductStore

// InitProductStore initializes the product store with the shared DynamoDB client
func InitProductStore(ddb *dynamodb.Client) ProductStore {
	cfg := appConfig.GetConfig()
	productStoreInstance = &DynamoProductStore{
		ddb:       ddb,
		tableName: cfg.ProductsTable,
	}
	return productStoreInstance
}

// GetProductStore returns the initialized product store instance
func GetProductStore() ProductStore {
	return productStoreInstance
}

// SetProductStore sets the product store instance (primarily for testing)
func SetProductStore(store ProductStore) {
	productStoreInstance = store
}

// GetProducts fetches product documents by id, preserving the input order.
// Ids the table does not know are silently skipped.
func (s *DynamoProductStore) GetProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		})
	}

	out, err := s.ddb.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			s.tableName: {Keys: keys},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to batch get products: %w", err)
	}

	byID := make(map[string]models.Product, len(ids))
	for _, raw := range out.Responses[s.tableName] {
		var product models.Product
		if err := attributevalue.UnmarshalMap(raw, &product); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %w", err)
		}
		byID[product.ID] = product
	}

	products := make([]models.Product, 0, len(byID))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}
