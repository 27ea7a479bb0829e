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

// OpenJobsBoardLimit bounds the professional job board query
const OpenJobsBoardLimit = 30

// JobStore persists job documents with their embedded quote lists.
// Updates are whole-document puts; two concurrent writers on the same job
// race with last-write-wins, matching the document store's native upsert.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	PutJob(ctx context.Context, job *models.Job) error
	ListJobsByUser(ctx context.Context, userID string) ([]models.Job, error)
	ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error)
	ListJobsQuotedBy(ctx context.Context, professionalID string) ([]models.Job, error)
}

// DynamoJobStore implements JobStore against DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-index (PK: user_id, SK: created_at)
//   - GSI: status-index (PK: status, SK: created_at)
type DynamoJobStore struct {
	ddb       *dynamodb.Client
	tableName string
}

const (
	jobUserIndex   = "user_id-index"
	jobStatusIndex = "status-index"
)

var jobStoreInstance JobStore

// InitJobStore initializes the job store with the shared DynamoDB client
func InitJobStore(ddb *dynamodb.Client) JobStore {
	cfg := appConfig.GetConfig()
	jobStoreInstance = &DynamoJobStore{
		ddb:       ddb,
		tableName: cfg.JobsTable,
	}
	return jobStoreInstance
}

// GetJobStore returns the initialized job store instance
func GetJobStore() JobStore {
	return jobStoreInstance
}

// SetJobStore sets the job store instance (primarily for testing)
func SetJobStore(store JobStore) {
	jobStoreInstance = store
}

// CreateJob writes a new job document. The condition only guards against id
// collision; it is not an optimistic-concurrency token.
func (s *DynamoJobStore) CreateJob(ctx context.Context, job *models.Job) error {
	av, err := attributevalue.MarshalMap(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *DynamoJobStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var job models.Job
	if err := attributevalue.UnmarshalMap(out.Item, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// PutJob overwrites the full job document, embedded quotes included.
func (s *DynamoJobStore) PutJob(ctx context.Context, job *models.Job) error {
	av, err := attributevalue.MarshalMap(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put job: %w", err)
	}
	return nil
}

func (s *DynamoJobStore) ListJobsByUser(ctx context.Context, userID string) ([]models.Job, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(jobUserIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs by user: %w", err)
	}
	return unmarshalJobs(out.Items)
}

func (s *DynamoJobStore) ListOpenJobs(ctx context.Context, limit int) ([]models.Job, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(jobStatusIndex),
		KeyConditionExpression: aws.String("#status = :open"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":open": &types.AttributeValueMemberS{Value: models.JobStatusOpen},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query open jobs: %w", err)
	}
	return unmarshalJobs(out.Items)
}

// ListJobsQuotedBy finds every job carrying a quote from the professional.
// Quotes are embedded, so this is the one cross-partition lookup that has
// to filter on the quoted_by membership attribute.
func (s *DynamoJobStore) ListJobsQuotedBy(ctx context.Context, professionalID string) ([]models.Job, error) {
	out, err := s.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("contains(quoted_by, :pid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: professionalID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quoted jobs: %w", err)
	}
	return unmarshalJobs(out.Items)
}

func unmarshalJobs(items []map[string]types.AttributeValue) ([]models.Job, error) {
	jobs := make([]models.Job, 0, len(items))
	for _, raw := range items {
		var job models.Job
		if err := attributevalue.UnmarshalMap(raw, &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
