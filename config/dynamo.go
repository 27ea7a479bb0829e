package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var dynamoClient *dynamodb.Client

// ConnectDynamoDB creates the DynamoDB client used for all document
// collections (users, professionals, jobs, conversations, products).
//
// DYNAMODB_ENDPOINT may point at a local instance (e.g. http://localhost:8000);
// local DynamoDB does not validate credentials but the SDK requires them.
func ConnectDynamoDB(ctx context.Context, cfg *Config) (*dynamodb.Client, error) {
	awsCfg, err := NewAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.DynamoEndpoint != "" {
		dynamoClient = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		})
	} else {
		dynamoClient = dynamodb.NewFromConfig(awsCfg)
	}

	return dynamoClient, nil
}

// NewAWSConfig builds the shared AWS SDK configuration. Static credentials
// from the environment win; otherwise the default provider chain applies.
func NewAWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AWSAccessKeyID,
				cfg.AWSSecretAccessKey,
				"",
			),
		))
	}

	return awsconfig.LoadDefaultConfig(ctx, loadOpts...)
}

// GetDynamoDB returns the DynamoDB client instance
func GetDynamoDB() *dynamodb.Client {
	return dynamoClient
}

// SetDynamoDB sets the DynamoDB client instance (primarily for testing)
func SetDynamoDB(client *dynamodb.Client) {
	dynamoClient = client
}
