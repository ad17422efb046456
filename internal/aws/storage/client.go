package storage

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// dynamoAPI is the part of *dynamodb.Client the store uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type Config struct {
	PlayersTableName      *string
	MatchRecordsTableName *string
}

func NewConfig(playersTable, matchRecordsTable string) Config {
	return Config{
		PlayersTableName:      aws.String(playersTable),
		MatchRecordsTableName: aws.String(matchRecordsTable),
	}
}

type Client struct {
	dynamodb dynamoAPI
	cfg      Config
}

func NewClient(dynamoClient dynamoAPI, cfg Config) *Client {
	return &Client{
		dynamodb: dynamoClient,
		cfg:      cfg,
	}
}

// NewConfigFromEnv reads the table names the lambdas are deployed with.
func NewConfigFromEnv() Config {
	return NewConfig(
		envOr("PLAYERS_TABLE_NAME", "Players"),
		envOr("MATCH_RECORDS_TABLE_NAME", "MatchRecords"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
