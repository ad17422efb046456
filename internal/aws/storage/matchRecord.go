package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dartslab/dartslab/internal/domains/entities"
)

// All records share one partition so a single Query returns them in
// completion order.
const matchRecordPartition = "MatchRecords"

const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

type matchRecordItem struct {
	Feed    string `dynamodbav:"Feed"`
	SortKey string `dynamodbav:"SortKey"`
	entities.MatchRecord
}

func newMatchRecordItem(record entities.MatchRecord) matchRecordItem {
	return matchRecordItem{
		Feed:        matchRecordPartition,
		SortKey:     record.CompletedAt.UTC().Format(sortKeyLayout) + "#" + record.Id,
		MatchRecord: record,
	}
}

// ListMatchRecords returns the latest records, newest first. A limit of 0
// returns all of them.
func (client *Client) ListMatchRecords(ctx context.Context, limit int) ([]entities.MatchRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              client.cfg.MatchRecordsTableName,
		KeyConditionExpression: aws.String("Feed = :feed"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":feed": &types.AttributeValueMemberS{Value: matchRecordPartition},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	paginator := dynamodb.NewQueryPaginator(client.dynamodb, input)
	var records []entities.MatchRecord
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []matchRecordItem
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match records: %w", err)
		}
		for _, item := range items {
			records = append(records, item.MatchRecord)
		}
		if limit > 0 && len(records) >= limit {
			return records[:limit], nil
		}
	}
	return records, nil
}

func (client *Client) matchRecordPut(record entities.MatchRecord) (*types.Put, error) {
	if record.Id == "" || record.CompletedAt.IsZero() {
		return nil, fmt.Errorf("match record needs an id and a completion time")
	}
	av, err := attributevalue.MarshalMap(newMatchRecordItem(record))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map: %w", err)
	}
	return &types.Put{
		TableName:           client.cfg.MatchRecordsTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SortKey)"),
	}, nil
}
