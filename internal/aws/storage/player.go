package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
)

func playerKey(code string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"Code": &types.AttributeValueMemberS{
			Value: code,
		},
	}
}

func (client *Client) GetPlayer(ctx context.Context, code string) (entities.Player, error) {
	return client.getPlayer(ctx, code)
}

func (client *Client) getPlayer(ctx context.Context, code string) (entities.Player, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      client.cfg.PlayersTableName,
		Key:            playerKey(code),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Player{}, err
	}
	if output.Item == nil {
		return entities.Player{}, interfaces.ErrPlayerNotFound
	}
	var player entities.Player
	if err := attributevalue.UnmarshalMap(output.Item, &player); err != nil {
		return entities.Player{}, err
	}
	return player, nil
}

func (client *Client) CreatePlayer(ctx context.Context, player entities.Player) error {
	player.Version = 0
	av, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.PlayersTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(Code)"),
	})
	if isConditionFailed(err) {
		return interfaces.ErrPlayerExists
	}
	return err
}

func (client *Client) RenamePlayer(ctx context.Context, code, name string) error {
	_, err := client.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           client.cfg.PlayersTableName,
		Key:                 playerKey(code),
		UpdateExpression:    aws.String("SET #name = :name ADD #version :one"),
		ConditionExpression: aws.String("attribute_exists(Code)"),
		ExpressionAttributeNames: map[string]string{
			"#name":    "Name",
			"#version": "Version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if isConditionFailed(err) {
		return interfaces.ErrPlayerNotFound
	}
	return err
}

// ListPlayers scans the whole players table and returns it ordered by code.
func (client *Client) ListPlayers(ctx context.Context) ([]entities.Player, error) {
	paginator := dynamodb.NewScanPaginator(client.dynamodb, &dynamodb.ScanInput{
		TableName:      client.cfg.PlayersTableName,
		ConsistentRead: aws.Bool(true),
	})
	var players []entities.Player
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []entities.Player
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		players = append(players, page...)
	}
	slices.SortFunc(players, func(a, b entities.Player) int {
		return strings.Compare(a.Code, b.Code)
	})
	return players, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
