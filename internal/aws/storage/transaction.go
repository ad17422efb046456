package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/google/uuid"
)

// DynamoDB accepts at most this many items in one transaction.
const maxTransactItems = 100

// RunTransaction reads through consistent GetItem calls and buffers every
// write. The writes go out in one TransactWriteItems call, each player
// update guarded by the version it was read at.
func (client *Client) RunTransaction(ctx context.Context, fn func(interfaces.ITransaction) error) error {
	tx := &transaction{
		ctx:         ctx,
		client:      client,
		read:        map[string]int64{},
		written:     map[string]bool{},
		recordIndex: -1,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.items) == 0 {
		return nil
	}
	_, err := client.dynamodb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      tx.items,
		ClientRequestToken: tx.requestToken(),
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && tx.recordRejected(canceled) {
			return fmt.Errorf("%w: %s", interfaces.ErrRecordExists, tx.recordId)
		}
		var conflict *types.TransactionConflictException
		if canceled != nil || errors.As(err, &conflict) {
			return fmt.Errorf("%w: %v", interfaces.ErrTxConflict, err)
		}
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

type transaction struct {
	ctx     context.Context
	client  *Client
	read    map[string]int64 // code -> version seen by GetPlayer
	written map[string]bool
	items   []types.TransactWriteItem

	recordId    string
	recordIndex int
}

// requestToken is derived from the record id and every version read, so a
// resend of the same writes is applied once while a retry after fresh reads
// gets a token of its own. Transactions without a record let the SDK pick.
func (t *transaction) requestToken() *string {
	if t.recordId == "" {
		return nil
	}
	parts := make([]string, 0, len(t.read)+1)
	for code, version := range t.read {
		parts = append(parts, code+"="+strconv.FormatInt(version, 10))
	}
	slices.Sort(parts)
	parts = append([]string{t.recordId}, parts...)
	return aws.String(uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, ";"))).String())
}

// recordRejected reports whether the cancellation came from the record put
// finding its key taken.
func (t *transaction) recordRejected(canceled *types.TransactionCanceledException) bool {
	if t.recordIndex < 0 || t.recordIndex >= len(canceled.CancellationReasons) {
		return false
	}
	return aws.ToString(canceled.CancellationReasons[t.recordIndex].Code) == "ConditionalCheckFailed"
}

func (t *transaction) GetPlayer(code string) (entities.Player, error) {
	player, err := t.client.getPlayer(t.ctx, code)
	if err != nil {
		return entities.Player{}, err
	}
	t.read[code] = player.Version
	return player, nil
}

func (t *transaction) UpdatePlayer(player entities.Player) error {
	version, ok := t.read[player.Code]
	if !ok {
		return fmt.Errorf("player %s was not read in this transaction", player.Code)
	}
	if t.written[player.Code] {
		return fmt.Errorf("player %s updated twice in one transaction", player.Code)
	}
	player.Version = version + 1
	av, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	err = t.add(types.TransactWriteItem{
		Put: &types.Put{
			TableName:           t.client.cfg.PlayersTableName,
			Item:                av,
			ConditionExpression: aws.String("#version = :version"),
			ExpressionAttributeNames: map[string]string{
				"#version": "Version",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(version, 10)},
			},
		},
	})
	if err != nil {
		return err
	}
	t.written[player.Code] = true
	return nil
}

func (t *transaction) PutMatchRecord(record entities.MatchRecord) error {
	if t.recordId != "" {
		return fmt.Errorf("match record %s already written in this transaction", t.recordId)
	}
	put, err := t.client.matchRecordPut(record)
	if err != nil {
		return err
	}
	if err := t.add(types.TransactWriteItem{Put: put}); err != nil {
		return err
	}
	t.recordId = record.Id
	t.recordIndex = len(t.items) - 1
	return nil
}

func (t *transaction) add(item types.TransactWriteItem) error {
	if len(t.items) >= maxTransactItems {
		return fmt.Errorf("transaction exceeds %d writes", maxTransactItems)
	}
	t.items = append(t.items, item)
	return nil
}
