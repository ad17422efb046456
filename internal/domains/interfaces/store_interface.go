package interfaces

import (
	"context"
	"errors"

	"github.com/dartslab/dartslab/internal/domains/entities"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	// ErrTxConflict reports a transaction that lost a race with a concurrent
	// writer. Retrying with fresh reads may succeed.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrRecordExists reports a match record id that was already written.
	ErrRecordExists = errors.New("match record already exists")
)

type (
	IRatingStore interface {
		GetPlayer(ctx context.Context, code string) (entities.Player, error)
		CreatePlayer(ctx context.Context, player entities.Player) error
		RenamePlayer(ctx context.Context, code, name string) error
		ListPlayers(ctx context.Context) ([]entities.Player, error)
		ListMatchRecords(ctx context.Context, limit int) ([]entities.MatchRecord, error)

		// RunTransaction runs fn against a consistent view of the store and
		// applies its writes all together or not at all. A non-nil error from
		// fn discards every write.
		RunTransaction(ctx context.Context, fn func(ITransaction) error) error
	}

	ITransaction interface {
		GetPlayer(code string) (entities.Player, error)
		// UpdatePlayer writes back a player previously read in the same
		// transaction.
		UpdatePlayer(player entities.Player) error
		// PutMatchRecord fails the transaction with ErrRecordExists when a
		// record with the same id and completion time is already stored.
		PutMatchRecord(record entities.MatchRecord) error
	}

	// IFeedRefresher is notified when committed data changed.
	IFeedRefresher interface {
		Refresh(ctx context.Context) error
	}
)
