package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/game"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/dartslab/dartslab/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrCommitFailed   = errors.New("commit failed")
	ErrInvalidOutcome = errors.New("invalid outcome")
	// ErrMatchSettled is returned when the outcome was already committed,
	// typically by an earlier attempt whose reply was lost.
	ErrMatchSettled = errors.New("match already settled")
)

type SettlementConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// SettlementUsecase turns a finished match into rating updates and a match
// record, committed atomically.
type SettlementUsecase struct {
	store interfaces.IRatingStore
	feed  interfaces.IFeedRefresher
	cfg   SettlementConfig
}

func NewSettlementUsecase(
	store interfaces.IRatingStore,
	feed interfaces.IFeedRefresher,
	cfg SettlementConfig,
) *SettlementUsecase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &SettlementUsecase{
		store: store,
		feed:  feed,
		cfg:   cfg,
	}
}

// Commit settles outcome. Ratings are read inside the transaction, never
// taken from the snapshots in the outcome. Conflicts are retried; any
// failure is returned wrapped in ErrCommitFailed and the caller keeps the
// outcome to try again. The record is keyed by the outcome id, so committing
// an outcome that is already stored changes nothing and returns
// ErrMatchSettled.
func (u *SettlementUsecase) Commit(ctx context.Context, outcome *game.Outcome) (entities.MatchRecord, error) {
	if err := validateOutcome(outcome); err != nil {
		return entities.MatchRecord{}, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	for attempt := 1; ; attempt++ {
		record, err := u.settle(ctx, outcome)
		if err == nil {
			logging.Info("match settled",
				zap.String("record_id", record.Id),
				zap.String("winner", record.WinnerCode),
				zap.Int("elo_change", record.EloChange),
				zap.Int("attempt", attempt),
			)
			u.refreshFeed(ctx)
			return record, nil
		}
		if errors.Is(err, interfaces.ErrRecordExists) {
			logging.Info("match already settled",
				zap.String("record_id", outcome.Id),
				zap.Int("attempt", attempt),
			)
			return entities.MatchRecord{}, fmt.Errorf("%w: %s", ErrMatchSettled, outcome.Id)
		}
		if !errors.Is(err, interfaces.ErrTxConflict) || attempt >= u.cfg.MaxAttempts {
			logging.Error("failed to settle match",
				zap.String("winner", outcome.Winner.Code),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return entities.MatchRecord{}, fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}

		logging.Warn("settlement conflict, retrying",
			zap.String("winner", outcome.Winner.Code),
			zap.Int("attempt", attempt),
		)
		select {
		case <-ctx.Done():
			return entities.MatchRecord{}, fmt.Errorf("%w: %w", ErrCommitFailed, ctx.Err())
		case <-time.After(u.cfg.Backoff * time.Duration(attempt)):
		}
	}
}

func (u *SettlementUsecase) settle(ctx context.Context, outcome *game.Outcome) (entities.MatchRecord, error) {
	var record entities.MatchRecord
	err := u.store.RunTransaction(ctx, func(tx interfaces.ITransaction) error {
		winner, err := tx.GetPlayer(outcome.Winner.Code)
		if err != nil {
			return fmt.Errorf("failed to read winner %s: %w", outcome.Winner.Code, err)
		}
		losers := make([]entities.Player, 0, len(outcome.Losers))
		ratings := make([]int, 0, len(outcome.Losers))
		for _, l := range outcome.Losers {
			loser, err := tx.GetPlayer(l.Code)
			if err != nil {
				return fmt.Errorf("failed to read loser %s: %w", l.Code, err)
			}
			losers = append(losers, loser)
			ratings = append(ratings, loser.Elo)
		}

		total, deltas := utils.Settle(winner.Elo, ratings)

		winner.Elo += total
		winner.Matches++
		winner.Wins++
		if err := tx.UpdatePlayer(winner); err != nil {
			return fmt.Errorf("failed to update winner %s: %w", winner.Code, err)
		}

		entries := make([]entities.LoserEntry, 0, len(losers))
		for i, loser := range losers {
			loser.Elo += deltas[i]
			loser.Matches++
			if err := tx.UpdatePlayer(loser); err != nil {
				return fmt.Errorf("failed to update loser %s: %w", loser.Code, err)
			}
			entries = append(entries, entities.LoserEntry{
				Code:      loser.Code,
				Name:      loser.Name,
				EloChange: deltas[i],
			})
		}

		record = entities.MatchRecord{
			Id:          outcome.Id,
			WinnerCode:  winner.Code,
			WinnerName:  winner.Name,
			Losers:      entries,
			EloChange:   total,
			CompletedAt: outcome.CompletedAt,
			Moves:       append([]entities.Move{}, outcome.Moves...),
		}
		return tx.PutMatchRecord(record)
	})
	if err != nil {
		return entities.MatchRecord{}, err
	}
	return record, nil
}

func (u *SettlementUsecase) refreshFeed(ctx context.Context) {
	if u.feed == nil {
		return
	}
	if err := u.feed.Refresh(ctx); err != nil {
		logging.Warn("failed to refresh feed", zap.Error(err))
	}
}

func validateOutcome(outcome *game.Outcome) error {
	if outcome == nil {
		return fmt.Errorf("%w: no outcome", ErrInvalidOutcome)
	}
	if len(outcome.Losers) == 0 {
		return fmt.Errorf("%w: no losers", ErrInvalidOutcome)
	}
	seen := map[string]bool{}
	for _, code := range outcome.Codes() {
		if code == "" {
			return fmt.Errorf("%w: empty player code", ErrInvalidOutcome)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidOutcome, code)
		}
		seen[code] = true
	}
	if outcome.Id == "" {
		return fmt.Errorf("%w: no match id", ErrInvalidOutcome)
	}
	if outcome.CompletedAt.IsZero() {
		return fmt.Errorf("%w: no completion time", ErrInvalidOutcome)
	}
	return nil
}
