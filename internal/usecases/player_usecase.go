package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/pkg/logging"
	"go.uber.org/zap"
)

var ErrInvalidPlayer = errors.New("invalid player")

type PlayerUsecase struct {
	store interfaces.IRatingStore
	feed  interfaces.IFeedRefresher
	now   func() time.Time
}

func NewPlayerUsecase(store interfaces.IRatingStore, feed interfaces.IFeedRefresher) *PlayerUsecase {
	return &PlayerUsecase{
		store: store,
		feed:  feed,
		now:   time.Now,
	}
}

// NormalizeCode trims and upper-cases a player code and checks its shape.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != entities.PlayerCodeLength {
		return "", fmt.Errorf("%w: code must be %d characters", ErrInvalidPlayer, entities.PlayerCodeLength)
	}
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", fmt.Errorf("%w: code must be alphanumeric", ErrInvalidPlayer)
		}
	}
	return code, nil
}

func (u *PlayerUsecase) RegisterPlayer(ctx context.Context, code, name string) (entities.Player, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return entities.Player{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.Player{}, fmt.Errorf("%w: empty name", ErrInvalidPlayer)
	}

	player := entities.Player{
		Code:      code,
		Name:      name,
		Elo:       entities.DefaultElo,
		CreatedAt: u.now().UTC(),
	}
	if err := u.store.CreatePlayer(ctx, player); err != nil {
		return entities.Player{}, fmt.Errorf("failed to create player %s: %w", code, err)
	}
	logging.Info("player registered", zap.String("code", code), zap.String("name", name))
	u.refreshFeed(ctx)
	return player, nil
}

func (u *PlayerUsecase) RenamePlayer(ctx context.Context, code, name string) error {
	code, err := NormalizeCode(code)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPlayer)
	}
	if err := u.store.RenamePlayer(ctx, code, name); err != nil {
		return fmt.Errorf("failed to rename player %s: %w", code, err)
	}
	logging.Info("player renamed", zap.String("code", code), zap.String("name", name))
	u.refreshFeed(ctx)
	return nil
}

// ListPlayers returns every player ordered by code.
func (u *PlayerUsecase) ListPlayers(ctx context.Context) ([]entities.Player, error) {
	players, err := u.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	SortByCode(players)
	return players, nil
}

// Leaderboard returns every player, best rating first.
func (u *PlayerUsecase) Leaderboard(ctx context.Context) ([]entities.Player, error) {
	players, err := u.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Elo != players[j].Elo {
			return players[i].Elo > players[j].Elo
		}
		return players[i].Code < players[j].Code
	})
	return players, nil
}

// History returns the latest match records, newest first.
func (u *PlayerUsecase) History(ctx context.Context, limit int) ([]entities.MatchRecord, error) {
	records, err := u.store.ListMatchRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list match records: %w", err)
	}
	SortByCompletion(records)
	return records, nil
}

// Snapshots reads the players for a new match, in the order given.
func (u *PlayerUsecase) Snapshots(ctx context.Context, codes []string) ([]entities.Player, error) {
	players := make([]entities.Player, 0, len(codes))
	for _, c := range codes {
		code, err := NormalizeCode(c)
		if err != nil {
			return nil, err
		}
		player, err := u.store.GetPlayer(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to get player %s: %w", code, err)
		}
		players = append(players, player)
	}
	return players, nil
}

func (u *PlayerUsecase) refreshFeed(ctx context.Context) {
	if u.feed == nil {
		return
	}
	if err := u.feed.Refresh(ctx); err != nil {
		logging.Warn("failed to refresh feed", zap.Error(err))
	}
}

func SortByCode(players []entities.Player) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].Code < players[j].Code
	})
}

func SortByCompletion(records []entities.MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
}
