package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const refreshTimeout = 10 * time.Second

// Refresher reloads the feed from the store and publishes when something
// changed. It implements interfaces.IFeedRefresher.
type Refresher struct {
	mu           sync.Mutex
	store        interfaces.IRatingStore
	hub          *Hub
	historyLimit int
	now          func() time.Time
}

func NewRefresher(store interfaces.IRatingStore, hub *Hub, historyLimit int) *Refresher {
	return &Refresher{
		store:        store,
		hub:          hub,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	players, err := r.store.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	records, err := r.store.ListMatchRecords(ctx, r.historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list match records: %w", err)
	}
	usecases.SortByCode(players)
	usecases.SortByCompletion(records)

	if latest, ok := r.hub.Latest(); ok && unchanged(latest, players, records) {
		return nil
	}
	snap := r.hub.Publish(Snapshot{
		Players: players,
		Records: records,
		At:      r.now(),
	})
	logging.Info("feed published",
		zap.Uint64("revision", snap.Revision),
		zap.Int("players", len(players)),
		zap.Int("records", len(records)),
	)
	return nil
}

// Schedule polls the store every interval on s. Runs never overlap.
func (r *Refresher) Schedule(s gocron.Scheduler, every time.Duration) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := r.Refresh(ctx); err != nil {
				logging.Warn("scheduled feed refresh failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("feed-refresh"),
	)
}

// unchanged compares by player version and record id. Every write to a
// player bumps its version and records are immutable.
func unchanged(snap Snapshot, players []entities.Player, records []entities.MatchRecord) bool {
	if len(snap.Players) != len(players) || len(snap.Records) != len(records) {
		return false
	}
	for i, p := range players {
		if snap.Players[i].Code != p.Code || snap.Players[i].Version != p.Version {
			return false
		}
	}
	for i, rec := range records {
		if snap.Records[i].Id != rec.Id {
			return false
		}
	}
	return true
}
