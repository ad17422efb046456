package usecases

import (
	"context"
	"sync"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
)

// memoryStore is an in-memory rating store. Transactions hold the store lock
// for their whole duration and stage writes until fn returns.
type memoryStore struct {
	mu      sync.Mutex
	players map[string]entities.Player
	records []entities.MatchRecord

	conflicts int   // transactions left to fail with ErrTxConflict
	failPut   error // returned by PutMatchRecord when set
	lostReply error // returned once after a transaction was applied
	txCount   int
}

func newMemoryStore(players ...entities.Player) *memoryStore {
	s := &memoryStore{players: map[string]entities.Player{}}
	for _, p := range players {
		s.players[p.Code] = p
	}
	return s
}

func (s *memoryStore) GetPlayer(_ context.Context, code string) (entities.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[code]
	if !ok {
		return entities.Player{}, interfaces.ErrPlayerNotFound
	}
	return p, nil
}

func (s *memoryStore) CreatePlayer(_ context.Context, player entities.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.Code]; ok {
		return interfaces.ErrPlayerExists
	}
	s.players[player.Code] = player
	return nil
}

func (s *memoryStore) RenamePlayer(_ context.Context, code, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[code]
	if !ok {
		return interfaces.ErrPlayerNotFound
	}
	p.Name = name
	s.players[code] = p
	return nil
}

func (s *memoryStore) ListPlayers(_ context.Context) ([]entities.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	players := make([]entities.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	return players, nil
}

func (s *memoryStore) ListMatchRecords(_ context.Context, limit int) ([]entities.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := append([]entities.MatchRecord(nil), s.records...)
	SortByCompletion(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *memoryStore) RunTransaction(_ context.Context, fn func(interfaces.ITransaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	tx := &memoryTx{store: s, writes: map[string]entities.Player{}}
	if err := fn(tx); err != nil {
		return err
	}
	if s.conflicts > 0 {
		s.conflicts--
		return interfaces.ErrTxConflict
	}
	for code, p := range tx.writes {
		s.players[code] = p
	}
	s.records = append(s.records, tx.records...)
	if err := s.lostReply; err != nil {
		s.lostReply = nil
		return err
	}
	return nil
}

func (s *memoryStore) player(code string) entities.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[code]
}

func (s *memoryStore) recordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type memoryTx struct {
	store   *memoryStore
	writes  map[string]entities.Player
	records []entities.MatchRecord
}

func (tx *memoryTx) GetPlayer(code string) (entities.Player, error) {
	p, ok := tx.store.players[code]
	if !ok {
		return entities.Player{}, interfaces.ErrPlayerNotFound
	}
	return p, nil
}

func (tx *memoryTx) UpdatePlayer(player entities.Player) error {
	tx.writes[player.Code] = player
	return nil
}

func (tx *memoryTx) PutMatchRecord(record entities.MatchRecord) error {
	if tx.store.failPut != nil {
		return tx.store.failPut
	}
	for _, r := range tx.store.records {
		if r.Id == record.Id {
			return interfaces.ErrRecordExists
		}
	}
	tx.records = append(tx.records, record)
	return nil
}

type countingFeed struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFeed) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *countingFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
