// Package feed publishes read-only views of the players and recent match
// records to any number of subscribers.
package feed

import (
	"sync"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
)

// Snapshot is an immutable view of the store. Receivers must not modify
// the slices.
type Snapshot struct {
	Revision uint64
	Players  []entities.Player      // ordered by code
	Records  []entities.MatchRecord // newest first
	At       time.Time
}

// Player looks up a player by code.
func (s Snapshot) Player(code string) (entities.Player, bool) {
	for _, p := range s.Players {
		if p.Code == code {
			return p, true
		}
	}
	return entities.Player{}, false
}

// Hub fans snapshots out to subscribers. Every subscription buffers one
// snapshot; a subscriber that falls behind only sees the newest.
type Hub struct {
	mu       sync.Mutex
	latest   *Snapshot
	revision uint64
	nextId   uint64
	subs     map[uint64]chan Snapshot
}

func NewHub() *Hub {
	return &Hub{
		subs: map[uint64]chan Snapshot{},
	}
}

// Subscribe returns a channel that immediately holds the latest snapshot,
// if any. cancel closes the channel and may be called more than once.
func (h *Hub) Subscribe() (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextId
	h.nextId++
	ch := make(chan Snapshot, 1)
	if h.latest != nil {
		ch <- *h.latest
	}
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish stamps snap with the next revision and delivers it.
func (h *Hub) Publish(snap Snapshot) Snapshot {
	snap.Players = append([]entities.Player(nil), snap.Players...)
	snap.Records = append([]entities.MatchRecord(nil), snap.Records...)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.revision++
	snap.Revision = h.revision
	h.latest = &snap
	for _, ch := range h.subs {
		offer(ch, snap)
	}
	return snap
}

// Latest returns the last published snapshot.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// offer replaces whatever is buffered in ch with snap. Only Publish sends,
// under the hub lock, so the second send cannot block.
func offer(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
