package server

import (
	"sync"

	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/game"
	"github.com/google/uuid"
)

// table controls one match for one connection. A finished match stays
// pending until its settlement commits.
type table struct {
	id      string
	match   *game.Match
	pending *game.Outcome

	mu sync.Mutex
}

func newTable(players []entities.Player) (*table, error) {
	match, err := game.StartMatch(players)
	if err != nil {
		return nil, err
	}
	return &table{
		id:    uuid.NewString(),
		match: match,
	}, nil
}

// busy reports whether the table still holds a match that must not be
// thrown away: one in progress or one not yet settled.
func (t *table) busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.Status() == game.ACTIVE || t.pending != nil
}

func (t *table) enterDigit(digit int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.EnterDigit(digit)
}

func (t *table) clearEntry() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.match.ClearEntry()
}

// submit scores points, or the typed entry when points is nil.
func (t *table) submit(points *int) (*game.Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var (
		outcome *game.Outcome
		err     error
	)
	if points == nil {
		outcome, err = t.match.SubmitEntry()
	} else {
		outcome, err = t.match.SubmitTurn(*points)
	}
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		t.pending = outcome
	}
	return outcome, nil
}

func (t *table) undo() (entities.Move, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.match.UndoLastMove()
}

func (t *table) pendingOutcome() *game.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *table) settled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = nil
}

func (t *table) state() dtos.MatchStateResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return dtos.MatchStateResponseFromMatch(t.id, t.match)
}
