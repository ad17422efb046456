package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/google/uuid"
)

// Match is the 501 countdown for one game. It is owned by a single caller
// and is not safe for concurrent use.
type Match struct {
	players   []MatchPlayer
	turnIndex int
	entry     string
	moves     []entities.Move
	status    Status
	outcome   *Outcome

	now   func() time.Time
	newId func() string
}

type Option func(*Match)

// WithClock sets the time source used to stamp moves and the outcome.
func WithClock(now func() time.Time) Option {
	return func(m *Match) {
		m.now = now
	}
}

// WithIdGenerator sets the source of outcome ids.
func WithIdGenerator(newId func() string) Option {
	return func(m *Match) {
		m.newId = newId
	}
}

func NewMatch(opts ...Option) *Match {
	m := &Match{
		status: IDLE,
		now:    time.Now,
		newId:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartMatch creates a match and starts it with players in turn order.
func StartMatch(players []entities.Player, opts ...Option) (*Match, error) {
	m := NewMatch(opts...)
	if err := m.Start(players); err != nil {
		return nil, err
	}
	return m, nil
}

// Start seats players in the given order, everyone on 501 and the first
// player to throw.
func (m *Match) Start(players []entities.Player) error {
	if m.status != IDLE {
		return ErrMatchStarted
	}
	if len(players) < 2 {
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidSetup, len(players))
	}
	seen := make(map[string]bool, len(players))
	seats := make([]MatchPlayer, 0, len(players))
	for _, p := range players {
		code := strings.ToUpper(strings.TrimSpace(p.Code))
		if code == "" {
			return fmt.Errorf("%w: empty player code", ErrInvalidSetup)
		}
		if seen[code] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidSetup, code)
		}
		seen[code] = true
		p.Code = code
		seats = append(seats, newMatchPlayer(p))
	}

	m.players = seats
	m.turnIndex = 0
	m.entry = ""
	m.moves = []entities.Move{}
	m.status = ACTIVE
	return nil
}

// SubmitTurn records the points scored by the player to throw.
// A non-nil outcome is returned when the turn checks out.
func (m *Match) SubmitTurn(points int) (*Outcome, error) {
	if m.status != ACTIVE {
		return nil, ErrMatchNotActive
	}
	if points < 0 || points > MaxTurnPoints {
		return nil, fmt.Errorf("%w: %d not in [0,%d]", ErrInvalidScore, points, MaxTurnPoints)
	}

	player := &m.players[m.turnIndex]
	current := player.Score
	next := current - points
	move := entities.Move{
		PlayerCode: player.Code,
		Points:     points,
		At:         m.now(),
	}

	switch {
	case next == 0:
		player.Score = 0
		move.Remaining = 0
		m.moves = append(m.moves, move)
		m.entry = ""
		m.complete(move.At)
		return m.Outcome(), nil
	case next < 0 || next == 1:
		move.Remaining = current
		move.Bust = true
	default:
		player.Score = next
		move.Remaining = next
	}

	m.moves = append(m.moves, move)
	m.entry = ""
	m.turnIndex = (m.turnIndex + 1) % len(m.players)
	return nil, nil
}

// UndoLastMove takes back the most recent move and hands the turn back to
// the player who made it.
func (m *Match) UndoLastMove() (entities.Move, error) {
	if m.status != ACTIVE {
		return entities.Move{}, ErrMatchNotActive
	}
	if len(m.moves) == 0 {
		return entities.Move{}, ErrNothingToUndo
	}

	last := m.moves[len(m.moves)-1]
	index := m.indexOf(last.PlayerCode)
	if index < 0 {
		return entities.Move{}, fmt.Errorf("move by unknown player %s", last.PlayerCode)
	}

	m.moves = m.moves[:len(m.moves)-1]
	if last.Bust {
		m.players[index].Score = last.Remaining
	} else {
		m.players[index].Score = last.Remaining + last.Points
	}
	m.turnIndex = index
	m.entry = ""
	return last, nil
}

// EnterDigit appends one digit to the pending entry.
func (m *Match) EnterDigit(digit int) error {
	if m.status != ACTIVE {
		return ErrMatchNotActive
	}
	if digit < 0 || digit > 9 {
		return fmt.Errorf("%w: %d is not a digit", ErrInvalidScore, digit)
	}
	if len(m.entry) >= maxEntryDigits {
		return fmt.Errorf("%w: entry longer than %d digits", ErrInvalidScore, maxEntryDigits)
	}
	m.entry += strconv.Itoa(digit)
	return nil
}

func (m *Match) ClearEntry() {
	m.entry = ""
}

func (m *Match) Entry() string {
	return m.entry
}

// SubmitEntry submits the pending entry as the current turn. The entry is
// kept when it is rejected.
func (m *Match) SubmitEntry() (*Outcome, error) {
	if m.status != ACTIVE {
		return nil, ErrMatchNotActive
	}
	points, err := ParsePoints(m.entry)
	if err != nil {
		return nil, err
	}
	return m.SubmitTurn(points)
}

// ParsePoints reads a typed turn score.
func ParsePoints(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty entry", ErrInvalidScore)
	}
	points, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, s)
	}
	if points < 0 || points > MaxTurnPoints {
		return 0, fmt.Errorf("%w: %d not in [0,%d]", ErrInvalidScore, points, MaxTurnPoints)
	}
	return points, nil
}

func (m *Match) Status() Status {
	return m.status
}

func (m *Match) TurnIndex() int {
	return m.turnIndex
}

// Current returns the player to throw.
func (m *Match) Current() MatchPlayer {
	if len(m.players) == 0 {
		return MatchPlayer{}
	}
	return m.players[m.turnIndex]
}

func (m *Match) Players() []MatchPlayer {
	return append([]MatchPlayer(nil), m.players...)
}

func (m *Match) Moves() []entities.Move {
	return append([]entities.Move(nil), m.moves...)
}

// Outcome returns a copy of the result, nil until the match is complete.
func (m *Match) Outcome() *Outcome {
	if m.outcome == nil {
		return nil
	}
	o := *m.outcome
	o.Losers = append([]MatchPlayer(nil), m.outcome.Losers...)
	o.Moves = append([]entities.Move(nil), m.outcome.Moves...)
	return &o
}

func (m *Match) complete(at time.Time) {
	winner := m.players[m.turnIndex]
	losers := make([]MatchPlayer, 0, len(m.players)-1)
	for i, p := range m.players {
		if i != m.turnIndex {
			losers = append(losers, p)
		}
	}
	m.status = COMPLETE
	m.outcome = &Outcome{
		Id:          m.newId(),
		Winner:      winner,
		Losers:      losers,
		Moves:       append([]entities.Move(nil), m.moves...),
		CompletedAt: at,
	}
}

func (m *Match) indexOf(code string) int {
	for i, p := range m.players {
		if p.Code == code {
			return i
		}
	}
	return -1
}
