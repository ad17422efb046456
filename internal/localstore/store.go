// Package localstore is a SQLite rating store for single-host use and tests.
package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Fixed width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store keeps players and match records in one SQLite file.
// Writers are serialized: every transaction starts with BEGIN IMMEDIATE and
// the pool holds a single connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectPlayer = `SELECT code, name, elo, matches, wins, created_at, version FROM players`

func getPlayer(ctx context.Context, q queryer, code string) (entities.Player, error) {
	row := q.QueryRowContext(ctx, selectPlayer+` WHERE code = ?`, code)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Player{}, interfaces.ErrPlayerNotFound
	}
	if err != nil {
		return entities.Player{}, fmt.Errorf("failed to read player %s: %w", code, err)
	}
	return player, nil
}

func (s *Store) GetPlayer(ctx context.Context, code string) (entities.Player, error) {
	return getPlayer(ctx, s.db, code)
}

func (s *Store) CreatePlayer(ctx context.Context, player entities.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (code, name, elo, matches, wins, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`,
		player.Code,
		player.Name,
		player.Elo,
		player.Matches,
		player.Wins,
		player.CreatedAt.UTC().Format(timeLayout),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return interfaces.ErrPlayerExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (s *Store) RenamePlayer(ctx context.Context, code, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET name = ?, version = version + 1 WHERE code = ?`,
		name, code,
	)
	if err != nil {
		return fmt.Errorf("failed to rename player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrPlayerNotFound
	}
	return nil
}

// ListPlayers returns every player ordered by code.
func (s *Store) ListPlayers(ctx context.Context) ([]entities.Player, error) {
	rows, err := s.db.QueryContext(ctx, selectPlayer+` ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []entities.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

// ListMatchRecords returns the latest records, newest first. A limit of 0
// returns all of them.
func (s *Store) ListMatchRecords(ctx context.Context, limit int) ([]entities.MatchRecord, error) {
	query := `
		SELECT id, winner_code, winner_name, losers, elo_change, completed_at, moves
		FROM match_records
		ORDER BY completed_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match records: %w", err)
	}
	defer rows.Close()

	var records []entities.MatchRecord
	for rows.Next() {
		record, err := scanMatchRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// RunTransaction runs fn inside one SQLite transaction. The write lock is
// taken up front, so the reads fn makes cannot go stale before commit.
func (s *Store) RunTransaction(ctx context.Context, fn func(interfaces.ITransaction) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %v", interfaces.ErrTxConflict, err)
		}
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &transaction{
		ctx:  ctx,
		tx:   sqlTx,
		read: map[string]int64{},
	}
	if err := fn(tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %v", interfaces.ErrTxConflict, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (entities.Player, error) {
	var (
		player    entities.Player
		createdAt string
	)
	err := row.Scan(
		&player.Code,
		&player.Name,
		&player.Elo,
		&player.Matches,
		&player.Wins,
		&createdAt,
		&player.Version,
	)
	if err != nil {
		return entities.Player{}, err
	}
	player.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return entities.Player{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return player, nil
}
