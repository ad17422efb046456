package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/mattn/go-sqlite3"
)

type transaction struct {
	ctx  context.Context
	tx   *sql.Tx
	read map[string]int64 // code -> version seen by GetPlayer
}

func (t *transaction) GetPlayer(code string) (entities.Player, error) {
	player, err := getPlayer(t.ctx, t.tx, code)
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
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE players
		SET name = ?, elo = ?, matches = ?, wins = ?, version = version + 1
		WHERE code = ? AND version = ?
	`,
		player.Name,
		player.Elo,
		player.Matches,
		player.Wins,
		player.Code,
		version,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.Code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: player %s changed", interfaces.ErrTxConflict, player.Code)
	}
	t.read[player.Code] = version + 1
	return nil
}

func (t *transaction) PutMatchRecord(record entities.MatchRecord) error {
	losers, err := json.Marshal(record.Losers)
	if err != nil {
		return fmt.Errorf("failed to marshal losers: %w", err)
	}
	moves, err := json.Marshal(record.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO match_records
		(id, winner_code, winner_name, losers, elo_change, completed_at, moves)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.Id,
		record.WinnerCode,
		record.WinnerName,
		string(losers),
		record.EloChange,
		record.CompletedAt.UTC().Format(timeLayout),
		string(moves),
	)
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s", interfaces.ErrRecordExists, record.Id)
	}
	if err != nil {
		return fmt.Errorf("failed to insert match record: %w", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func scanMatchRecord(row scanner) (entities.MatchRecord, error) {
	var (
		record      entities.MatchRecord
		losers      string
		moves       string
		completedAt string
	)
	err := row.Scan(
		&record.Id,
		&record.WinnerCode,
		&record.WinnerName,
		&losers,
		&record.EloChange,
		&completedAt,
		&moves,
	)
	if err != nil {
		return entities.MatchRecord{}, fmt.Errorf("failed to scan match record: %w", err)
	}
	if err := json.Unmarshal([]byte(losers), &record.Losers); err != nil {
		return entities.MatchRecord{}, fmt.Errorf("invalid losers of %s: %w", record.Id, err)
	}
	if err := json.Unmarshal([]byte(moves), &record.Moves); err != nil {
		return entities.MatchRecord{}, fmt.Errorf("invalid moves of %s: %w", record.Id, err)
	}
	record.CompletedAt, err = time.Parse(timeLayout, completedAt)
	if err != nil {
		return entities.MatchRecord{}, fmt.Errorf("invalid completed_at of %s: %w", record.Id, err)
	}
	return record, nil
}
