package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/game"
	"github.com/dartslab/dartslab/internal/localstore"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeVisitWin has the first player check out on the third visit of a
// head-to-head match.
const threeVisitWin = "180\n20\n180\n20\n141\n"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("Store:\n  Backend: sqlite\n  SqlitePath: %s\n", filepath.Join(dir, "cli.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"serve"},
		{"player", "register"},
		{"player", "rename"},
		{"player", "list"},
		{"history"},
		{"play"},
		{"token"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestPlayerCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, cfg, "", "player", "register", "aaa", "Arrow")
	require.NoError(t, err)
	assert.Contains(t, out, "registered AAA Arrow (1200)")

	_, err = execute(t, cfg, "", "player", "register", "BBB", "Bull")
	require.NoError(t, err)
	_, err = execute(t, cfg, "", "player", "register", "AAA", "Again")
	assert.ErrorIs(t, err, interfaces.ErrPlayerExists)
	_, err = execute(t, cfg, "", "player", "register", "AB", "Short")
	assert.ErrorIs(t, err, usecases.ErrInvalidPlayer)

	_, err = execute(t, cfg, "", "player", "rename", "bbb", "Bullseye")
	require.NoError(t, err)

	out, err = execute(t, cfg, "", "player", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CODE")
	assert.Contains(t, lines[1], "AAA")
	assert.Contains(t, lines[2], "Bullseye")
}

func TestPlayCommitsAndShowsHistory(t *testing.T) {
	cfg := writeConfig(t)
	for _, code := range []string{"AAA", "BBB"} {
		_, err := execute(t, cfg, "", "player", "register", code, "Player "+code)
		require.NoError(t, err)
	}

	out, err := execute(t, cfg, threeVisitWin, "play", "AAA", "BBB")
	require.NoError(t, err)
	assert.Contains(t, out, "Player AAA wins!")
	assert.Contains(t, out, "AAA Player AAA (+16) beat BBB Player BBB (-16)")

	out, err = execute(t, cfg, "", "player", "list", "--by-elo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "1216")
	assert.Contains(t, lines[2], "1184")

	out, err = execute(t, cfg, "", "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "beat BBB")
}

func TestPlayUnknownPlayer(t *testing.T) {
	cfg := writeConfig(t)
	_, err := execute(t, cfg, "", "play", "AAA", "BBB")
	assert.ErrorIs(t, err, interfaces.ErrPlayerNotFound)
}

func newTestMatch(t *testing.T) *game.Match {
	t.Helper()
	m, err := game.StartMatch([]entities.Player{
		{Code: "AAA", Name: "Arrow", Elo: 1200},
		{Code: "BBB", Name: "Bull", Elo: 1200},
	})
	require.NoError(t, err)
	return m
}

func TestPlayMatchInput(t *testing.T) {
	m := newTestMatch(t)
	var out bytes.Buffer
	err := playMatch(context.Background(), nil, m, strings.NewReader("+6\n+0\nok\n+5\nc\nu\n181\nxyz\nq\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "entry: 60")
	assert.Contains(t, out.String(), " AAA 441  *BBB 501")
	assert.Contains(t, out.String(), "entry: 5")
	assert.Contains(t, out.String(), "error: invalid score")
	assert.Contains(t, out.String(), "match abandoned")
	assert.Empty(t, m.Moves(), "undo took back the only move")
	assert.Equal(t, game.ACTIVE, m.Status())
}

func TestPlayMatchInputClosed(t *testing.T) {
	err := playMatch(context.Background(), nil, newTestMatch(t), strings.NewReader("60\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, errInputClosed)
}

// failingStore fails the next failures transactions. With lostReply set the
// next transaction is committed and still reported as failed.
type failingStore struct {
	*localstore.Store

	mu        sync.Mutex
	failures  int
	lostReply bool
}

func (f *failingStore) RunTransaction(ctx context.Context, fn func(interfaces.ITransaction) error) error {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	lose := f.lostReply
	f.lostReply = false
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	if err := f.Store.RunTransaction(ctx, fn); err != nil {
		return err
	}
	if lose {
		return errors.New("i/o timeout")
	}
	return nil
}

func newFailingSettlement(t *testing.T, failures int) (*usecases.SettlementUsecase, *failingStore) {
	t.Helper()
	db, err := localstore.Open(filepath.Join(t.TempDir(), "retry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, code := range []string{"AAA", "BBB"} {
		require.NoError(t, db.CreatePlayer(context.Background(), entities.Player{
			Code: code, Name: code, Elo: 1200, CreatedAt: time.Now(),
		}))
	}
	store := &failingStore{Store: db, failures: failures}
	return usecases.NewSettlementUsecase(store, nil, usecases.SettlementConfig{MaxAttempts: 1}), store
}

func TestPlayMatchRetriesCommit(t *testing.T) {
	settlement, store := newFailingSettlement(t, 1)
	var out bytes.Buffer

	err := playMatch(context.Background(), settlement, newTestMatch(t), strings.NewReader(threeVisitWin+"y\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "commit failed")
	assert.Contains(t, out.String(), "(+16)")

	a, err := store.GetPlayer(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 1216, a.Elo)
}

func TestPlayMatchRetryAfterLostReply(t *testing.T) {
	settlement, store := newFailingSettlement(t, 0)
	store.lostReply = true
	var out bytes.Buffer

	err := playMatch(context.Background(), settlement, newTestMatch(t), strings.NewReader(threeVisitWin+"y\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "commit failed")
	assert.Contains(t, out.String(), "already settled")

	a, err := store.GetPlayer(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Matches)
	assert.Equal(t, 1216, a.Elo)
}

func TestPlayMatchGivesUpCommit(t *testing.T) {
	settlement, store := newFailingSettlement(t, 1)

	err := playMatch(context.Background(), settlement, newTestMatch(t), strings.NewReader(threeVisitWin+"n\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, usecases.ErrCommitFailed)

	a, err := store.GetPlayer(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Matches)
}
