package main

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/localstore"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// useLocalStore seeds n head-to-head records, one minute apart.
func useLocalStore(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "dartslab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreatePlayer(ctx, entities.Player{Code: "AAA", Name: "Ann", Elo: 1200}))
	require.NoError(t, store.CreatePlayer(ctx, entities.Player{Code: "BBB", Name: "Bea", Elo: 1200}))
	for i := 0; i < n; i++ {
		record := entities.MatchRecord{
			Id:          "record-" + strconv.Itoa(i),
			WinnerCode:  "AAA",
			WinnerName:  "Ann",
			Losers:      []entities.LoserEntry{{Code: "BBB", Name: "Bea", EloChange: -16}},
			EloChange:   16,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.RunTransaction(ctx, func(tx interfaces.ITransaction) error {
			return tx.PutMatchRecord(record)
		}))
	}

	previous := playerUsecase
	playerUsecase = usecases.NewPlayerUsecase(store, nil)
	t.Cleanup(func() { playerUsecase = previous })
}

func request(params map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		QueryStringParameters: params,
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{
				"jwt": map[string]interface{}{
					"claims": map[string]interface{}{"sub": "session-1"},
				},
			},
		},
	}
}

func TestHandler(t *testing.T) {
	useLocalStore(t, 25)

	resp, err := handler(context.Background(), request(nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dtos.MatchRecordListResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &list))
	require.Len(t, list.Items, defaultLimit)
	assert.Equal(t, "record-24", list.Items[0].Id)
	assert.Equal(t, "record-5", list.Items[defaultLimit-1].Id)
	require.NotNil(t, list.Items[0].Opponent)
	assert.Equal(t, "BBB", list.Items[0].Opponent.Code)

	resp, err = handler(context.Background(), request(map[string]string{"limit": "3"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &list))
	assert.Len(t, list.Items, 3)
}

func TestHandlerInvalidLimit(t *testing.T) {
	useLocalStore(t, 0)
	for _, limit := range []string{"abc", "0", "-1", "101"} {
		resp, err := handler(context.Background(), request(map[string]string{"limit": limit}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, limit)
	}
}

func TestHandlerUnauthorized(t *testing.T) {
	useLocalStore(t, 0)
	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
