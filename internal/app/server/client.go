package server

import (
	"sync"

	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/feed"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one websocket connection. Replies and feed pushes are written
// from different goroutines, so writes go through mu.
type client struct {
	sessionId string
	conn      *websocket.Conn
	table     *table

	mu sync.Mutex
}

// response is the envelope of every message the server sends.
type response struct {
	Type    string                     `json:"type"`
	Error   string                     `json:"error,omitempty"`
	Message string                     `json:"message,omitempty"`
	Match   *dtos.MatchStateResponse   `json:"match,omitempty"`
	Outcome *dtos.OutcomeResponse      `json:"outcome,omitempty"`
	Record  *dtos.MatchRecordResponse  `json:"record,omitempty"`
	Player  *dtos.PlayerResponse       `json:"player,omitempty"`
	Records []dtos.MatchRecordResponse `json:"records,omitempty"`
	Feed    *dtos.FeedResponse         `json:"feed,omitempty"`
}

func newClient(conn *websocket.Conn, sessionId string) *client {
	return &client{
		sessionId: sessionId,
		conn:      conn,
	}
}

func (c *client) writeJson(msg response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		logging.Error("couldn't notify client",
			zap.String("session_id", c.sessionId),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	}
}

func (c *client) writeError(err error) {
	c.writeJson(response{
		Type:    "error",
		Error:   errorStatus(err),
		Message: err.Error(),
	})
}

func (c *client) writeMatchState(t *table) {
	state := t.state()
	c.writeJson(response{
		Type:  "match_state",
		Match: &state,
	})
}

// pushFeed forwards snapshots until the subscription is cancelled.
func (c *client) pushFeed(ch <-chan feed.Snapshot) {
	for snap := range ch {
		resp := dtos.FeedResponseFromEntities(snap.Revision, snap.Players, snap.Records)
		c.writeJson(response{
			Type: "feed",
			Feed: &resp,
		})
	}
}
