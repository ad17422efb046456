package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dartslab/dartslab/internal/feed"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type server struct {
	address  string
	upgrader websocket.Upgrader

	config     Config
	httpServer *http.Server
	tables     sync.Map // table id -> *table

	playerUsecase     *usecases.PlayerUsecase
	settlementUsecase *usecases.SettlementUsecase
	hub               *feed.Hub
}

type payload struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

func NewServer(
	cfg Config,
	playerUsecase *usecases.PlayerUsecase,
	settlementUsecase *usecases.SettlementUsecase,
	hub *feed.Hub,
) (*server, error) {
	if cfg.JwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		config:            cfg,
		playerUsecase:     playerUsecase,
		settlementUsecase: settlementUsecase,
		hub:               hub,
	}
	return srv, nil
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleConnection)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"tables": s.activeTables()})
	})
	return mux
}

// Start serves until Shutdown is called.
func (s *server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.address,
		Handler:     s.Handler(),
		IdleTimeout: s.config.IdleTimeout,
	}
	logging.Info("websocket server started", zap.String("port", s.config.Port))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *server) activeTables() int {
	n := 0
	s.tables.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *server) handleConnection(w http.ResponseWriter, r *http.Request) {
	sessionId, err := s.auth(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(err.Error()))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error(
			"failed to upgrade connection",
			zap.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newClient(conn, sessionId)
	snapshots, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()
	go c.pushFeed(snapshots)

	logging.Info("client connected",
		zap.String("session_id", sessionId),
		zap.String("remote_address", conn.RemoteAddr().String()),
	)
	defer s.handleDisconnect(c)

	for {
		if s.config.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			logging.Info(
				"connection closed",
				zap.String("session_id", sessionId),
				zap.Error(err),
			)
			return
		}

		payload := payload{}
		if err := json.Unmarshal(message, &payload); err != nil {
			c.writeJson(response{
				Type:    "error",
				Error:   ErrStatusInvalidPayload,
				Message: err.Error(),
			})
			continue
		}
		s.handleWebSocketMessage(ctx, c, payload)
	}
}
