package server

import (
	"time"

	"github.com/dartslab/dartslab/internal/config"
)

type Config struct {
	Port         string
	IdleTimeout  time.Duration
	JwtSecret    string
	HistoryLimit int
}

func NewConfig(cfg config.Config) Config {
	return Config{
		Port:         cfg.Server.Port,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JwtSecret:    cfg.Server.JwtSecret,
		HistoryLimit: cfg.Feed.HistoryLimit,
	}
}
