package cli

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dartslab/dartslab/internal/aws/storage"
	"github.com/dartslab/dartslab/internal/config"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/feed"
	"github.com/dartslab/dartslab/internal/localstore"
	"github.com/dartslab/dartslab/internal/usecases"
)

// app wires the store, the feed and the usecases for one command.
type app struct {
	cfg        config.Config
	store      interfaces.IRatingStore
	hub        *feed.Hub
	refresher  *feed.Refresher
	players    *usecases.PlayerUsecase
	settlement *usecases.SettlementUsecase

	closeStore func() error
}

func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	cfg, err := config.NewConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	hub := feed.NewHub()
	refresher := feed.NewRefresher(store, hub, cfg.Feed.HistoryLimit)
	settlement := usecases.NewSettlementUsecase(store, refresher, usecases.SettlementConfig{
		MaxAttempts: cfg.Commit.MaxAttempts,
		Backoff:     cfg.Commit.Backoff,
	})
	return &app{
		cfg:        cfg,
		store:      store,
		hub:        hub,
		refresher:  refresher,
		players:    usecases.NewPlayerUsecase(store, refresher),
		settlement: settlement,
		closeStore: closeStore,
	}, nil
}

func (a *app) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (interfaces.IRatingStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendDynamodb:
		var optFns []func(*awsconfig.LoadOptions) error
		if cfg.AwsRegion != "" {
			optFns = append(optFns, awsconfig.WithRegion(cfg.AwsRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		client := storage.NewClient(
			dynamodb.NewFromConfig(awsCfg),
			storage.NewConfig(cfg.PlayersTableName, cfg.MatchRecordsTableName),
		)
		return client, nil, nil
	default:
		store, err := localstore.Open(cfg.SqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}
