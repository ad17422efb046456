package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dartslab/dartslab/internal/app/server"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.NewServer(server.NewConfig(a.cfg), a.players, a.settlement, a.hub)
	if err != nil {
		return err
	}

	if err := a.refresher.Refresh(ctx); err != nil {
		logging.Warn("initial feed refresh failed", zap.Error(err))
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := a.refresher.Schedule(scheduler, a.cfg.Feed.Interval); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
