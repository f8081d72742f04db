package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wardops/wardops/internal/api"
	"github.com/wardops/wardops/internal/config"
	"github.com/wardops/wardops/internal/demo"
	"github.com/wardops/wardops/internal/query"
	"github.com/wardops/wardops/internal/runner"
	"github.com/wardops/wardops/internal/store"
)

// serveCmd runs the HTTP/WebSocket API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		st, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		exec := runner.New(st, time.Duration(cfg.MaxSimulationSeconds)*time.Second, cfg.Seed)

		// Without Redis the API still works; simulations then run inside
		// the server process.
		var dispatch api.Dispatcher
		if d, err := runner.NewDispatcher(cfg.RedisURL); err != nil {
			logrus.WithError(err).Warn("redis unavailable, simulations will run in-process")
		} else {
			dispatch = d
			defer d.Close()
		}

		srv := api.New(cfg, st, query.New(st), demo.NewLoader(st), dispatch, exec)
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logrus.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
