package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wardops/wardops/internal/config"
	"github.com/wardops/wardops/internal/runner"
	"github.com/wardops/wardops/internal/store"
)

// workerCmd consumes simulation jobs from the Redis queue.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume and execute queued simulation jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		st, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		r := runner.New(st, time.Duration(cfg.MaxSimulationSeconds)*time.Second, cfg.Seed)
		w, err := runner.NewWorker(cfg.RedisURL, r)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logrus.Info("worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
