package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/daemon"
)

func newRunCmd() *cobra.Command {
	var (
		duration time.Duration
		noStore  bool
		detached bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard monitor daemon",
		Long: `Run the clipboard monitor in the foreground. It polls the clipboard,
records new content in the history and answers history queries on the
IPC socket.

You can specify a duration for testing purposes, otherwise it runs
until interrupted. With --detach it starts in the background instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if detached {
				return detach(cmd.OutOrStdout())
			}
			logger := GetZapLogger()

			if noStore {
				cfg.Storage.Enabled = false
			}
			if cfg.Paths != nil {
				if err := cfg.Paths.EnsureDirs(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
				logger.Info("Running for test duration", zap.Duration("duration", duration))
			}

			d, err := daemon.New(cfg, logger, daemon.Options{})
			if err != nil {
				return fmt.Errorf("failed to initialise daemon: %w", err)
			}

			logger.Info("Starting cliprecall daemon",
				zap.String("backend", cfg.Monitor.Backend),
				zap.Duration("poll_interval", cfg.Monitor.PollInterval()),
				zap.Int("capacity", cfg.History.Capacity),
				zap.Bool("archive", cfg.Storage.Enabled))

			if err := d.Run(ctx); err != nil {
				logger.Error("Daemon stopped with error", zap.Error(err))
				return err
			}

			if duration > 0 {
				logRecent(logger, d.Service(), 10)
			}
			logger.Info("Daemon stopped")
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "run for a specific duration (for testing)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not load or save the history archive")
	cmd.Flags().BoolVar(&detached, "detach", false, "run in the background")
	return cmd
}

func logRecent(logger *zap.Logger, svc *daemon.Service, n int) {
	records := svc.List()
	if len(records) > n {
		records = records[:n]
	}
	for _, rec := range records {
		logger.Info("Recent clipboard item",
			zap.String("id", rec.ID()),
			zap.String("type", string(rec.Type())),
			zap.Time("time", rec.Timestamp()),
			zap.String("preview", rec.Preview()))
	}
}
