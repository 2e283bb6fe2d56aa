// Package daemon assembles the clipboard monitor, history, optional archive
// and IPC server into one long-running process.
package daemon

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/berrythewa/cliprecall/internal/clipboard"
	"github.com/berrythewa/cliprecall/internal/config"
	"github.com/berrythewa/cliprecall/internal/history"
	"github.com/berrythewa/cliprecall/internal/ipc"
	"github.com/berrythewa/cliprecall/internal/storage"
)

// Options overrides collaborators normally derived from the config.
type Options struct {
	Backend clipboard.Backend
	Clock   clock.Clock
}

// Daemon owns every long-lived component.
type Daemon struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend clipboard.Backend
	history *history.History
	monitor *clipboard.Monitor
	archive *storage.Archive
	service *Service
	server  *ipc.Server
}

// New builds a daemon from cfg. When archiving is enabled the stored
// history is replayed before monitoring starts.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = clipboard.NewBackend(cfg.Monitor.Backend, logger.Named("clipboard"))
		if err != nil {
			return nil, err
		}
	}

	h := history.New(cfg.History.Capacity, logger.Named("history"))
	notifier := clipboard.NewNotifier(logger.Named("notifier"))

	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		history: h,
	}

	if cfg.Storage.Enabled {
		archive, err := storage.Open(storage.Options{
			Path:              cfg.DBPath(),
			CompressThreshold: cfg.Storage.CompressThreshold,
			Logger:            logger.Named("storage"),
		})
		if err != nil {
			backend.Close()
			return nil, err
		}
		records, err := archive.Load(cfg.Monitor.PreviewLength)
		if err != nil {
			logger.Warn("Failed to load archived history", zap.Error(err))
		}
		for _, rec := range records {
			h.Promote(rec)
		}
		logger.Info("Restored archived history", zap.Int("records", h.Size()))

		archive.Attach(h)
		notifier.Subscribe(archive)
		d.archive = archive
	}

	d.monitor = clipboard.NewMonitor(backend, h, notifier, clipboard.MonitorOptions{
		PollInterval:  cfg.Monitor.PollInterval(),
		DedupWindow:   cfg.Monitor.DedupWindow(),
		ReadTimeout:   cfg.Monitor.ReadTimeout(),
		PreviewLength: cfg.Monitor.PreviewLength,
		Clock:         opts.Clock,
		Logger:        logger.Named("monitor"),
	})
	d.service = NewService(h, notifier, backend, logger.Named("service"))
	d.server = ipc.NewServer(cfg.SocketPath(), d.service.HandleIPC, logger.Named("ipc"))

	return d, nil
}

// Service returns the query surface.
func (d *Daemon) Service() *Service { return d.service }

// Run monitors the clipboard and serves IPC until ctx is cancelled or a
// component fails. Resources are released before Run returns.
func (d *Daemon) Run(ctx context.Context) (err error) {
	defer func() {
		err = multierr.Append(err, d.close())
	}()

	g, ctx := errgroup.WithContext(ctx)

	if err := d.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	g.Go(func() error {
		<-ctx.Done()
		d.monitor.Stop()
		return nil
	})
	g.Go(func() error {
		if err := d.server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("ipc server: %w", err)
		}
		return nil
	})

	d.logger.Info("cliprecall daemon running",
		zap.String("socket", d.cfg.SocketPath()),
		zap.Int("capacity", d.history.Capacity()),
		zap.Bool("archive", d.archive != nil))

	return g.Wait()
}

func (d *Daemon) close() error {
	var err error
	if d.archive != nil {
		err = multierr.Append(err, d.archive.Close())
	}
	return multierr.Append(err, d.backend.Close())
}
