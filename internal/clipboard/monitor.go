package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/history"
	"github.com/berrythewa/cliprecall/internal/types"
)

// ErrMonitorRunning is returned by Start when the monitor is already polling.
var ErrMonitorRunning = errors.New("clipboard monitor already running")

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultDedupWindow  = time.Second
	DefaultReadTimeout  = 2 * time.Second
)

// MonitorOptions tunes a Monitor. Zero values select the defaults.
type MonitorOptions struct {
	PollInterval  time.Duration
	DedupWindow   time.Duration
	ReadTimeout   time.Duration
	PreviewLength int
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Monitor polls a Backend and records every new clipboard value in the
// history.
type Monitor struct {
	backend    Backend
	classifier *Classifier
	history    *history.History
	notifier   *Notifier
	clock      clock.Clock
	logger     *zap.Logger

	interval    time.Duration
	window      time.Duration
	readTimeout time.Duration

	tickMu     sync.Mutex
	lastRecord *types.Record
	lastInsert time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(backend Backend, h *history.History, notifier *Notifier, opts MonitorOptions) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewNotifier(opts.Logger)
	}

	return &Monitor{
		backend:     backend,
		classifier:  NewClassifier(opts.PreviewLength, opts.Clock, opts.Logger),
		history:     h,
		notifier:    notifier,
		clock:       opts.Clock,
		logger:      opts.Logger,
		interval:    opts.PollInterval,
		window:      opts.DedupWindow,
		readTimeout: opts.ReadTimeout,
	}
}

// Start begins polling: one tick immediately, then one per poll interval
// until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
			// previous loop exited because its context ended
		default:
			return ErrMonitorRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := m.clock.Ticker(m.interval)
	done := make(chan struct{})
	m.cancel, m.done = cancel, done

	m.logger.Info("Starting clipboard monitor",
		zap.String("backend", m.backend.Name()),
		zap.Duration("interval", m.interval),
		zap.Duration("dedup_window", m.window))

	go m.run(ctx, ticker, done)
	return nil
}

func (m *Monitor) run(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	m.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			m.Tick(ctx)
		}
	}
}

// Stop halts polling and waits for the polling goroutine to exit. No tick
// runs after Stop returns. Calling Stop on a stopped monitor does nothing.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel, m.done = nil, nil
	m.logger.Info("Clipboard monitor stopped")
}

// Running reports whether the polling goroutine is active.
func (m *Monitor) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Notifier returns the notifier the monitor publishes on.
func (m *Monitor) Notifier() *Notifier { return m.notifier }

// Tick performs one poll and reports whether a record was inserted. Read
// failures and panics are logged and swallowed.
func (m *Monitor) Tick(ctx context.Context) (inserted bool) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Recovered from panic in clipboard poll",
				zap.Any("panic", r),
				zap.Stack("stack"))
			inserted = false
		}
	}()

	raw, err := m.read(ctx)
	if err != nil {
		m.logger.Debug("Clipboard read failed",
			zap.String("backend", m.backend.Name()),
			zap.Error(err))
		return false
	}
	if raw == nil || ctx.Err() != nil {
		return false
	}

	rec := m.classifier.Classify(*raw)
	if rec == nil {
		return false
	}

	now := m.clock.Now()
	if m.isDuplicate(rec, now) {
		return false
	}

	m.history.Insert(rec)
	m.lastRecord = rec
	m.lastInsert = now

	m.logger.Debug("New clipboard content",
		zap.String("type", string(rec.Type())),
		zap.String("preview", rec.Preview()))

	m.notifier.Publish()
	return true
}

// isDuplicate suppresses re-detection of the value inserted last when it
// shows up again within the dedup window. Images of the same type inside
// the window are always treated as the same value.
func (m *Monitor) isDuplicate(rec *types.Record, now time.Time) bool {
	if m.lastRecord == nil || m.lastRecord.Type() != rec.Type() {
		return false
	}
	if now.Sub(m.lastInsert) >= m.window {
		return false
	}
	switch rec.Content().(type) {
	case types.Text, types.URL:
		a, _ := rec.Text()
		b, _ := m.lastRecord.Text()
		return a == b
	case types.Image:
		return true
	}
	return false
}

type readResult struct {
	payload *RawPayload
	err     error
}

// read calls the backend with a deadline. A read that outlives the deadline
// is abandoned; its goroutine finishes into a buffered channel.
func (m *Monitor) read(ctx context.Context) (*RawPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()

	ch := make(chan readResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- readResult{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		p, err := m.backend.ReadCurrent(ctx)
		ch <- readResult{payload: p, err: err}
	}()

	select {
	case res := <-ch:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("clipboard read: %w", ctx.Err())
	}
}
