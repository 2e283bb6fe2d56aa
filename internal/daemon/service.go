package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/clipboard"
	"github.com/berrythewa/cliprecall/internal/history"
	"github.com/berrythewa/cliprecall/internal/types"
)

// ErrRecordNotFound is returned when a record ID is not in the history.
var ErrRecordNotFound = errors.New("record not found")

// VisibilityListener is told when the history view should be shown or
// hidden. The daemon has no UI of its own; a front end registers here.
type VisibilityListener func(visible bool)

// Service is the query surface over the history: listing, searching,
// restoring and clearing, plus the visibility toggle a hotkey drives.
type Service struct {
	history  *history.History
	notifier *clipboard.Notifier
	backend  clipboard.Backend
	logger   *zap.Logger

	mu        sync.Mutex
	visible   bool
	listeners map[int]VisibilityListener
	nextID    int
}

func NewService(h *history.History, notifier *clipboard.Notifier, backend clipboard.Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = clipboard.NewNotifier(logger)
	}
	return &Service{
		history:   h,
		notifier:  notifier,
		backend:   backend,
		logger:    logger,
		listeners: make(map[int]VisibilityListener),
	}
}

func (s *Service) List() []*types.Record { return s.history.List() }

func (s *Service) Search(keyword string) []*types.Record { return s.history.Search(keyword) }

func (s *Service) Size() int { return s.history.Size() }

func (s *Service) Capacity() int { return s.history.Capacity() }

// Clear empties the history and notifies subscribers.
func (s *Service) Clear() {
	s.history.Clear()
	s.notifier.Publish()
}

// Promote moves rec (or its equal) to the front of the history.
func (s *Service) Promote(rec *types.Record) {
	s.history.Promote(rec)
	s.notifier.Publish()
}

// Restore writes the record with the given ID back to the clipboard and
// promotes it to the front of the history.
func (s *Service) Restore(ctx context.Context, id string) (*types.Record, error) {
	rec, ok := s.history.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	var payload clipboard.RawPayload
	switch c := rec.Content().(type) {
	case types.Text:
		payload = clipboard.TextPayload(string(c))
	case types.URL:
		payload = clipboard.TextPayload(string(c))
	case types.Image:
		payload = clipboard.ImagePayload(c.Bitmap)
	}

	if err := s.backend.Write(ctx, payload); err != nil {
		return nil, fmt.Errorf("failed to write %s to clipboard: %w", rec.Type(), err)
	}
	s.Promote(rec)

	s.logger.Info("Restored history entry",
		zap.String("id", rec.ID()),
		zap.String("type", string(rec.Type())))
	return rec, nil
}

// ToggleVisibility flips the visibility flag, tells every listener and
// returns the new state.
func (s *Service) ToggleVisibility() bool {
	s.mu.Lock()
	s.visible = !s.visible
	visible := s.visible
	listeners := make([]VisibilityListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("Visibility toggled", zap.Bool("visible", visible))
	for _, l := range listeners {
		l(visible)
	}
	return visible
}

func (s *Service) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// OnVisibilityChange registers l and returns a function removing it.
func (s *Service) OnVisibilityChange(l VisibilityListener) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
