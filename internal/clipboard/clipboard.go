// Package clipboard watches the system clipboard, classifies what it finds
// and feeds new values into the history.
package clipboard

//go:generate mockgen -source=clipboard.go -destination=mock_backend_test.go -package=clipboard Backend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedPayload is returned by a backend asked to write content it
// cannot represent.
var ErrUnsupportedPayload = errors.New("unsupported clipboard payload")

// RawPayload is what a backend read off the clipboard. Text takes precedence
// over Image when both are present.
type RawPayload struct {
	Text    string
	HasText bool
	Image   image.Image
}

// TextPayload builds a payload holding text.
func TextPayload(s string) RawPayload {
	return RawPayload{Text: s, HasText: true}
}

// ImagePayload builds a payload holding a decoded bitmap.
func ImagePayload(img image.Image) RawPayload {
	return RawPayload{Image: img}
}

// Empty reports whether the payload carries nothing usable.
func (p RawPayload) Empty() bool {
	return !p.HasText && p.Image == nil
}

// Backend is the clipboard access the monitor depends on.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadCurrent returns the current clipboard value. It returns nil, nil
	// when the clipboard is empty or holds only unsupported formats.
	ReadCurrent(ctx context.Context) (*RawPayload, error)

	// Write replaces the clipboard value.
	Write(ctx context.Context, payload RawPayload) error

	Close() error
}

// Backend kinds accepted by NewBackend.
const (
	BackendAuto     = "auto"
	BackendSystem   = "system"
	BackendText     = "text"
	BackendHeadless = "headless"
	BackendMemory   = "memory"
)

// NewBackend returns the backend for kind. For "auto" it tries the system
// clipboard, then the text-only clipboard, and finally falls back to a
// headless no-op backend.
func NewBackend(kind string, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendAuto:
		if b, err := NewSystemBackend(); err == nil {
			logger.Info("Using system clipboard backend", zap.String("backend", b.Name()))
			return b, nil
		} else {
			logger.Warn("System clipboard unavailable, trying text-only backend", zap.Error(err))
		}
		if b, err := NewTextBackend(); err == nil {
			logger.Info("Using text-only clipboard backend", zap.String("backend", b.Name()))
			return b, nil
		} else {
			logger.Warn("Clipboard unavailable, running headless", zap.Error(err))
		}
		return NewHeadlessBackend(), nil
	case BackendSystem:
		return NewSystemBackend()
	case BackendText:
		return NewTextBackend()
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}
}
