package clipboard

import (
	"context"
	"sync"
)

// HeadlessBackend is a no-op backend for hosts without a display server.
// Reads always report an empty clipboard and writes are discarded.
type HeadlessBackend struct{}

func NewHeadlessBackend() *HeadlessBackend { return &HeadlessBackend{} }

func (HeadlessBackend) Name() string                                     { return "headless" }
func (HeadlessBackend) ReadCurrent(context.Context) (*RawPayload, error) { return nil, nil }
func (HeadlessBackend) Write(context.Context, RawPayload) error          { return nil }
func (HeadlessBackend) Close() error                                     { return nil }

// MemoryBackend keeps the clipboard in process memory. Writes become
// visible to subsequent reads.
type MemoryBackend struct {
	mu      sync.Mutex
	current *RawPayload
	writes  int
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) ReadCurrent(ctx context.Context) (*RawPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil, nil
	}
	p := *b.current
	return &p, nil
}

func (b *MemoryBackend) Write(ctx context.Context, payload RawPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if payload.Empty() {
		return ErrUnsupportedPayload
	}
	b.Set(payload)
	b.mu.Lock()
	b.writes++
	b.mu.Unlock()
	return nil
}

// Set replaces the clipboard value without counting as a Write.
func (b *MemoryBackend) Set(payload RawPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := payload
	b.current = &p
}

// SetText is shorthand for Set(TextPayload(s)).
func (b *MemoryBackend) SetText(s string) { b.Set(TextPayload(s)) }

// Reset empties the clipboard.
func (b *MemoryBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Writes returns how many times Write succeeded.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *MemoryBackend) Close() error { return nil }
