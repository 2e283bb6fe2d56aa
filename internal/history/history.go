package history

import (
	"sync"

	"go.uber.org/zap"

	"github.com/berrythewa/cliprecall/internal/types"
)

// History guards a Store with a read/write mutex. Mutations take the write
// lock; List, Search, Get and Size take the read lock and return copies, so
// readers never see a half-applied insert.
type History struct {
	mu     sync.RWMutex
	store  *Store
	logger *zap.Logger
}

// New creates a History with the given capacity.
func New(capacity int, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{
		store:  NewStore(capacity),
		logger: logger,
	}
}

// Insert adds rec, promoting it to the front if an equal record is present.
func (h *History) Insert(rec *types.Record) {
	if rec == nil {
		return
	}
	h.mu.Lock()
	evicted := h.store.Insert(rec)
	size := h.store.Size()
	h.mu.Unlock()

	h.logger.Debug("History insert",
		zap.String("id", rec.ID()),
		zap.String("type", string(rec.Type())),
		zap.Int("size", size))
	for _, old := range evicted {
		h.logger.Debug("Evicted oldest history entry",
			zap.String("id", old.ID()),
			zap.String("type", string(old.Type())))
	}
}

// Promote is Insert under the name the query surface uses when a user
// re-selects an existing entry.
func (h *History) Promote(rec *types.Record) {
	h.Insert(rec)
}

func (h *History) List() []*types.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store.List()
}

func (h *History) Search(keyword string) []*types.Record {
	h.mu.RLock()
	result := h.store.Search(keyword)
	h.mu.RUnlock()

	h.logger.Debug("History search",
		zap.String("keyword", keyword),
		zap.Int("matches", len(result)))
	return result
}

func (h *History) Get(id string) (*types.Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store.Get(id)
}

func (h *History) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store.Size()
}

func (h *History) Capacity() int {
	return h.store.Capacity()
}

// Clear drops every record.
func (h *History) Clear() {
	h.mu.Lock()
	n := h.store.Size()
	h.store.Clear()
	h.mu.Unlock()

	h.logger.Info("History cleared", zap.Int("removed", n))
}
