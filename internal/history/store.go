// Package history keeps the bounded, deduplicated, newest-first list of
// clipboard records.
package history

import (
	"strings"

	"github.com/berrythewa/cliprecall/internal/types"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Store is an ordered, capacity-bounded collection of records, newest first.
// Store does no locking; see History for the synchronized wrapper.
type Store struct {
	items    []*types.Record
	capacity int
}

// NewStore creates an empty store holding at most capacity records.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		items:    make([]*types.Record, 0, capacity+1),
		capacity: capacity,
	}
}

// Insert removes any record equal to rec or sharing its ID, puts rec at the
// front and evicts from the back until the store is within capacity. The
// evicted records are returned.
func (s *Store) Insert(rec *types.Record) []*types.Record {
	if rec == nil {
		return nil
	}

	kept := s.items[:0]
	for _, existing := range s.items {
		if existing.ID() != rec.ID() && !existing.Equal(rec) {
			kept = append(kept, existing)
		}
	}
	// clear the tail so dropped records can be collected
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = kept

	s.items = append(s.items, nil)
	copy(s.items[1:], s.items)
	s.items[0] = rec

	var evicted []*types.Record
	for len(s.items) > s.capacity {
		last := len(s.items) - 1
		evicted = append(evicted, s.items[last])
		s.items[last] = nil
		s.items = s.items[:last]
	}
	return evicted
}

// List returns a newest-first copy of the stored records.
func (s *Store) List() []*types.Record {
	out := make([]*types.Record, len(s.items))
	copy(out, s.items)
	return out
}

// Search returns the text and URL records whose payload contains keyword,
// ignoring case. A blank keyword returns the full list. Image records never
// match a keyword.
func (s *Store) Search(keyword string) []*types.Record {
	if strings.TrimSpace(keyword) == "" {
		return s.List()
	}

	needle := strings.ToLower(keyword)
	out := make([]*types.Record, 0)
	for _, rec := range s.items {
		switch c := rec.Content().(type) {
		case types.Text:
			if strings.Contains(strings.ToLower(string(c)), needle) {
				out = append(out, rec)
			}
		case types.URL:
			if strings.Contains(strings.ToLower(string(c)), needle) {
				out = append(out, rec)
			}
		case types.Image:
		}
	}
	return out
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (*types.Record, bool) {
	for _, rec := range s.items {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}

// Clear drops all records.
func (s *Store) Clear() {
	for i := range s.items {
		s.items[i] = nil
	}
	s.items = s.items[:0]
}

func (s *Store) Size() int     { return len(s.items) }
func (s *Store) Capacity() int { return s.capacity }
