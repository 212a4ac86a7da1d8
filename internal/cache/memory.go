package cache

import (
	"context"
	"sync"
	"time"
)

type entryKey struct {
	queryType string
	params    string
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey][]Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[entryKey][]Entry)}
}

// Latest implements Store.
func (s *MemoryStore) Latest(_ context.Context, queryType, params string, now time.Time) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Entry
	for i, e := range s.entries[entryKey{queryType, params}] {
		if !e.Live(now) {
			continue
		}
		// Later inserts win ties on CreatedAt.
		if best == nil || !e.CreatedAt.Before(best.CreatedAt) {
			best = &s.entries[entryKey{queryType, params}][i]
		}
	}
	if best == nil {
		return nil, nil
	}
	out := *best
	return &out, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := entryKey{e.QueryType, e.QueryParams}
	s.entries[k] = append(s.entries[k], e)
	return nil
}

// Cleanup implements Store.
func (s *MemoryStore) Cleanup(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for k, list := range s.entries {
		kept := list[:0]
		for _, e := range list {
			if e.Live(now) {
				kept = append(kept, e)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(s.entries, k)
		} else {
			s.entries[k] = kept
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, list := range s.entries {
		n += len(list)
	}
	return n
}
