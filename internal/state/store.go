package state

import (
	"sort"
	"sync"

	"stockpulse/internal/domain"
)

// Store is the append-only, in-memory record of accepted analyses.
// Nothing is ever updated or deleted; restart loses everything.
type Store struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds one record.
func (s *Store) Append(record domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
}

// All returns a snapshot of every record, newest first. The caller gets a
// copy and cannot corrupt internal state through it.
func (s *Store) All() []domain.Record {
	s.mu.RLock()
	snapshot := make([]domain.Record, len(s.records))
	copy(snapshot, s.records)
	s.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Timestamp.After(snapshot[j].Timestamp)
	})
	return snapshot
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
