package store

import (
	"maps"
	"sync"
	"time"
)

// Set is the in-memory seen-set shared by the durable stores. Additions are
// tracked as pending until the owning store persists them, so that a failed
// persist can be rolled back and the same postings surface again next cycle.
type Set struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	pending map[string]time.Time
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		entries: make(map[string]time.Time),
		pending: make(map[string]time.Time),
	}
}

// Contains reports whether id has been added.
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// AddAll records ids as first seen at the given time. Ids already present
// keep their original timestamp.
func (s *Set) AddAll(ids []string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at = at.UTC()
	for _, id := range ids {
		if _, ok := s.entries[id]; ok {
			continue
		}
		s.entries[id] = at
		s.pending[id] = at
	}
}

// Len returns the number of identifiers in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the identifier -> first-seen map.
func (s *Set) Entries() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// Pending returns a copy of the additions not yet persisted.
func (s *Set) Pending() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.pending)
}

// Commit marks the given pending additions as durable.
func (s *Set) Commit(ids map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range ids {
		delete(s.pending, id)
	}
}

// Rollback forgets the given pending additions entirely.
func (s *Set) Rollback(ids map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range ids {
		if _, ok := s.pending[id]; !ok {
			continue
		}
		delete(s.pending, id)
		delete(s.entries, id)
	}
}

// Replace swaps the whole content for entries loaded from storage.
func (s *Set) Replace(entries map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.pending = make(map[string]time.Time)
}

// RemoveOlderThan drops entries first seen before cutoff and returns how many.
func (s *Set) RemoveOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, id)
			delete(s.pending, id)
			removed++
		}
	}
	return removed
}
