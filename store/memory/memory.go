// Package memory provides an in-memory Store for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tidehouse/innledger/engine"
)

// =============================================================================
// MEMORY STORE - map under an RWMutex, sorted views built per call
// =============================================================================

// Store keeps the whole ledger in a map keyed by booking id. Booking is a
// value type with no mutable references, so handing out copies is safe.
// Sorted views are rebuilt per read; ledgers here are hundreds of rows.
type Store struct {
	mu   sync.RWMutex
	byID map[string]engine.Booking
}

func New() *Store {
	return &Store{byID: make(map[string]engine.Booking)}
}

func (s *Store) Append(_ context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[b.ID]; ok {
		return fmt.Errorf("append %q: %w", b.ID, engine.ErrDuplicateID)
	}
	s.byID[b.ID] = b
	return nil
}

func (s *Store) Update(_ context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[b.ID]; !ok {
		return fmt.Errorf("update %q: %w", b.ID, engine.ErrNotFound)
	}
	s.byID[b.ID] = b
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("delete %q: %w", id, engine.ErrNotFound)
	}
	b.Status = engine.StatusDeleted
	s.byID[id] = b
	return nil
}

func (s *Store) Get(_ context.Context, id string) (engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return engine.Booking{}, fmt.Errorf("get %q: %w", id, engine.ErrNotFound)
	}
	return b, nil
}

func (s *Store) List(_ context.Context, f engine.ListFilter) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]engine.Booking, 0, len(s.byID))
	for _, b := range s.byID {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	sortByCheckin(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) Snapshot(_ context.Context) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]engine.Booking, 0, len(s.byID))
	for _, b := range s.byID {
		out = append(out, b)
	}
	sortByCheckin(out)
	return out, nil
}

func (s *Store) Close() error { return nil }

// sortByCheckin orders rows by checkin then id; records with an unusable
// checkin sort first so the mess is the first thing a listing shows.
func sortByCheckin(rows []engine.Booking) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CheckIn.Equal(rows[j].CheckIn) {
			return rows[i].CheckIn.Before(rows[j].CheckIn)
		}
		return rows[i].ID < rows[j].ID
	})
}
