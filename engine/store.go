/*
store.go - Persistence contract for the booking ledger

PURPOSE:
  Defines the interface between the engine and whatever holds the
  bookings. The engine itself never talks to a database - it consumes
  full snapshots. The Store exists for the service shell around it.

MUTATION CONTRACT:
  Bookings are corrected, not erased. Delete is soft: the record flips
  to status "deleted", drops out of derived computations, and stays
  listable. The reports depend on the mess staying visible.

IMPLEMENTATIONS:
  - store/memory:   RWMutex slice, for tests and ephemeral runs
  - store/sqlite:   single-file production store
  - store/postgres: pgx pool, for deployments with a shared database
*/
package engine

import (
	"context"
	"strings"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// Store handles booking persistence. Implementations map their native
// not-found and uniqueness failures onto ErrNotFound / ErrDuplicateID so
// callers never see driver errors.
type Store interface {
	// Append persists a new booking. Fails with ErrDuplicateID when the
	// id is already in the ledger.
	Append(ctx context.Context, b Booking) error

	// Update replaces an existing booking wholesale.
	Update(ctx context.Context, b Booking) error

	// Delete soft-deletes: status flips to deleted, the row stays.
	Delete(ctx context.Context, id string) error

	// Get returns one booking by id.
	Get(ctx context.Context, id string) (Booking, error)

	// List returns bookings matching the filter, ordered by checkin
	// then id.
	List(ctx context.Context, f ListFilter) ([]Booking, error)

	// Snapshot returns the full ledger for an engine run.
	Snapshot(ctx context.Context) ([]Booking, error)

	Close() error
}

// ListFilter narrows List results. Zero values mean "any". Guest matches
// as a substring of the normalized guest name.
type ListFilter struct {
	Status Status
	Guest  string
	From   Date // checkin on or after
	To     Date // checkin on or before
	Limit  int
}

// Matches defines the filter semantics once; stores that filter in Go
// use it directly, SQL stores mirror it in their WHERE clauses.
func (f ListFilter) Matches(b Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.Guest != "" && !strings.Contains(GuestKey(b.GuestName), GuestKey(f.Guest)) {
		return false
	}
	if !f.From.IsZero() && (b.CheckIn.IsZero() || b.CheckIn.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (b.CheckIn.IsZero() || b.CheckIn.After(f.To)) {
		return false
	}
	return true
}
