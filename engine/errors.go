/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Store implementations and the API layer wrap these with transport
  context but never invent parallel taxonomies.

ERROR CATEGORIES:
  1. Sentinel errors - store-level conditions matched with errors.Is()
  2. ValidationError - one record's field failed coercion; collected into
     a RunReport, never aborts a batch
  3. ConfigurationError - the engine cannot run at all; fatal at startup

NOT AN ERROR:
  A zero-or-negative night count is degenerate arithmetic, not a failure;
  the allocator clamps it to one night so the booking stays visible.

USAGE:
  if engine.IsNotFound(err) { ... 404 ... }
  if engine.IsConfiguration(err) { log.Fatal(err) }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a booking id has no ledger entry.
	ErrNotFound = errors.New("booking not found")

	// ErrDuplicateID is returned when appending a booking whose id is
	// already in the ledger.
	ErrDuplicateID = errors.New("duplicate booking id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes one field of one raw record that failed
// coercion. It is collected, not thrown: the batch keeps going.
type ValidationError struct {
	Index     int // position in the incoming batch
	BookingID string
	Field     string // e.g. "checkin_date", "room_amount"
	Value     string // offending raw value
	Reason    string
}

func (e *ValidationError) Error() string {
	id := e.BookingID
	if id == "" {
		id = fmt.Sprintf("record %d", e.Index)
	}
	return fmt.Sprintf("%s: %s %q: %s", id, e.Field, e.Value, e.Reason)
}

// ConfigurationError means the engine cannot run at all. Raised once, at
// construction, because every downstream computation depends on it.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// =============================================================================
// RUN REPORT - Per-batch aggregation of validation failures
// =============================================================================

// RunReport collects every ValidationError from one normalization run so
// the caller can show "N records flagged" without losing the other N-1.
type RunReport struct {
	errors []*ValidationError
}

func (r *RunReport) Add(e *ValidationError) {
	if e != nil {
		r.errors = append(r.errors, e)
	}
}

func (r *RunReport) Len() int                   { return len(r.errors) }
func (r *RunReport) Errors() []*ValidationError { return r.errors }

// ByField groups collected errors by field name, for dashboards that
// answer "what keeps going wrong in this feed".
func (r *RunReport) ByField() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.errors {
		counts[e.Field]++
	}
	return counts
}

// Error summarizes the run; RunReport is usable as an error when non-empty.
func (r *RunReport) Error() string {
	return fmt.Sprintf("%d record field(s) flagged", len(r.errors))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing booking.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateID returns true for append collisions on booking id.
func IsDuplicateID(err error) bool { return errors.Is(err, ErrDuplicateID) }

// IsValidation returns true if the error is a per-record coercion failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfiguration returns true if the error is fatal engine misconfiguration.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
