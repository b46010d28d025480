/*
ledger.go - The write path: normalize on the way in

The engine computes over snapshots; the Ledger is what the service shell
writes through. Raw records are normalized exactly once here, ids are
assigned when the feed has none, and flagged records are stored anyway -
listings must show the mess, reports must skip it.
*/
package engine

import (
	"context"

	"github.com/google/uuid"
)

// Ledger wraps a Store with the Normalizer on the write path.
type Ledger struct {
	store Store
	norm  *Normalizer
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, norm: NewNormalizer()}
}

// AppendRaw normalizes one raw record and stores it. Records without an
// id get a generated one. The returned ValidationErrors are the record's
// flags; the booking is stored flagged or not, so nothing the feed sent
// silently disappears. Id collisions surface as ErrDuplicateID.
func (l *Ledger) AppendRaw(ctx context.Context, raw RawBooking) (Booking, []*ValidationError, error) {
	b, flags := l.norm.NormalizeRecord(raw, 0)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := l.store.Append(ctx, b); err != nil {
		return Booking{}, flags, err
	}
	return b, flags, nil
}

// UpdateRaw re-normalizes the raw record and replaces the stored booking
// under the given id.
func (l *Ledger) UpdateRaw(ctx context.Context, id string, raw RawBooking) (Booking, []*ValidationError, error) {
	raw.ID = id
	b, flags := l.norm.NormalizeRecord(raw, 0)
	if err := l.store.Update(ctx, b); err != nil {
		return Booking{}, flags, err
	}
	return b, flags, nil
}

// SoftDelete flips the booking to status deleted; the row stays listable.
func (l *Ledger) SoftDelete(ctx context.Context, id string) error { return l.store.Delete(ctx, id) }

func (l *Ledger) Get(ctx context.Context, id string) (Booking, error) { return l.store.Get(ctx, id) }

func (l *Ledger) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	return l.store.List(ctx, f)
}

func (l *Ledger) Snapshot(ctx context.Context) ([]Booking, error) { return l.store.Snapshot(ctx) }
