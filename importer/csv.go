/*
Package importer ingests spreadsheet CSV exports into the booking ledger.

PURPOSE:
  The feed is whatever the front desk exported this week: column names
  drift ("Check-in", "checkin_date", "Arrival"), columns appear and
  disappear, and rows are ragged. This package maps recognizable headers
  onto raw booking fields and pushes every row through the ledger's
  normalizing write path.

TOLERANCE:
  One rotten row never aborts an import. Rows that fail coercion are
  stored flagged (the normalizer's contract); rows whose id collides are
  counted and skipped. Only I/O and CSV structure failures abort.
*/
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tidehouse/innledger/engine"
)

// headerAliases maps lower-cased, space-collapsed header cells onto raw
// booking fields. Unknown columns are carried nowhere and ignored.
var headerAliases = map[string]string{
	"id": "id", "booking id": "id", "booking_id": "id", "ref": "id",

	"guest": "guest_name", "guest name": "guest_name", "guest_name": "guest_name",
	"name": "guest_name",

	"checkin": "checkin", "check-in": "checkin", "check in": "checkin",
	"check_in": "checkin", "checkin_date": "checkin", "arrival": "checkin",

	"checkout": "checkout", "check-out": "checkout", "check out": "checkout",
	"check_out": "checkout", "checkout_date": "checkout", "departure": "checkout",

	"room": "room_amount", "room amount": "room_amount", "room_amount": "room_amount",
	"amount": "room_amount", "price": "room_amount", "total": "room_amount",

	"commission": "commission", "comm": "commission", "fee": "commission",

	"taxi": "taxi", "taxi_amount": "taxi",

	"collected": "collected_amount", "collected amount": "collected_amount",
	"collected_amount": "collected_amount",

	"collector": "collector", "collected by": "collector", "collected_by": "collector",

	"status": "status",

	"source": "source", "channel": "source",

	"notes": "notes", "note": "notes",
}

// ImportStats summarizes one import run.
type ImportStats struct {
	Total      int // rows in the file
	Stored     int // rows that landed in the ledger (flagged included)
	Flagged    int // stored rows that carry validation flags
	Duplicates int // rows skipped because their id was already present
}

// Importer writes CSV exports through a Ledger.
type Importer struct {
	ledger *engine.Ledger
}

func New(ledger *engine.Ledger) *Importer { return &Importer{ledger: ledger} }

// Read parses a CSV export into raw bookings without storing anything.
// The first row must be a header with at least one recognizable column.
func Read(r io.Reader) ([]engine.RawBooking, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // exports are ragged; tolerate

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields := make(map[int]string, len(header))
	for i, cell := range header {
		if field, ok := headerAliases[normalizeHeader(cell)]; ok {
			fields[i] = field
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no recognizable columns in header %v", header)
	}

	var records []engine.RawBooking
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		var raw engine.RawBooking
		for i, field := range fields {
			if i >= len(row) {
				continue
			}
			setField(&raw, field, row[i])
		}
		records = append(records, raw)
	}
	return records, nil
}

// Import reads the export and appends every row through the ledger.
// Duplicate ids are counted and skipped; any other store failure aborts.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	records, err := Read(r)
	if err != nil {
		return ImportStats{}, err
	}

	stats := ImportStats{Total: len(records)}
	for _, raw := range records {
		_, flags, err := im.ledger.AppendRaw(ctx, raw)
		if engine.IsDuplicateID(err) {
			stats.Duplicates++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("import aborted at row %d: %w", stats.Stored+stats.Duplicates+1, err)
		}
		stats.Stored++
		if len(flags) > 0 {
			stats.Flagged++
		}
	}
	return stats, nil
}

// normalizeHeader lower-cases, strips a UTF-8 BOM and collapses runs of
// whitespace, so "  Check-In " and "check-in" are the same column.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func setField(raw *engine.RawBooking, field, value string) {
	switch field {
	case "id":
		raw.ID = value
	case "guest_name":
		raw.GuestName = value
	case "checkin":
		raw.CheckIn = value
	case "checkout":
		raw.CheckOut = value
	case "room_amount":
		raw.RoomAmount = value
	case "commission":
		raw.Commission = value
	case "taxi":
		raw.Taxi = value
	case "collected_amount":
		raw.CollectedAmount = value
	case "collector":
		raw.Collector = value
	case "status":
		raw.Status = value
	case "source":
		raw.Source = value
	case "notes":
		raw.Notes = value
	}
}
