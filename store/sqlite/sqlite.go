/*
Package sqlite provides the single-file production Store.

PURPOSE:
  Persists the booking ledger in one SQLite database. The engine never
  sees SQL; it consumes snapshots. This package maps the Store contract
  onto a bookings table and maps SQLite failures onto the engine's
  sentinel errors.

STORAGE FORMAT:
  Dates    TEXT, ISO "2006-01-02", empty string for the zero date so
           flagged records keep their place in listings.
  Money    TEXT, canonical decimal string. Scanned back through the
           decimal constructor, NOT the feed parser: the feed parser's
           grouping heuristics would misread values like "1.125".
  guest_key is stored alongside guest_name so substring filtering works
           in SQL the same way ListFilter.Matches works in Go.

WAL MODE:
  Opened with WAL for concurrent readers; a mutex serializes writers.

USAGE:
  st, err := sqlite.New("./data/innledger.db")
  if err != nil { log.Fatal(err) }
  defer st.Close()
  ledger := engine.NewLedger(st)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tidehouse/innledger/engine"
)

// Store implements engine.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookings (
		id               TEXT PRIMARY KEY,
		guest_name       TEXT NOT NULL DEFAULT '',
		guest_key        TEXT NOT NULL DEFAULT '',
		checkin          TEXT NOT NULL DEFAULT '',
		checkout         TEXT NOT NULL DEFAULT '',
		room_amount      TEXT NOT NULL DEFAULT '0',
		commission       TEXT NOT NULL DEFAULT '0',
		taxi_raw         TEXT NOT NULL DEFAULT '',
		taxi_amount      TEXT NOT NULL DEFAULT '0',
		collected_amount TEXT NOT NULL DEFAULT '0',
		collector        TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'confirmed',
		source           TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		invalid          INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_checkin
		ON bookings(checkin);
	CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings(status);
	CREATE INDEX IF NOT EXISTS idx_bookings_guest_key
		ON bookings(guest_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

const bookingColumns = `id, guest_name, checkin, checkout, room_amount, commission,
	taxi_raw, taxi_amount, collected_amount, collector, status, source, notes, invalid`

func (s *Store) Append(ctx context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings
		(id, guest_name, guest_key, checkin, checkout, room_amount, commission,
		 taxi_raw, taxi_amount, collected_amount, collector, status, source, notes,
		 invalid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.GuestName, engine.GuestKey(b.GuestName),
		b.CheckIn.String(), b.CheckOut.String(),
		b.RoomAmount.String(), b.Commission.String(),
		b.TaxiRaw, b.TaxiAmount.String(), b.CollectedAmount.String(),
		b.Collector, string(b.Status), b.Source, b.Notes,
		boolToInt(b.Invalid), now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("append %q: %w", b.ID, engine.ErrDuplicateID)
		}
		return fmt.Errorf("failed to append booking: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, b engine.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET
			guest_name = ?, guest_key = ?, checkin = ?, checkout = ?,
			room_amount = ?, commission = ?, taxi_raw = ?, taxi_amount = ?,
			collected_amount = ?, collector = ?, status = ?, source = ?,
			notes = ?, invalid = ?, updated_at = ?
		WHERE id = ?`,
		b.GuestName, engine.GuestKey(b.GuestName),
		b.CheckIn.String(), b.CheckOut.String(),
		b.RoomAmount.String(), b.Commission.String(),
		b.TaxiRaw, b.TaxiAmount.String(), b.CollectedAmount.String(),
		b.Collector, string(b.Status), b.Source, b.Notes,
		boolToInt(b.Invalid), time.Now().UTC().Format(time.RFC3339),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireRow(res, b.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		string(engine.StatusDeleted), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireRow(res, id)
}

func (s *Store) Get(ctx context.Context, id string) (engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return engine.Booking{}, fmt.Errorf("get %q: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return engine.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (s *Store) List(ctx context.Context, f engine.ListFilter) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Guest != "" {
		where = append(where, "guest_key LIKE ?")
		args = append(args, "%"+engine.GuestKey(f.Guest)+"%")
	}
	if !f.From.IsZero() {
		where = append(where, "checkin <> '' AND checkin >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "checkin <> '' AND checkin <= ?")
		args = append(args, f.To.String())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY checkin ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.queryBookings(ctx, query, args...)
}

func (s *Store) Snapshot(ctx context.Context) ([]engine.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY checkin ASC, id ASC`)
}

// =============================================================================
// SCANNING
// =============================================================================

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]engine.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []engine.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (engine.Booking, error) {
	var (
		b                             engine.Booking
		checkin, checkout             string
		room, commission              string
		taxiAmount, collected, status string
		invalid                       int
	)
	err := row.Scan(
		&b.ID, &b.GuestName, &checkin, &checkout, &room, &commission,
		&b.TaxiRaw, &taxiAmount, &collected, &b.Collector, &status,
		&b.Source, &b.Notes, &invalid,
	)
	if err != nil {
		return b, err
	}

	b.CheckIn = dateFromDB(checkin)
	b.CheckOut = dateFromDB(checkout)
	b.RoomAmount = moneyFromDB(room)
	b.Commission = moneyFromDB(commission)
	b.TaxiAmount = moneyFromDB(taxiAmount)
	b.CollectedAmount = moneyFromDB(collected)
	b.Status = engine.Status(status)
	b.Invalid = invalid != 0
	return b, nil
}

func dateFromDB(s string) engine.Date {
	if s == "" {
		return engine.Date{}
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		return engine.Date{}
	}
	return d
}

func moneyFromDB(s string) engine.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.ZeroMoney()
	}
	return engine.MoneyFromDecimal(d)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("booking %q: %w", id, engine.ErrNotFound)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
