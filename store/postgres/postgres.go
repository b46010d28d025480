/*
Package postgres provides the Store for deployments with a shared database.

Same storage format as store/sqlite (ISO TEXT dates, decimal TEXT money,
a stored guest_key for substring filtering); only the dialect and the
driver differ. Uses a pgx pool; native driver failures map onto the
engine's sentinel errors at this boundary.
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tidehouse/innledger/engine"
)

// Store implements engine.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects, pings and migrates. The pool handles concurrency; unlike
// the SQLite store there is no process-level write lock here.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
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
		invalid          BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_checkin
		ON bookings(checkin);
	CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings(status);
	CREATE INDEX IF NOT EXISTS idx_bookings_guest_key
		ON bookings(guest_key);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

const bookingColumns = `id, guest_name, checkin, checkout, room_amount, commission,
	taxi_raw, taxi_amount, collected_amount, collector, status, source, notes, invalid`

func (s *Store) Append(ctx context.Context, b engine.Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings
		(id, guest_name, guest_key, checkin, checkout, room_amount, commission,
		 taxi_raw, taxi_amount, collected_amount, collector, status, source, notes, invalid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.GuestName, engine.GuestKey(b.GuestName),
		b.CheckIn.String(), b.CheckOut.String(),
		b.RoomAmount.String(), b.Commission.String(),
		b.TaxiRaw, b.TaxiAmount.String(), b.CollectedAmount.String(),
		b.Collector, string(b.Status), b.Source, b.Notes, b.Invalid,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("append %q: %w", b.ID, engine.ErrDuplicateID)
		}
		return fmt.Errorf("failed to append booking: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, b engine.Booking) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE bookings SET
			guest_name = $1, guest_key = $2, checkin = $3, checkout = $4,
			room_amount = $5, commission = $6, taxi_raw = $7, taxi_amount = $8,
			collected_amount = $9, collector = $10, status = $11, source = $12,
			notes = $13, invalid = $14, updated_at = now()
		WHERE id = $15`,
		b.GuestName, engine.GuestKey(b.GuestName),
		b.CheckIn.String(), b.CheckOut.String(),
		b.RoomAmount.String(), b.Commission.String(),
		b.TaxiRaw, b.TaxiAmount.String(), b.CollectedAmount.String(),
		b.Collector, string(b.Status), b.Source, b.Notes, b.Invalid,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %q: %w", b.ID, engine.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2`,
		string(engine.StatusDeleted), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %q: %w", id, engine.ErrNotFound)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (engine.Booking, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err == pgx.ErrNoRows {
		return engine.Booking{}, fmt.Errorf("get %q: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return engine.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (s *Store) List(ctx context.Context, f engine.ListFilter) ([]engine.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.Guest != "" {
		where = append(where, "guest_key LIKE "+arg("%"+engine.GuestKey(f.Guest)+"%"))
	}
	if !f.From.IsZero() {
		where = append(where, "checkin <> '' AND checkin >= "+arg(f.From.String()))
	}
	if !f.To.IsZero() {
		where = append(where, "checkin <> '' AND checkin <= "+arg(f.To.String()))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY checkin ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	return s.queryBookings(ctx, query, args...)
}

func (s *Store) Snapshot(ctx context.Context) ([]engine.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY checkin ASC, id ASC`)
}

// =============================================================================
// SCANNING
// =============================================================================

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]engine.Booking, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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
	)
	err := row.Scan(
		&b.ID, &b.GuestName, &checkin, &checkout, &room, &commission,
		&b.TaxiRaw, &taxiAmount, &collected, &b.Collector, &status,
		&b.Source, &b.Notes, &b.Invalid,
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
