/*
Package engine is the booking ledger accounting and occupancy engine.

PURPOSE:
  Turns a flat snapshot of hotel bookings into derived reports: per-day
  occupancy and revenue against a fixed room capacity, collected-vs-owed
  reconciliation per authorized collector, duplicate and overcrowding
  alerts, and prioritized arrival/departure notifications.

KEY CONCEPTS IN THIS FILE (types.go):
  - RawBooking: a record exactly as the feed supplies it, every field a string
  - Booking: the canonical, strongly-typed record built once at ingestion
  - Status: open booking-state enum; cancelled/deleted drop out of reports
  - Derived outputs: plain serializable rows, one type per report

DESIGN PRINCIPLES:
  1. Snapshot in, reports out: every computation takes the ledger as a
     parameter; no module-level caches, no freshness flags
  2. Precision: decimal-backed Money wherever revenue is summed or split
  3. Normalize once: loose-field coercion happens in one place, and
     downstream code only ever sees typed fields
  4. Tolerant ingestion: bad records are flagged and retained for listing
     rather than aborting the batch

USAGE:
  eng, err := engine.NewEngine(engine.Config{
      Capacity:   4,
      Collectors: []string{"LOC LE", "THAO LE"},
  })
  res  := eng.Normalize(rawRecords)
  figs := eng.DailyFigures(res.Bookings, window)

SEE ALSO:
  - normalize.go: raw record coercion rules
  - allocate.go: nightly revenue split
  - occupancy.go: arrival/staying/departure buckets
  - reconcile.go: collector allow-list reconciliation
*/
package engine

import "strings"

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCheckedIn Status = "checked_in"
	StatusCancelled Status = "cancelled"
	StatusDeleted   Status = "deleted"
)

// ParseStatus maps a raw status cell onto the enum. The enum is open:
// unknown values pass through lower-cased so listings show what the feed
// actually said. Empty means confirmed, the feed's default.
func ParseStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusConfirmed
	}
	return Status(strings.Join(strings.Fields(s), "_"))
}

// Excluded reports whether bookings in this status stay out of every
// derived computation (occupancy, revenue, reconciliation, duplicates,
// overcrowding, notifications). They remain listable.
func (s Status) Excluded() bool { return s == StatusCancelled || s == StatusDeleted }

// =============================================================================
// RAW AND CANONICAL RECORDS
// =============================================================================

// RawBooking is a booking row as the outside world delivers it: spreadsheet
// exports, scraped tables, hand-typed forms. Everything is a string and
// nothing is trusted until the normalizer has seen it.
type RawBooking struct {
	ID              string
	GuestName       string
	CheckIn         string
	CheckOut        string
	RoomAmount      string
	Commission      string
	Taxi            string
	CollectedAmount string
	Collector       string
	Status          string
	Source          string
	Notes           string
}

// Booking is the canonical ledger record. It is immutable for the duration
// of an engine run; reports are derived fresh from a full snapshot.
type Booking struct {
	ID              string
	GuestName       string
	CheckIn         Date
	CheckOut        Date
	RoomAmount      Money // stay total, not per night
	Commission      Money // stay total, not per night
	TaxiRaw         string
	TaxiAmount      Money // parsed from TaxiRaw, zero when unparseable
	CollectedAmount Money
	Collector       string
	Status          Status
	Source          string
	Notes           string

	// Invalid marks records that failed hard validation (unparseable
	// dates, negative money). They stay listable but never enter derived
	// computations.
	Invalid bool
}

func (b Booking) HasValidStay() bool { return !b.CheckIn.IsZero() && !b.CheckOut.IsZero() }

// Nights returns the allocatable night count: checkout minus checkin,
// clamped to 1 so same-day and inverted stays remain visible in revenue
// reports instead of vanishing.
func (b Booking) Nights() int {
	n := DaysBetween(b.CheckIn, b.CheckOut)
	if n < 1 {
		return 1
	}
	return n
}

// Stay returns the occupied dates [checkin, checkout-1] after clamping.
func (b Booking) Stay() DateRange {
	return DateRange{From: b.CheckIn, To: b.CheckIn.AddDays(b.Nights() - 1)}
}

// Computable reports whether the record participates in derived
// computations: not flagged invalid, not cancelled/deleted, dates usable.
func (b Booking) Computable() bool {
	return !b.Invalid && !b.Status.Excluded() && b.HasValidStay()
}

// NetAmount is room revenue minus platform commission.
func (b Booking) NetAmount() Money { return b.RoomAmount.Sub(b.Commission) }

// =============================================================================
// DERIVED OUTPUTS - Plain rows; nothing engine-internal leaks
// =============================================================================

// StayRef identifies one booking inside an occupancy bucket.
type StayRef struct {
	BookingID string
	GuestName string
}

// OccupancySnapshot is one date's occupancy classification. The three
// bucket slices are pairwise disjoint by construction.
type OccupancySnapshot struct {
	Date           Date
	Arrivals       []StayRef
	Staying        []StayRef
	Departures     []StayRef
	OccupiedUnits  int
	AvailableUnits int
}

// NightlyShare is the drill-down record for one booking's share of one night.
type NightlyShare struct {
	BookingID  string
	GuestName  string
	Amount     Money
	Commission Money
}

// DailyRevenue is the allocator's output for one calendar date.
type DailyRevenue struct {
	Date            Date
	RevenueTotal    Money
	RevenueNet      Money
	CommissionTotal Money
	Contributions   []NightlyShare
}

// DailyFigure merges occupancy and revenue for one calendar date; this is
// the row the calendar view renders.
type DailyFigure struct {
	Date            Date
	OccupiedUnits   int
	AvailableUnits  int
	Arrivals        int
	Departures      int
	Staying         int
	RevenueTotal    Money
	RevenueNet      Money
	CommissionTotal Money
	Contributions   []NightlyShare
}

// UncollectedBucket labels the summary row for money no authorized
// collector has signed off on.
const UncollectedBucket = "uncollected"

// CollectionSummary is one period x bucket reconciliation row. Period is a
// month key ("2025-02") or ISO week key ("2025-W06"); Bucket is a collector
// name or UncollectedBucket.
type CollectionSummary struct {
	Period          string
	Bucket          string
	AmountCollected Money
	BookingCount    int
	CommissionTotal Money
}

// OverdueEntry is an uncollected booking whose guest has already arrived.
type OverdueEntry struct {
	BookingID         string
	GuestName         string
	CheckIn           Date
	Collector         string
	RoomAmount        Money
	TaxiAmount        Money
	OutstandingAmount Money // RoomAmount + TaxiAmount
}

type OverdueReport struct {
	Entries []OverdueEntry
	Total   Money
}

// DuplicateRef identifies one half of a suspected double entry.
type DuplicateRef struct {
	BookingID string
	CheckIn   Date
}

// DuplicateGroup flags two bookings for the same normalized guest whose
// check-ins fall within the duplicate window.
type DuplicateGroup struct {
	GuestKey  string // normalized form the grouping ran on
	GuestName string // display form from the earlier booking
	First     DuplicateRef
	Second    DuplicateRef
	DayGap    int
}

// Urgency buckets overcrowding alerts by how soon the date hits.
type Urgency string

const (
	UrgencyPast    Urgency = "past"
	UrgencyUrgent  Urgency = "urgent"  // within 3 days
	UrgencyWarning Urgency = "warning" // within 7 days
	UrgencyInfo    Urgency = "info"
)

// OvercrowdedDay flags a date whose arrival count exceeds capacity.
type OvercrowdedDay struct {
	Date        Date
	GuestCount  int
	Capacity    int
	GuestNames  []string
	BookingIDs  []string
	TotalAmount Money
	DaysUntil   int
	Urgency     Urgency
}

type NotificationKind string

type NotificationPriority string

const (
	KindArrival   NotificationKind = "arrival"
	KindDeparture NotificationKind = "departure"

	PriorityHigh   NotificationPriority = "high"
	PriorityNormal NotificationPriority = "normal"
)

// Notification is one arrival/departure reminder row.
type Notification struct {
	Kind       NotificationKind
	BookingID  string
	GuestName  string
	Date       Date
	DaysUntil  int
	Priority   NotificationPriority
	Commission Money
}

// NotificationDigest is the scheduler's output: who shows up and who
// leaves within the horizon, in sending order.
type NotificationDigest struct {
	Arrivals   []Notification
	Departures []Notification
}
