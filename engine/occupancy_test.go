package engine_test

import (
	"testing"
	"time"

	"github.com/tidehouse/innledger/engine"
)

func refIDs(refs []engine.StayRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.BookingID
	}
	return ids
}

// =============================================================================
// BUCKET CLASSIFICATION
// =============================================================================

func TestSnapshot_DisjointBuckets(t *testing.T) {
	// GIVEN: On Jan 10 - one guest arriving, one mid-stay, one leaving and
	//        one whose stay does not touch the date
	// WHEN: Taking the snapshot
	// THEN: Each lands in exactly one bucket; occupied counts arrivals
	//       plus staying, never departures

	cal := engine.NewOccupancyCalendar(4)
	target := date(2025, time.January, 10)
	ledger := []engine.Booking{
		booking("arr", "An", target, target.AddDays(2), 0, 0),
		booking("stay", "Binh", target.AddDays(-1), target.AddDays(1), 0, 0),
		booking("dep", "Chi", target.AddDays(-2), target, 0, 0),
		booking("off", "Dung", target.AddDays(5), target.AddDays(7), 0, 0),
	}

	snap := cal.Snapshot(ledger, target)

	if got := refIDs(snap.Arrivals); len(got) != 1 || got[0] != "arr" {
		t.Errorf("arrivals: expected [arr], got %v", got)
	}
	if got := refIDs(snap.Staying); len(got) != 1 || got[0] != "stay" {
		t.Errorf("staying: expected [stay], got %v", got)
	}
	if got := refIDs(snap.Departures); len(got) != 1 || got[0] != "dep" {
		t.Errorf("departures: expected [dep], got %v", got)
	}
	if snap.OccupiedUnits != 2 {
		t.Errorf("occupied: expected 2 (arrival+staying), got %d", snap.OccupiedUnits)
	}
	if snap.AvailableUnits != 2 {
		t.Errorf("available: expected 2, got %d", snap.AvailableUnits)
	}
}

func TestSnapshot_ArrivalNeverAlsoStaying(t *testing.T) {
	cal := engine.NewOccupancyCalendar(4)
	target := date(2025, time.January, 10)
	long := booking("bk-1", "An", target, target.AddDays(10), 0, 0)

	snap := cal.Snapshot([]engine.Booking{long}, target)
	if len(snap.Arrivals) != 1 || len(snap.Staying) != 0 || len(snap.Departures) != 0 {
		t.Errorf("long-stay arrival double counted: arrivals=%d staying=%d departures=%d",
			len(snap.Arrivals), len(snap.Staying), len(snap.Departures))
	}
	if snap.OccupiedUnits != 1 {
		t.Errorf("occupied: expected 1, got %d", snap.OccupiedUnits)
	}
}

func TestSnapshot_SameDayTurnoverIsArrivalOnly(t *testing.T) {
	// GIVEN: A same-day booking (checkin == checkout == the snapshot date)
	// WHEN: Classifying it
	// THEN: Arrival wins; the booking never shows as a departure, and it
	//       occupies a unit that day

	cal := engine.NewOccupancyCalendar(4)
	day := date(2025, time.June, 1)
	turnover := booking("bk-1", "An", day, day, 0, 0)

	snap := cal.Snapshot([]engine.Booking{turnover}, day)
	if len(snap.Arrivals) != 1 {
		t.Errorf("expected the same-day booking under arrivals, got %v", snap.Arrivals)
	}
	if len(snap.Departures) != 0 {
		t.Errorf("same-day booking must not also depart, got %v", snap.Departures)
	}
	if snap.OccupiedUnits != 1 {
		t.Errorf("same-day booking occupies its day, got %d", snap.OccupiedUnits)
	}
}

// =============================================================================
// CAPACITY
// =============================================================================

func TestSnapshot_FullHouse(t *testing.T) {
	cal := engine.NewOccupancyCalendar(4)
	day := date(2025, time.March, 20)
	ledger := make([]engine.Booking, 0, 4)
	for _, g := range []string{"An", "Binh", "Chi", "Dung"} {
		ledger = append(ledger, booking("bk-"+g, g, day, day.AddDays(1), 0, 0))
	}

	snap := cal.Snapshot(ledger, day)
	if snap.OccupiedUnits != 4 {
		t.Errorf("occupied: expected 4, got %d", snap.OccupiedUnits)
	}
	if snap.AvailableUnits != 0 {
		t.Errorf("available: expected 0, got %d", snap.AvailableUnits)
	}
}

func TestSnapshot_AvailableNeverNegative(t *testing.T) {
	// Overbooked day: five arrivals against four units. Available floors
	// at zero; the overflow is the overcrowding detector's business.
	cal := engine.NewOccupancyCalendar(4)
	day := date(2025, time.March, 20)
	ledger := make([]engine.Booking, 0, 5)
	for _, g := range []string{"An", "Binh", "Chi", "Dung", "Em"} {
		ledger = append(ledger, booking("bk-"+g, g, day, day.AddDays(1), 0, 0))
	}

	snap := cal.Snapshot(ledger, day)
	if snap.OccupiedUnits != 5 {
		t.Errorf("occupied reports the real count: expected 5, got %d", snap.OccupiedUnits)
	}
	if snap.AvailableUnits != 0 {
		t.Errorf("available must clamp at 0, got %d", snap.AvailableUnits)
	}
}

func TestSnapshot_BucketsSortedByGuestName(t *testing.T) {
	cal := engine.NewOccupancyCalendar(4)
	day := date(2025, time.March, 20)
	ledger := []engine.Booking{
		booking("bk-2", "Chi", day, day.AddDays(1), 0, 0),
		booking("bk-1", "An", day, day.AddDays(1), 0, 0),
	}

	snap := cal.Snapshot(ledger, day)
	if got := refIDs(snap.Arrivals); len(got) != 2 || got[0] != "bk-1" || got[1] != "bk-2" {
		t.Errorf("expected arrivals ordered by guest name, got %v", got)
	}
}

// =============================================================================
// RANGE
// =============================================================================

func TestRange_OneSnapshotPerDate(t *testing.T) {
	cal := engine.NewOccupancyCalendar(4)
	from := date(2025, time.January, 10)
	window := engine.NewDateRange(from, from.AddDays(2))
	b := booking("bk-1", "An", from, from.AddDays(2), 0, 0)

	snaps := cal.Range([]engine.Booking{b}, window)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, s := range snaps {
		if !s.Date.Equal(from.AddDays(i)) {
			t.Errorf("snapshot %d has date %s", i, s.Date)
		}
	}

	// Arrival on day 0, staying day 1, departing day 2.
	if len(snaps[0].Arrivals) != 1 || len(snaps[1].Staying) != 1 || len(snaps[2].Departures) != 1 {
		t.Errorf("stay did not progress through the buckets: %+v", snaps)
	}
}
