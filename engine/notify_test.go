package engine_test

import (
	"testing"
	"time"

	"github.com/tidehouse/innledger/engine"
)

func newScheduler() *engine.NotificationScheduler {
	return engine.NewNotificationScheduler(money(50000), engine.DefaultNotificationHorizonDays)
}

// =============================================================================
// HORIZON
// =============================================================================

func TestBuild_TodayAndTomorrowOnly(t *testing.T) {
	// GIVEN: Arrivals yesterday, today, tomorrow and the day after
	// WHEN: Building the digest
	// THEN: Today and tomorrow make it in; yesterday and the day after do not

	today := date(2025, time.March, 15)
	mk := func(id string, offset int) engine.Booking {
		return booking(id, "Guest "+id, today.AddDays(offset), today.AddDays(offset+2), 100000, 0)
	}

	digest := newScheduler().Build([]engine.Booking{
		mk("past", -1), mk("today", 0), mk("tomorrow", 1), mk("later", 2),
	}, today)

	if len(digest.Arrivals) != 2 {
		t.Fatalf("expected 2 arrivals, got %d", len(digest.Arrivals))
	}
	if digest.Arrivals[0].BookingID != "today" || digest.Arrivals[1].BookingID != "tomorrow" {
		t.Errorf("expected [today tomorrow], got [%s %s]",
			digest.Arrivals[0].BookingID, digest.Arrivals[1].BookingID)
	}
	if digest.Arrivals[0].DaysUntil != 0 || digest.Arrivals[1].DaysUntil != 1 {
		t.Errorf("days-until: got %d and %d",
			digest.Arrivals[0].DaysUntil, digest.Arrivals[1].DaysUntil)
	}
}

func TestBuild_DeparturesInHorizon(t *testing.T) {
	today := date(2025, time.March, 15)
	leaving := booking("dep-1", "An", today.AddDays(-3), today, 100000, 0)
	leavingTomorrow := booking("dep-2", "Binh", today.AddDays(-2), today.AddDays(1), 100000, 0)
	leavingLater := booking("dep-3", "Chi", today, today.AddDays(3), 100000, 0)

	digest := newScheduler().Build([]engine.Booking{leaving, leavingTomorrow, leavingLater}, today)
	if len(digest.Departures) != 2 {
		t.Fatalf("expected 2 departures, got %d", len(digest.Departures))
	}
	if digest.Departures[0].Kind != engine.KindDeparture {
		t.Errorf("expected departure kind, got %q", digest.Departures[0].Kind)
	}
}

func TestBuild_SameDayBookingIsArrivalOnly(t *testing.T) {
	// A checkin==checkout booking would otherwise show up on both lists
	// for the same date, which reads like a contradiction on the digest.
	today := date(2025, time.March, 15)
	turnover := booking("bk-1", "An", today, today, 100000, 0)

	digest := newScheduler().Build([]engine.Booking{turnover}, today)
	if len(digest.Arrivals) != 1 {
		t.Errorf("expected the arrival, got %d", len(digest.Arrivals))
	}
	if len(digest.Departures) != 0 {
		t.Errorf("same-day booking must not also depart, got %v", digest.Departures)
	}
}

// =============================================================================
// PRIORITY
// =============================================================================

func TestBuild_CommissionThresholdIsStrict(t *testing.T) {
	// GIVEN: Commissions above, exactly at, and below the 50000 threshold
	// WHEN: Building
	// THEN: Only strictly-above goes high priority

	today := date(2025, time.March, 15)
	above := booking("b-above", "An", today, today.AddDays(1), 100000, 60000)
	at := booking("b-at", "Binh", today, today.AddDays(1), 100000, 50000)
	below := booking("b-below", "Chi", today, today.AddDays(1), 100000, 10000)

	digest := newScheduler().Build([]engine.Booking{at, below, above}, today)
	prio := map[string]engine.NotificationPriority{}
	for _, n := range digest.Arrivals {
		prio[n.BookingID] = n.Priority
	}

	if prio["b-above"] != engine.PriorityHigh {
		t.Errorf("above threshold must be high, got %q", prio["b-above"])
	}
	if prio["b-at"] != engine.PriorityNormal {
		t.Errorf("exactly at threshold stays normal, got %q", prio["b-at"])
	}
	if prio["b-below"] != engine.PriorityNormal {
		t.Errorf("below threshold stays normal, got %q", prio["b-below"])
	}
}

// =============================================================================
// ORDERING
// =============================================================================

func TestBuild_SortOrder(t *testing.T) {
	// Priority first, then sooner dates, then larger commissions, then
	// guest name as the final tiebreak.
	today := date(2025, time.March, 15)
	tomorrow := today.AddDays(1)

	normalToday := booking("n-today", "Binh", today, today.AddDays(2), 100000, 0)
	highTomorrow := booking("h-tomorrow", "An", tomorrow, tomorrow.AddDays(2), 100000, 80000)
	highTodaySmall := booking("h-small", "Chi", today, today.AddDays(2), 100000, 60000)
	highTodayBig := booking("h-big", "Dung", today, today.AddDays(2), 100000, 90000)

	digest := newScheduler().Build(
		[]engine.Booking{normalToday, highTomorrow, highTodaySmall, highTodayBig}, today)

	want := []string{"h-big", "h-small", "h-tomorrow", "n-today"}
	if len(digest.Arrivals) != len(want) {
		t.Fatalf("expected %d arrivals, got %d", len(want), len(digest.Arrivals))
	}
	for i, id := range want {
		if digest.Arrivals[i].BookingID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, digest.Arrivals[i].BookingID)
		}
	}
}

func TestBuild_GuestNameTiebreak(t *testing.T) {
	today := date(2025, time.March, 15)
	b1 := booking("b-1", "Chi", today, today.AddDays(1), 100000, 0)
	b2 := booking("b-2", "An", today, today.AddDays(1), 100000, 0)

	digest := newScheduler().Build([]engine.Booking{b1, b2}, today)
	if digest.Arrivals[0].GuestName != "An" || digest.Arrivals[1].GuestName != "Chi" {
		t.Errorf("expected alphabetical tiebreak, got %v", digest.Arrivals)
	}
}
