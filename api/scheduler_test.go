/*
scheduler_test.go - Unit tests for the digest scheduler

Tests for:
- Digest formatting (wording, priority marker, overbooked section)
- RunNow delivery through a captured notifier
- Empty digests being skipped
- Delivery failures staying non-fatal
*/
package api

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidehouse/innledger/engine"
)

// captureNotifier records every send so tests can assert on the text.
type captureNotifier struct {
	mu       sync.Mutex
	sent     []string
	attempts int
	err      error
}

func (c *captureNotifier) Send(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, text)
	return nil
}

func TestFormatDigest_Wording(t *testing.T) {
	// GIVEN: A digest with one of everything
	digest := engine.NotificationDigest{
		Arrivals: []engine.Notification{{
			Kind:      engine.KindArrival,
			BookingID: "bk-1",
			GuestName: "Tran Van A",
			Date:      engine.NewDate(2025, time.March, 10),
			DaysUntil: 0,
			Priority:  engine.PriorityHigh,
		}},
		Departures: []engine.Notification{{
			Kind:      engine.KindDeparture,
			BookingID: "bk-2",
			GuestName: "Le Thi B",
			Date:      engine.NewDate(2025, time.March, 11),
			DaysUntil: 1,
			Priority:  engine.PriorityNormal,
		}},
	}
	crowded := []engine.OvercrowdedDay{{
		Date:       engine.NewDate(2025, time.March, 12),
		GuestCount: 5,
		Capacity:   4,
		Urgency:    engine.UrgencyUrgent,
	}}

	// WHEN: Formatting
	got := formatDigest(digest, crowded)

	// THEN: Exact text, today/tomorrow wording, priority marker
	want := "Arrivals:\n" +
		"- Tran Van A, 2025-03-10 (today) [priority]\n" +
		"Departures:\n" +
		"- Le Thi B, 2025-03-11 (tomorrow)\n" +
		"Overbooked days:\n" +
		"- 2025-03-12: 5 booked for 4 units (urgent)"
	if got != want {
		t.Errorf("Digest text mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestDigestScheduler_RunNowSendsTheDigest(t *testing.T) {
	// GIVEN: An arrival today on the pinned clock
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "60000")

	capture := &captureNotifier{}
	ds := NewDigestScheduler(ledger, h.Engine, capture)

	// WHEN: Triggering a run
	ds.RunNow()

	// THEN: One message went out carrying the arrival
	if len(capture.sent) != 1 {
		t.Fatalf("Expected 1 digest, got %d", len(capture.sent))
	}
	text := capture.sent[0]
	if !strings.Contains(text, "Arrivals:") {
		t.Errorf("Expected an arrivals section, got:\n%s", text)
	}
	if !strings.Contains(text, "Tran Van A") {
		t.Errorf("Expected the guest in the digest, got:\n%s", text)
	}
	if !strings.Contains(text, "[priority]") {
		t.Errorf("Expected the priority marker for a 60000 commission, got:\n%s", text)
	}
}

func TestDigestScheduler_SkipsEmptyDigest(t *testing.T) {
	// GIVEN: An empty ledger
	h, ledger := newTestHandler(t)

	capture := &captureNotifier{}
	ds := NewDigestScheduler(ledger, h.Engine, capture)

	// WHEN: Triggering a run
	ds.RunNow()

	// THEN: Nothing went out
	if capture.attempts != 0 {
		t.Errorf("Expected no sends for an empty digest, got %d", capture.attempts)
	}
}

func TestDigestScheduler_OvercrowdingAloneTriggersASend(t *testing.T) {
	// GIVEN: No arrivals today, but a day booked beyond capacity ahead
	h, ledger := newTestHandler(t)
	for _, id := range []string{"bk-1", "bk-2", "bk-3", "bk-4", "bk-5"} {
		seedBooking(t, ledger, id, "Guest "+id, "2025-03-12", "2025-03-13", "100000", "0")
	}

	capture := &captureNotifier{}
	ds := NewDigestScheduler(ledger, h.Engine, capture)

	// WHEN: Triggering a run
	ds.RunNow()

	// THEN: The overbooked day goes out on its own
	if len(capture.sent) != 1 {
		t.Fatalf("Expected 1 digest, got %d", len(capture.sent))
	}
	if !strings.Contains(capture.sent[0], "Overbooked days:") {
		t.Errorf("Expected an overbooked section, got:\n%s", capture.sent[0])
	}
	if !strings.Contains(capture.sent[0], "5 booked for 4 units") {
		t.Errorf("Expected the crowding counts, got:\n%s", capture.sent[0])
	}
}

func TestDigestScheduler_DeliveryFailureIsNotFatal(t *testing.T) {
	// GIVEN: A notifier that always fails
	h, ledger := newTestHandler(t)
	seedBooking(t, ledger, "bk-1", "Tran Van A", "2025-03-10", "2025-03-12", "300000", "0")

	capture := &captureNotifier{err: errors.New("chat unreachable")}
	ds := NewDigestScheduler(ledger, h.Engine, capture)

	// WHEN: Triggering a run
	ds.RunNow()

	// THEN: The failure was swallowed after one attempt
	if capture.attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", capture.attempts)
	}
	if len(capture.sent) != 0 {
		t.Errorf("Expected no delivered digests, got %d", len(capture.sent))
	}
}
