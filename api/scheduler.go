/*
scheduler.go - Automated daily digest scheduler

PURPOSE:
  Periodically builds the upcoming-stays digest plus the overcrowding
  alerts and pushes them through a notifier, so the owner gets the day's
  arrivals and departures without opening the dashboard.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Each run works from a fresh ledger snapshot
  - Empty digests are skipped, not sent
  - Delivery failures are logged and counted, never fatal

CONFIGURATION:
  - Interval: How often to send (default: 24 hours)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewDigestScheduler(ledger, engine, notifier)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - engine/notify.go: Digest contents and ordering
  - notifier/: Delivery channels
*/
package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tidehouse/innledger/engine"
	"github.com/tidehouse/innledger/notifier"
)

// DigestScheduler sends the daily arrivals/departures digest.
type DigestScheduler struct {
	Ledger   *engine.Ledger
	Engine   *engine.Engine
	Notifier notifier.Notifier
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDigestScheduler creates a new scheduler.
func NewDigestScheduler(ledger *engine.Ledger, eng *engine.Engine, n notifier.Notifier) *DigestScheduler {
	return &DigestScheduler{
		Ledger:   ledger,
		Engine:   eng,
		Notifier: n,
		Interval: 24 * time.Hour,
		Enabled:  true,
		stop:     make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DigestScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.Interval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started with digest interval: %v", ds.Interval)
}

// Stop stops the scheduler.
func (ds *DigestScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DigestScheduler) run() {
	defer ds.wg.Done()

	// Send immediately on start
	ds.checkAndSend()

	for {
		select {
		case <-ds.ticker.C:
			ds.checkAndSend()
		case <-ds.stop:
			return
		}
	}
}

func (ds *DigestScheduler) checkAndSend() {
	ctx := context.Background()

	ledger, err := ds.Ledger.Snapshot(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error loading ledger: %v", err)
		digestRuns.WithLabelValues(outcomeFailed).Inc()
		return
	}

	digest := ds.Engine.Notifications(ledger)
	crowded := ds.Engine.Overcrowding(ledger)

	if len(digest.Arrivals) == 0 && len(digest.Departures) == 0 && len(crowded) == 0 {
		log.Println("[Scheduler] Nothing upcoming, digest skipped")
		digestRuns.WithLabelValues(outcomeEmpty).Inc()
		return
	}

	text := formatDigest(digest, crowded)
	if err := ds.Notifier.Send(ctx, text); err != nil {
		log.Printf("[Scheduler] Error sending digest: %v", err)
		digestRuns.WithLabelValues(outcomeFailed).Inc()
		return
	}

	log.Printf("[Scheduler] Digest sent: %d arrivals, %d departures, %d overbooked days",
		len(digest.Arrivals), len(digest.Departures), len(crowded))
	digestRuns.WithLabelValues(outcomeSent).Inc()
}

// RunNow triggers an immediate digest (for testing/admin).
func (ds *DigestScheduler) RunNow() {
	ds.checkAndSend()
}

// GetNextRunTime returns when the next scheduled digest will occur.
func (ds *DigestScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ds.Interval)
}

// formatDigest renders the digest as the plain text that goes out over
// the notifier. Telegram shows it verbatim, so no markup.
func formatDigest(d engine.NotificationDigest, crowded []engine.OvercrowdedDay) string {
	var b strings.Builder

	if len(d.Arrivals) > 0 {
		b.WriteString("Arrivals:\n")
		for _, n := range d.Arrivals {
			writeDigestLine(&b, n)
		}
	}
	if len(d.Departures) > 0 {
		b.WriteString("Departures:\n")
		for _, n := range d.Departures {
			writeDigestLine(&b, n)
		}
	}
	if len(crowded) > 0 {
		b.WriteString("Overbooked days:\n")
		for _, day := range crowded {
			fmt.Fprintf(&b, "- %s: %d booked for %d units (%s)\n",
				day.Date, day.GuestCount, day.Capacity, day.Urgency)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeDigestLine(b *strings.Builder, n engine.Notification) {
	when := "today"
	if n.DaysUntil == 1 {
		when = "tomorrow"
	}
	fmt.Fprintf(b, "- %s, %s (%s)", n.GuestName, n.Date, when)
	if n.Priority == engine.PriorityHigh {
		b.WriteString(" [priority]")
	}
	b.WriteString("\n")
}
