/*
engine.go - One validated configuration in front of every component

The Engine is a thin façade: it validates Config once, owns the clock,
and pre-filters ledger snapshots so the components can trust their
input. It never stores bookings - the snapshot is a parameter on every
call and reports are derived fresh each time.
*/
package engine

import "time"

type Engine struct {
	cfg Config
	now func() time.Time

	normalizer *Normalizer
	allocator  *RevenueAllocator
	calendar   *OccupancyCalendar
	reconciler *CollectionReconciler
	duplicates *DuplicateDetector
	overcrowd  *OvercrowdingDetector
	notify     *NotificationScheduler
}

// NewEngine validates the configuration and builds the component set.
// Misconfiguration is fatal here, before any computation runs; per-record
// data problems are a RunReport concern and never reach this path.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:        cfg,
		now:        time.Now,
		normalizer: NewNormalizer(),
		allocator:  NewRevenueAllocator(),
		calendar:   NewOccupancyCalendar(cfg.Capacity),
		reconciler: NewCollectionReconciler(cfg),
		duplicates: NewDuplicateDetector(cfg.DuplicateWindowDays),
		overcrowd:  NewOvercrowdingDetector(cfg.Capacity, cfg.OvercrowdingWindowDays),
		notify:     NewNotificationScheduler(cfg.CommissionPriorityThreshold, cfg.NotificationHorizonDays),
	}, nil
}

// WithClock pins the engine's notion of now. Tests and replay tooling
// use it; production leaves the default.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) today() Date { return DateOf(e.now()) }

// filterComputable drops flagged, cancelled/deleted, and dateless records
// once so components downstream can trust what they iterate.
func filterComputable(ledger []Booking) []Booking {
	out := make([]Booking, 0, len(ledger))
	for _, b := range ledger {
		if b.Computable() {
			out = append(out, b)
		}
	}
	return out
}

// Normalize coerces a raw batch; see normalize.go for the rules.
func (e *Engine) Normalize(records []RawBooking) NormalizeResult {
	return e.normalizer.Normalize(records)
}

// DailyFigures merges occupancy and nightly revenue for every date in the
// window - the calendar view's rows.
func (e *Engine) DailyFigures(ledger []Booking, window DateRange) []DailyFigure {
	active := filterComputable(ledger)
	snaps := e.calendar.Range(active, window)
	revs := e.allocator.Allocate(active, window)

	figures := make([]DailyFigure, len(snaps))
	for i := range snaps {
		figures[i] = DailyFigure{
			Date:            snaps[i].Date,
			OccupiedUnits:   snaps[i].OccupiedUnits,
			AvailableUnits:  snaps[i].AvailableUnits,
			Arrivals:        len(snaps[i].Arrivals),
			Departures:      len(snaps[i].Departures),
			Staying:         len(snaps[i].Staying),
			RevenueTotal:    revs[i].RevenueTotal,
			RevenueNet:      revs[i].RevenueNet,
			CommissionTotal: revs[i].CommissionTotal,
			Contributions:   revs[i].Contributions,
		}
	}
	return figures
}

// Occupancy classifies a single date.
func (e *Engine) Occupancy(ledger []Booking, date Date) OccupancySnapshot {
	return e.calendar.Snapshot(filterComputable(ledger), date)
}

// MonthlyCollections aggregates reconciliation rows by checkin month.
func (e *Engine) MonthlyCollections(ledger []Booking) []CollectionSummary {
	return e.reconciler.MonthlySummaries(filterComputable(ledger), e.today())
}

// WeeklyCollections aggregates the rolling last-N ISO weeks; weeks <= 0
// means the default 4.
func (e *Engine) WeeklyCollections(ledger []Booking, weeks int) []CollectionSummary {
	return e.reconciler.WeeklySummaries(filterComputable(ledger), e.today(), weeks)
}

// OverdueCollections lists arrived-but-uncollected bookings with totals.
func (e *Engine) OverdueCollections(ledger []Booking) OverdueReport {
	return e.reconciler.Overdue(filterComputable(ledger), e.today())
}

// Duplicates flags probable double entries.
func (e *Engine) Duplicates(ledger []Booking) []DuplicateGroup {
	return e.duplicates.Detect(filterComputable(ledger))
}

// Overcrowding flags dates whose arrivals exceed capacity.
func (e *Engine) Overcrowding(ledger []Booking) []OvercrowdedDay {
	return e.overcrowd.Scan(filterComputable(ledger), e.today())
}

// Notifications builds the arrival/departure digest for the horizon.
func (e *Engine) Notifications(ledger []Booking) NotificationDigest {
	return e.notify.Build(filterComputable(ledger), e.today())
}
