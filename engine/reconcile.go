/*
reconcile.go - Collected vs. owed, by allow-listed collector

PURPOSE:
  Money only counts as collected when an authorized collector signed for
  it. An empty collector, a typo, the wrong case, or a third-party name
  all mean the amount surfaces for manual review - a fully paid booking
  recorded by the wrong hands is still uncollected here, deliberately.

RULES:
  - Collected: collector is an exact allow-list member, nothing else
  - Future check-ins sit outside collection statistics entirely
  - Periods bucket by checkin month ("2025-02") or by ISO week for the
    rolling last-N-weeks view ("2025-W06")
  - Overdue: uncollected and checkin <= today; the outstanding amount
    includes the taxi charge parsed out of the feed's free text
*/
package engine

import "sort"

// CollectionReconciler partitions and aggregates bookings by collection
// state. Input must be pre-filtered to computable bookings.
type CollectionReconciler struct {
	cfg Config
}

func NewCollectionReconciler(cfg Config) *CollectionReconciler {
	return &CollectionReconciler{cfg: cfg.withDefaults()}
}

// Collected reports whether one booking counts as collected. Only the
// collector name decides; the recorded amount plays no part.
func (r *CollectionReconciler) Collected(b Booking) bool {
	return r.cfg.IsCollector(b.Collector)
}

// Partition splits bookings into collected and not-yet-collected,
// excluding those whose guests have not checked in by today: a booking
// that has not happened cannot be overdue or collected.
func (r *CollectionReconciler) Partition(bookings []Booking, today Date) (collected, uncollected []Booking) {
	for _, b := range bookings {
		if b.CheckIn.After(today) {
			continue
		}
		if r.Collected(b) {
			collected = append(collected, b)
		} else {
			uncollected = append(uncollected, b)
		}
	}
	return collected, uncollected
}

// MonthlySummaries aggregates by calendar month of checkin: one row per
// collector who collected that month, plus one uncollected row. Sorted by
// period, then bucket, uncollected last within its period.
func (r *CollectionReconciler) MonthlySummaries(bookings []Booking, today Date) []CollectionSummary {
	return r.summarize(bookings, today,
		func(b Booking) string { return b.CheckIn.MonthKey() }, nil)
}

// WeeklySummaries aggregates the rolling `weeks` ISO weeks ending with
// today's week; weeks <= 0 means the default 4.
func (r *CollectionReconciler) WeeklySummaries(bookings []Booking, today Date, weeks int) []CollectionSummary {
	if weeks <= 0 {
		weeks = 4
	}
	allowed := make(map[string]bool, weeks)
	for i := 0; i < weeks; i++ {
		allowed[today.AddDays(-7*i).ISOWeekKey()] = true
	}
	return r.summarize(bookings, today,
		func(b Booking) string { return b.CheckIn.ISOWeekKey() }, allowed)
}

func (r *CollectionReconciler) summarize(bookings []Booking, today Date, periodOf func(Booking) string, allowedPeriods map[string]bool) []CollectionSummary {
	type key struct{ period, bucket string }
	rows := make(map[key]*CollectionSummary)

	add := func(period, bucket string, b Booking) {
		k := key{period, bucket}
		row, ok := rows[k]
		if !ok {
			row = &CollectionSummary{Period: period, Bucket: bucket}
			rows[k] = row
		}
		row.AmountCollected = row.AmountCollected.Add(b.RoomAmount)
		row.BookingCount++
		row.CommissionTotal = row.CommissionTotal.Add(b.Commission)
	}

	collected, uncollected := r.Partition(bookings, today)
	for _, b := range collected {
		period := periodOf(b)
		if allowedPeriods != nil && !allowedPeriods[period] {
			continue
		}
		add(period, b.Collector, b)
	}
	for _, b := range uncollected {
		period := periodOf(b)
		if allowedPeriods != nil && !allowedPeriods[period] {
			continue
		}
		add(period, UncollectedBucket, b)
	}

	out := make([]CollectionSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		iu, ju := out[i].Bucket == UncollectedBucket, out[j].Bucket == UncollectedBucket
		if iu != ju {
			return ju
		}
		return out[i].Bucket < out[j].Bucket
	})
	return out
}

// Overdue lists uncollected bookings whose guests have already arrived,
// oldest check-in first. OutstandingAmount adds the parsed taxi charge;
// unparseable taxi text already became zero at normalization, so a messy
// taxi cell never breaks the total.
func (r *CollectionReconciler) Overdue(bookings []Booking, today Date) OverdueReport {
	var report OverdueReport
	_, uncollected := r.Partition(bookings, today)
	for _, b := range uncollected {
		outstanding := b.RoomAmount.Add(b.TaxiAmount)
		report.Entries = append(report.Entries, OverdueEntry{
			BookingID:         b.ID,
			GuestName:         b.GuestName,
			CheckIn:           b.CheckIn,
			Collector:         b.Collector,
			RoomAmount:        b.RoomAmount,
			TaxiAmount:        b.TaxiAmount,
			OutstandingAmount: outstanding,
		})
		report.Total = report.Total.Add(outstanding)
	}
	sort.Slice(report.Entries, func(i, j int) bool {
		if !report.Entries[i].CheckIn.Equal(report.Entries[j].CheckIn) {
			return report.Entries[i].CheckIn.Before(report.Entries[j].CheckIn)
		}
		return report.Entries[i].BookingID < report.Entries[j].BookingID
	})
	return report
}
