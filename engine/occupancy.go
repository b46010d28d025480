/*
occupancy.go - Arrival / staying / departure classification per date

PURPOSE:
  For one target date, place every booking into exactly one bucket and
  measure capacity usage. The precedence order exists because a booking
  counted twice was a real production defect: the union of the three
  buckets must contain each qualifying booking exactly once.

CLASSIFICATION (precedence order):
  1. Arrival    checkin == target
  2. Departure  checkout == target, unless already an arrival
                (same-day turnover counts as arrival only, never both)
  3. Staying    checkin < target < checkout

  occupied  = arrivals + staying (a departure freed its room overnight)
  available = max(0, capacity - occupied), never negative
*/
package engine

import "sort"

// OccupancyCalendar classifies bookings around target dates against a
// fixed room-unit capacity.
type OccupancyCalendar struct {
	capacity int
}

func NewOccupancyCalendar(capacity int) *OccupancyCalendar {
	return &OccupancyCalendar{capacity: capacity}
}

// Snapshot classifies every booking relative to one date. Input must be
// pre-filtered to computable bookings. Bucket ordering is deterministic:
// guest name, then booking id.
func (c *OccupancyCalendar) Snapshot(bookings []Booking, date Date) OccupancySnapshot {
	snap := OccupancySnapshot{Date: date}
	for _, b := range bookings {
		if !b.HasValidStay() {
			continue
		}
		ref := StayRef{BookingID: b.ID, GuestName: b.GuestName}
		switch {
		case b.CheckIn.Equal(date):
			snap.Arrivals = append(snap.Arrivals, ref)
		case b.CheckOut.Equal(date):
			snap.Departures = append(snap.Departures, ref)
		case b.CheckIn.Before(date) && b.CheckOut.After(date):
			snap.Staying = append(snap.Staying, ref)
		}
	}
	sortRefs(snap.Arrivals)
	sortRefs(snap.Staying)
	sortRefs(snap.Departures)

	snap.OccupiedUnits = len(snap.Arrivals) + len(snap.Staying)
	snap.AvailableUnits = c.capacity - snap.OccupiedUnits
	if snap.AvailableUnits < 0 {
		snap.AvailableUnits = 0
	}
	return snap
}

// Range produces one snapshot per window date, in order.
func (c *OccupancyCalendar) Range(bookings []Booking, window DateRange) []OccupancySnapshot {
	out := make([]OccupancySnapshot, 0, window.Days())
	for _, d := range window.Dates() {
		out = append(out, c.Snapshot(bookings, d))
	}
	return out
}

func sortRefs(refs []StayRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].GuestName != refs[j].GuestName {
			return refs[i].GuestName < refs[j].GuestName
		}
		return refs[i].BookingID < refs[j].BookingID
	})
}
