/*
notify.go - Arrival and departure reminders for today and tomorrow

High-commission bookings jump the queue: missing a channel guest costs
the house twice, once in the refund and once in the listing's ranking.
*/
package engine

import "sort"

// NotificationScheduler derives who arrives and who leaves within the
// horizon, in sending order.
type NotificationScheduler struct {
	threshold   Money
	horizonDays int
}

func NewNotificationScheduler(threshold Money, horizonDays int) *NotificationScheduler {
	if horizonDays <= 0 {
		horizonDays = DefaultNotificationHorizonDays
	}
	return &NotificationScheduler{threshold: threshold, horizonDays: horizonDays}
}

// Build produces the digest for [today, today+horizon]. A same-day
// zero-night booking notifies as an arrival only, mirroring occupancy
// precedence. Ordering within each list: priority first, then sooner,
// then bigger commission, then guest name - stable and deterministic.
func (s *NotificationScheduler) Build(bookings []Booking, today Date) NotificationDigest {
	var digest NotificationDigest
	horizon := DateRange{From: today, To: today.AddDays(s.horizonDays)}

	for _, b := range bookings {
		if !b.CheckIn.IsZero() && horizon.Contains(b.CheckIn) {
			digest.Arrivals = append(digest.Arrivals, s.notification(KindArrival, b, b.CheckIn, today))
		}
		sameDay := !b.CheckIn.IsZero() && b.CheckOut.Equal(b.CheckIn)
		if !b.CheckOut.IsZero() && !sameDay && horizon.Contains(b.CheckOut) {
			digest.Departures = append(digest.Departures, s.notification(KindDeparture, b, b.CheckOut, today))
		}
	}

	sortNotifications(digest.Arrivals)
	sortNotifications(digest.Departures)
	return digest
}

func (s *NotificationScheduler) notification(kind NotificationKind, b Booking, on Date, today Date) Notification {
	prio := PriorityNormal
	if b.Commission.GreaterThan(s.threshold) {
		prio = PriorityHigh
	}
	return Notification{
		Kind:       kind,
		BookingID:  b.ID,
		GuestName:  b.GuestName,
		Date:       on,
		DaysUntil:  DaysBetween(today, on),
		Priority:   prio,
		Commission: b.Commission,
	}
}

func sortNotifications(list []Notification) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Priority != b.Priority {
			return a.Priority == PriorityHigh
		}
		if a.DaysUntil != b.DaysUntil {
			return a.DaysUntil < b.DaysUntil
		}
		if !a.Commission.Equal(b.Commission) {
			return a.Commission.GreaterThan(b.Commission)
		}
		return a.GuestName < b.GuestName
	})
}
