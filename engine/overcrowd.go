/*
overcrowd.go - Dates where arrivals alone exceed capacity

Arrival count, not total occupancy: the failure mode this catches is more
guests showing up at the front desk on one day than the house has rooms,
usually the aftermath of a double entry or an overbooked channel.
*/
package engine

import "sort"

// OvercrowdingDetector scans a window around today for dates with more
// arrivals than room-units.
type OvercrowdingDetector struct {
	capacity   int
	windowDays int
}

func NewOvercrowdingDetector(capacity, windowDays int) *OvercrowdingDetector {
	if windowDays <= 0 {
		windowDays = DefaultOvercrowdingWindowDays
	}
	return &OvercrowdingDetector{capacity: capacity, windowDays: windowDays}
}

// Scan flags every date in [today-window, today+window] whose arrival
// count exceeds capacity. A date exactly at capacity is fine. Output is
// ordered by date; guests within a day by name, then booking id.
func (d *OvercrowdingDetector) Scan(bookings []Booking, today Date) []OvercrowdedDay {
	window := WindowAround(today, d.windowDays)

	type dayAgg struct {
		date     Date
		bookings []Booking
	}
	byDate := make(map[string]*dayAgg)
	for _, b := range bookings {
		if b.CheckIn.IsZero() || !window.Contains(b.CheckIn) {
			continue
		}
		k := b.CheckIn.String()
		agg, ok := byDate[k]
		if !ok {
			agg = &dayAgg{date: b.CheckIn}
			byDate[k] = agg
		}
		agg.bookings = append(agg.bookings, b)
	}

	var days []OvercrowdedDay
	for _, agg := range byDate {
		if len(agg.bookings) <= d.capacity {
			continue
		}
		sort.Slice(agg.bookings, func(i, j int) bool {
			if agg.bookings[i].GuestName != agg.bookings[j].GuestName {
				return agg.bookings[i].GuestName < agg.bookings[j].GuestName
			}
			return agg.bookings[i].ID < agg.bookings[j].ID
		})

		day := OvercrowdedDay{
			Date:       agg.date,
			GuestCount: len(agg.bookings),
			Capacity:   d.capacity,
			DaysUntil:  DaysBetween(today, agg.date),
		}
		for _, b := range agg.bookings {
			day.GuestNames = append(day.GuestNames, b.GuestName)
			day.BookingIDs = append(day.BookingIDs, b.ID)
			day.TotalAmount = day.TotalAmount.Add(b.RoomAmount)
		}
		day.Urgency = urgencyFor(day.DaysUntil)
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

func urgencyFor(daysUntil int) Urgency {
	switch {
	case daysUntil < 0:
		return UrgencyPast
	case daysUntil <= 3:
		return UrgencyUrgent
	case daysUntil <= 7:
		return UrgencyWarning
	default:
		return UrgencyInfo
	}
}
