/*
duplicate.go - Probable double entries of the same guest

Groups bookings by normalized guest name and flags adjacent check-ins
within a small day window. Double entries happen when the same booking
arrives once from the channel export and once from manual entry.
*/
package engine

import (
	"sort"
	"strings"
)

// DuplicateDetector flags bookings for one guest whose check-ins sit
// suspiciously close together.
type DuplicateDetector struct {
	windowDays int
}

func NewDuplicateDetector(windowDays int) *DuplicateDetector {
	if windowDays <= 0 {
		windowDays = DefaultDuplicateWindowDays
	}
	return &DuplicateDetector{windowDays: windowDays}
}

// GuestKey is the identity duplicates group on: lower-cased, runs of
// whitespace collapsed. "Tran  Van A " and "tran van a" are one guest.
func GuestKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Detect groups bookings by guest key, sorts each group by checkin, and
// flags adjacent pairs whose gap is within the window (gap == window
// still flags; window+1 does not). Adjacent-only is intentional: four
// bookings with gaps 1,10,1 report two groups, not three. Nameless
// records never group.
func (d *DuplicateDetector) Detect(bookings []Booking) []DuplicateGroup {
	byGuest := make(map[string][]Booking)
	for _, b := range bookings {
		if b.CheckIn.IsZero() {
			continue
		}
		key := GuestKey(b.GuestName)
		if key == "" {
			continue
		}
		byGuest[key] = append(byGuest[key], b)
	}

	var groups []DuplicateGroup
	for key, group := range byGuest {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if !group[i].CheckIn.Equal(group[j].CheckIn) {
				return group[i].CheckIn.Before(group[j].CheckIn)
			}
			return group[i].ID < group[j].ID
		})
		for i := 0; i+1 < len(group); i++ {
			first, second := group[i], group[i+1]
			gap := DaysBetween(first.CheckIn, second.CheckIn)
			if gap > d.windowDays {
				continue
			}
			groups = append(groups, DuplicateGroup{
				GuestKey:  key,
				GuestName: first.GuestName,
				First:     DuplicateRef{BookingID: first.ID, CheckIn: first.CheckIn},
				Second:    DuplicateRef{BookingID: second.ID, CheckIn: second.CheckIn},
				DayGap:    gap,
			})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].GuestKey != groups[j].GuestKey {
			return groups[i].GuestKey < groups[j].GuestKey
		}
		return groups[i].First.CheckIn.Before(groups[j].First.CheckIn)
	})
	return groups
}
