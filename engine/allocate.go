/*
allocate.go - Even nightly split of stay-total revenue

PURPOSE:
  A booking's room amount and commission are stay totals. The calendar
  wants per-day numbers, and a stay spanning N nights must contribute to
  every one of those N days - not just the arrival day, which is the
  classic bug this file exists to kill.

ALGORITHM:
  nights    = max(1, checkout - checkin)     degenerate stays clamp to 1
  per-night = stay total / nights            decimal division
  dates     = checkin .. checkin+nights-1    checkout day excluded:
                                             nobody sleeps there that night

GUARANTEE:
  Re-summing a booking's per-night shares over every date it touches
  reproduces the original totals (room and commission separately) within
  1e-6. Month and year boundaries need no special case; a zero room
  amount allocates zeroes without division errors.
*/
package engine

// RevenueAllocator distributes stay-total money across the nights of each
// stay. Stateless; input must be pre-filtered to computable bookings.
type RevenueAllocator struct{}

func NewRevenueAllocator() *RevenueAllocator { return &RevenueAllocator{} }

// Allocate produces one DailyRevenue row per window date, in order,
// zero-filled where nothing allocates. Nights falling outside the window
// are skipped; the booking's remaining nights still land on their dates.
func (a *RevenueAllocator) Allocate(bookings []Booking, window DateRange) []DailyRevenue {
	days := window.Days()
	rows := make([]DailyRevenue, days)
	for i := range rows {
		rows[i].Date = window.From.AddDays(i)
	}

	for _, b := range bookings {
		if !b.HasValidStay() {
			continue
		}
		nights := b.Nights()
		share := b.RoomAmount.DivInt(nights)
		shareCommission := b.Commission.DivInt(nights)
		shareNet := b.NetAmount().DivInt(nights)

		for i := 0; i < nights; i++ {
			idx := DaysBetween(window.From, b.CheckIn.AddDays(i))
			if idx < 0 || idx >= days {
				continue
			}
			row := &rows[idx]
			row.RevenueTotal = row.RevenueTotal.Add(share)
			row.CommissionTotal = row.CommissionTotal.Add(shareCommission)
			row.RevenueNet = row.RevenueNet.Add(shareNet)
			row.Contributions = append(row.Contributions, NightlyShare{
				BookingID:  b.ID,
				GuestName:  b.GuestName,
				Amount:     share,
				Commission: shareCommission,
			})
		}
	}
	return rows
}
