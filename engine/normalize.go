/*
normalize.go - Raw record coercion into canonical bookings

PURPOSE:
  Every booking enters the system through here exactly once. Spreadsheet
  exports, scraped tables and hand-typed forms deliver strings with locale
  formatting, blanks, "None"s and typos; downstream components only ever
  see the typed Booking that comes out.

RULES:
  Dates      ISO or day-first numeric. Unparseable or missing -> record
             flagged Invalid: kept for listing, out of computations.
  Money      "None"/blank/"N/A" -> 0. Negative -> flagged Invalid (a
             data-entry bug, never silently clamped; the offending value
             is kept visible on the record).
  Taxi       Free text. Numeric part extracted into TaxiAmount; garbage
             parses to zero without a flag.
  Collector  Trimmed verbatim, never case-folded: allow-list matching is
             exact so fat-fingered names surface as uncollected.
  Stay       Checkout on or before checkin is flagged but stays
             computable; the allocator clamps such stays to one night.

A batch never aborts. Per-record errors aggregate into a RunReport and
the caller decides what "N records flagged" should look like.
*/
package engine

import "strings"

// Normalizer coerces raw feed records into canonical bookings. It is
// stateless; one instance serves any number of runs.
type Normalizer struct{}

func NewNormalizer() *Normalizer { return &Normalizer{} }

// NormalizeResult is the canonical batch plus everything that went wrong
// while building it. Bookings preserves input order and length: flagged
// records are present with Invalid set, not dropped.
type NormalizeResult struct {
	Bookings []Booking
	Report   *RunReport
}

// Flagged counts the bookings that carry the Invalid mark.
func (r NormalizeResult) Flagged() int {
	n := 0
	for _, b := range r.Bookings {
		if b.Invalid {
			n++
		}
	}
	return n
}

// Computable returns the subset that participates in derived
// computations. Callers invoking components directly must pre-filter
// through this (the Engine façade does it for them).
func (r NormalizeResult) Computable() []Booking {
	out := make([]Booking, 0, len(r.Bookings))
	for _, b := range r.Bookings {
		if b.Computable() {
			out = append(out, b)
		}
	}
	return out
}

// Normalize coerces a whole batch.
func (n *Normalizer) Normalize(records []RawBooking) NormalizeResult {
	result := NormalizeResult{
		Bookings: make([]Booking, 0, len(records)),
		Report:   &RunReport{},
	}
	for i, raw := range records {
		b, errs := n.NormalizeRecord(raw, i)
		for _, e := range errs {
			result.Report.Add(e)
		}
		result.Bookings = append(result.Bookings, b)
	}
	return result
}

// NormalizeRecord coerces a single record. The returned errors are the
// record's flags; when any of them is hard (bad date, bad or negative
// money) the booking comes back with Invalid set.
func (n *Normalizer) NormalizeRecord(raw RawBooking, index int) (Booking, []*ValidationError) {
	var errs []*ValidationError
	b := Booking{
		ID:        strings.TrimSpace(raw.ID),
		GuestName: strings.TrimSpace(raw.GuestName),
		TaxiRaw:   strings.TrimSpace(raw.Taxi),
		Collector: strings.TrimSpace(raw.Collector),
		Status:    ParseStatus(raw.Status),
		Source:    strings.TrimSpace(raw.Source),
		Notes:     strings.TrimSpace(raw.Notes),
	}

	b.CheckIn = n.coerceDate("checkin_date", raw.CheckIn, index, &b, &errs)
	b.CheckOut = n.coerceDate("checkout_date", raw.CheckOut, index, &b, &errs)
	if b.HasValidStay() && !b.CheckOut.After(b.CheckIn) {
		// Tolerated, not Invalid: the allocator clamps this to one night
		// so the booking stays visible in reports. Flag it anyway.
		errs = append(errs, &ValidationError{
			Index: index, BookingID: b.ID,
			Field: "checkout_date", Value: raw.CheckOut,
			Reason: "not after checkin",
		})
	}

	b.RoomAmount = n.coerceMoney("room_amount", raw.RoomAmount, index, &b, &errs)
	b.Commission = n.coerceMoney("commission", raw.Commission, index, &b, &errs)
	b.CollectedAmount = n.coerceMoney("collected_amount", raw.CollectedAmount, index, &b, &errs)
	b.TaxiAmount = ParseTaxiText(raw.Taxi)

	return b, errs
}

func (n *Normalizer) coerceDate(field, value string, index int, b *Booking, errs *[]*ValidationError) Date {
	d, err := ParseDate(value)
	if err != nil {
		b.Invalid = true
		*errs = append(*errs, &ValidationError{
			Index: index, BookingID: b.ID,
			Field: field, Value: value, Reason: err.Error(),
		})
		return Date{}
	}
	return d
}

func (n *Normalizer) coerceMoney(field, value string, index int, b *Booking, errs *[]*ValidationError) Money {
	m, err := ParseMoney(value)
	if err != nil {
		b.Invalid = true
		*errs = append(*errs, &ValidationError{
			Index: index, BookingID: b.ID,
			Field: field, Value: value, Reason: "unparseable amount",
		})
		return ZeroMoney()
	}
	if m.IsNegative() {
		b.Invalid = true
		*errs = append(*errs, &ValidationError{
			Index: index, BookingID: b.ID,
			Field: field, Value: value, Reason: "negative amount",
		})
	}
	return m
}
