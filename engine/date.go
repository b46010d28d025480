package engine

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (stays never care about clocks)
// =============================================================================

type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

func Today() Date { return DateOf(time.Now()) }

// dateLayouts are tried in order. Slashed and dotted numeric forms read
// day-first: the booking feed writes Vietnamese-locale dates, where
// 05/01/2025 is January 5th.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
}

// ParseDate converts a raw date string into a Date. Accepts ISO dates,
// day-first numeric variants, and full RFC3339 timestamps (time part
// discarded). Empty or unrecognizable input is an error; callers decide
// whether that invalidates the record or merely flags it.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

// MonthKey returns the calendar-month bucket key, e.g. "2025-02".
func (d Date) MonthKey() string { return d.t.Format("2006-01") }

// ISOWeekKey returns the ISO-week bucket key, e.g. "2025-W06".
func (d Date) ISOWeekKey() string {
	year, week := d.t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// JSON round-trips as "YYYY-MM-DD"; a zero Date marshals as null so
// records with unparseable dates stay honest in listings.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed whole-day distance from one date to another.
func DaysBetween(from, to Date) int { return int(to.t.Sub(from.t).Hours() / 24) }

// =============================================================================
// DATE RANGE - Inclusive [From, To] window for calendar and report queries
// =============================================================================

// DateRange is the window a report is computed over. Both ends are
// inclusive. Stay intervals are a different thing: a stay occupies
// [checkin, checkout) and the components handle that half-open edge
// themselves.
type DateRange struct {
	From Date
	To   Date
}

func NewDateRange(from, to Date) DateRange { return DateRange{From: from, To: to} }

// WindowAround returns the range [center-days, center+days].
func WindowAround(center Date, days int) DateRange {
	return DateRange{From: center.AddDays(-days), To: center.AddDays(days)}
}

// Contains returns true if the date is within the range [From, To].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.From) && d.BeforeOrEqual(r.To)
}

// Days returns the number of dates in the range.
func (r DateRange) Days() int {
	if r.To.Before(r.From) {
		return 0
	}
	return DaysBetween(r.From, r.To) + 1
}

// Dates returns every date in the range in order.
func (r DateRange) Dates() []Date {
	var dates []Date
	current := r.From
	for current.BeforeOrEqual(r.To) {
		dates = append(dates, current)
		current = current.AddDays(1)
	}
	return dates
}

func (r DateRange) String() string {
	return "[" + r.From.String() + ", " + r.To.String() + "]"
}
