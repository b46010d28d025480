package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal-backed amount (never float arithmetic on revenue)
// =============================================================================

type Money struct {
	d decimal.Decimal
}

// Constructors
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{d: d} }
func MoneyFromInt(v int64) Money               { return Money{d: decimal.NewFromInt(v)} }
func MoneyFromFloat(v float64) Money           { return Money{d: decimal.NewFromFloat(v)} }
func ZeroMoney() Money                         { return Money{d: decimal.Zero} }

// MustParseMoney is for fixtures and seed data; it swallows parse errors
// and returns zero.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return ZeroMoney()
	}
	return m
}

// Arithmetic
func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }

// DivInt splits the amount into n even shares. Division keeps decimal's
// default 16 digits of precision, far inside the engine's 1e-6 tolerance
// for re-summing shares.
func (m Money) DivInt(n int) Money {
	if n <= 0 {
		return m
	}
	return Money{d: m.d.Div(decimal.NewFromInt(int64(n)))}
}

// Comparison
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) Float64() float64         { f, _ := m.d.Float64(); return f }
func (m Money) String() string           { return m.d.String() }

func (m Money) MarshalJSON() ([]byte, error) { return m.d.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.d = d
	return nil
}

// =============================================================================
// MONEY PARSING - The feed writes amounts as humans typed them
// =============================================================================

var (
	groupedDots   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	groupedCommas = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	numberRun     = regexp.MustCompile(`\d[\d.,]*`)
	currencyRuns  = regexp.MustCompile(`(?i)(vnd|₫|đ|\$)`)
)

// ParseMoney converts a raw money field into a Money value.
//
// Coercions, in order:
//   - "", "None", "N/A", "-" (any case)  -> 0
//   - currency tokens (VND, ₫, đ, $) and whitespace are stripped
//   - "300.000" / "300,000"              -> 300000 (grouping separators)
//   - "300000.50" / "300000,50"          -> 300000.5 (decimal separator)
//   - "1.234.567,89"                     -> 1234567.89 (rightmost wins)
//
// The sign is preserved: negative values parse fine, and it is the
// normalizer's job to reject them as data-entry bugs.
func ParseMoney(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "", "none", "n/a", "-":
		return ZeroMoney(), nil
	}

	negative := strings.HasPrefix(trimmed, "-")
	trimmed = strings.TrimPrefix(trimmed, "-")

	cleaned := stripCurrency(trimmed)
	for _, r := range cleaned {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return ZeroMoney(), fmt.Errorf("unparseable money %q", s)
		}
	}
	if cleaned == "" {
		return ZeroMoney(), fmt.Errorf("unparseable money %q", s)
	}

	d, err := decimal.NewFromString(resolveSeparators(cleaned))
	if err != nil {
		return ZeroMoney(), fmt.Errorf("unparseable money %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return Money{d: d}, nil
}

// ParseTaxiText extracts an amount from free text ("Taxi 150.000 đ don san
// bay"). Taxi charges arrive as prose in the legacy feed; anything that
// does not contain a usable number is simply zero, never an error.
func ParseTaxiText(s string) Money {
	run := numberRun.FindString(s)
	if run == "" {
		return ZeroMoney()
	}
	run = strings.Trim(run, ".,")
	d, err := decimal.NewFromString(resolveSeparators(run))
	if err != nil {
		return ZeroMoney()
	}
	return Money{d: d}
}

func stripCurrency(s string) string {
	return strings.Join(strings.Fields(currencyRuns.ReplaceAllString(s, "")), "")
}

// resolveSeparators rewrites a digit string with . and , into canonical
// decimal form. When both appear, the rightmost separator is the decimal
// point. A lone separator forming groups of three is grouping (the feed's
// locale writes 300.000 for three hundred thousand); otherwise it is the
// decimal point.
func resolveSeparators(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		if groupedCommas.MatchString(s) || strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		if groupedDots.MatchString(s) || strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	default:
		return s
	}
}
