package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to two decimal places, ties away from zero.
// This is the only rounding applied to a participant's share.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percentage is a rate such as a tax or service-fee percentage (10 means 10%).
// It is deliberately not interchangeable with Amount.
type Percentage struct {
	value decimal.Decimal
}

// Percent builds a Percentage from a float (10.5 means 10.5%).
func Percent(p float64) Percentage {
	return Percentage{value: decimal.NewFromFloat(p)}
}

// PercentFromDecimal builds a Percentage from a decimal rate.
func PercentFromDecimal(d decimal.Decimal) Percentage {
	return Percentage{value: d}
}

// Decimal returns the nominal rate (10 for 10%).
func (p Percentage) Decimal() decimal.Decimal { return p.value }

// IsZero reports whether the rate is 0%.
func (p Percentage) IsZero() bool { return p.value.IsZero() }

// Of returns base × rate / 100. Shifting keeps the result exact.
func (p Percentage) Of(base decimal.Decimal) decimal.Decimal {
	return base.Mul(p.value).Shift(-2)
}

func (p Percentage) String() string { return p.value.String() + "%" }

// Amount is an absolute monetary value such as a tax charged in currency units.
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps a decimal as an absolute amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// AmountFromFloat wraps a float as an absolute amount.
func AmountFromFloat(f float64) Amount {
	return Amount{value: decimal.NewFromFloat(f)}
}

// Decimal returns the wrapped value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a Amount) String() string { return a.value.String() }

// ParseAmount normalises an amount as OCR engines print it, without knowing
// the currency. Everything except digits and '.'/',' is dropped. A separator
// followed by exactly three digits is read as a thousands separator
// ("45.000" is 45000, "1,234,567" is 1234567); otherwise the last separator
// is the decimal point ("12,50" is 12.5, "1.234,56" is 1234.56).
func ParseAmount(text string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), ".,")
	if s == "" {
		return decimal.Zero, false
	}

	last := strings.LastIndexAny(s, ".,")
	if last < 0 {
		return parseDigits(s)
	}

	frac := s[last+1:]
	if len(frac) == 3 {
		return parseDigits(stripSeparators(s))
	}
	return parseDigits(stripSeparators(s[:last]) + "." + frac)
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

func parseDigits(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
