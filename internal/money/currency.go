// Package money holds the currency configuration and decimal helpers shared by
// the receipt parser, the share calculator and the RPC layer.
//
// There is no process-wide "current currency": every formatting or parsing call
// receives the Currency it should use.
package money

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes how amounts in one currency are written.
type Currency struct {
	// Code is the ISO 4217 code (e.g., "IDR", "USD").
	Code string

	// Symbol is the display symbol (e.g., "Rp", "$").
	Symbol string

	// DecimalSeparator separates the fractional digits ("," for IDR, "." for USD).
	DecimalSeparator string

	// ThousandSeparator groups integer digits ("." for IDR, "," for USD).
	ThousandSeparator string

	// FractionDigits is the number of digits shown after the decimal separator.
	FractionDigits int32

	// SymbolSpacing inserts a space between symbol and amount ("Rp 1.000").
	SymbolSpacing bool
}

var (
	IDR = Currency{Code: "IDR", Symbol: "Rp", DecimalSeparator: ",", ThousandSeparator: ".", FractionDigits: 0, SymbolSpacing: true}
	USD = Currency{Code: "USD", Symbol: "$", DecimalSeparator: ".", ThousandSeparator: ",", FractionDigits: 2}
	EUR = Currency{Code: "EUR", Symbol: "€", DecimalSeparator: ",", ThousandSeparator: ".", FractionDigits: 2}
	GBP = Currency{Code: "GBP", Symbol: "£", DecimalSeparator: ".", ThousandSeparator: ",", FractionDigits: 2}
	SGD = Currency{Code: "SGD", Symbol: "S$", DecimalSeparator: ".", ThousandSeparator: ",", FractionDigits: 2}
)

var currencies = map[string]Currency{
	IDR.Code: IDR,
	USD.Code: USD,
	EUR.Code: EUR,
	GBP.Code: GBP,
	SGD.Code: SGD,
}

// LookupCurrency returns the built-in currency for an ISO code (case-insensitive).
func LookupCurrency(code string) (Currency, error) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, fmt.Errorf("unsupported currency: %q", code)
	}
	return c, nil
}

// CurrencyCodes lists the built-in currency codes in alphabetical order.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Format renders an amount with the currency's symbol and separators,
// rounded half away from zero to FractionDigits.
func (c Currency) Format(amount decimal.Decimal) string {
	fixed := amount.Round(c.FractionDigits).StringFixed(c.FractionDigits)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart, c.ThousandSeparator)
	if fracPart != "" {
		out += c.DecimalSeparator + fracPart
	}

	if c.Symbol == "" {
		return sign + out
	}
	if c.SymbolSpacing {
		return sign + c.Symbol + " " + out
	}
	return sign + c.Symbol + out
}

// Parse reads an amount written in this currency's notation. The symbol and
// code are optional. Unlike ParseAmount, the separators are taken from the
// currency instead of being guessed.
func (c Currency) Parse(text string) (decimal.Decimal, error) {
	// Symbol and code are matched case-insensitively ("RP 1.000", "idr 5").
	s := strings.ToUpper(strings.TrimSpace(text))
	if c.Code != "" {
		s = strings.ReplaceAll(s, strings.ToUpper(c.Code), "")
	}
	if c.Symbol != "" {
		s = strings.ReplaceAll(s, strings.ToUpper(c.Symbol), "")
	}
	s = strings.Join(strings.Fields(s), "")
	if c.ThousandSeparator != "" {
		s = strings.ReplaceAll(s, c.ThousandSeparator, "")
	}
	if c.DecimalSeparator != "" && c.DecimalSeparator != "." {
		s = strings.ReplaceAll(s, c.DecimalSeparator, ".")
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("failed to parse %s amount %q: empty", c.Code, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s amount %q: %w", c.Code, text, err)
	}
	return d, nil
}

func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
