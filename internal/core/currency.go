// Package core defines the savings tracker domain model and the currency
// helpers its consumers use to round-trip user-entered amounts.
//
// Amounts are plain decimal values in a single locale (naira); there is
// no minor-unit arithmetic and no currency conversion.
package core

import (
	"strconv"
	"strings"
)

// FormatAmount renders an amount for display with the naira glyph and
// comma-grouped thousands, e.g. 1250000 -> "₦1,250,000". Fractional
// amounts keep up to two decimal places with trailing zeros trimmed.
func FormatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart = strings.TrimRight(fracPart, "0")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₦")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// ParseAmount parses free-text input back into an amount, tolerating the
// currency glyph, comma separators and whitespace. Unparseable input
// yields 0 rather than an error; callers treat 0 as "no amount".
func ParseAmount(value string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '₦' || r == ',':
			return -1
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return -1
		default:
			return r
		}
	}, value)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
