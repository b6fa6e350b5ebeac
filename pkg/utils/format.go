// Package utils provides display formatting for dashboard figures.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// NumberStyle selects digit grouping for currency output.
type NumberStyle string

const (
	// StyleWestern groups digits in thousands: 1,234,567.89.
	StyleWestern NumberStyle = "western"
	// StyleIndian groups the last three digits, then pairs: 12,34,567.89.
	StyleIndian NumberStyle = "indian"
)

// Placeholder is rendered in place of values that cannot be shown (NaN).
const Placeholder = "—"

// FormatCurrency formats an amount with two decimals, the given symbol and
// digit grouping, e.g. "$1,250,000.00" or "-₹12,34,567.00".
func FormatCurrency(amount float64, symbol string, style NumberStyle) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}
	amount = math.Round(amount*100) / 100
	negative := amount < 0
	amount = math.Abs(amount)

	var formatted string
	if style == StyleIndian {
		formatted = formatIndian(amount)
	} else {
		formatted = humanize.FormatFloat("#,###.##", amount)
	}

	if negative {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// FormatCurrencyCompact formats an amount in K/M/B notation, e.g. "$1.25M".
func FormatCurrencyCompact(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Placeholder
	}
	prefix := symbol
	if amount < 0 {
		prefix = "-" + symbol
	}
	amount = math.Abs(amount)

	switch {
	case amount >= 1e9:
		return prefix + trimDecimals(amount/1e9) + "B"
	case amount >= 1e6:
		return prefix + trimDecimals(amount/1e6) + "M"
	case amount >= 1e3:
		return prefix + trimDecimals(amount/1e3) + "K"
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatPct formats a percent change with sign and one decimal, e.g. "+10.5%".
// NaN renders as the placeholder.
func FormatPct(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return Placeholder
	}
	pct = roundTo(pct, 1)
	if pct >= 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatShare formats a share of a whole with one decimal and no sign, e.g. "50.4%".
func FormatShare(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return Placeholder
	}
	return fmt.Sprintf("%.1f%%", roundTo(pct, 1))
}

// Arrow returns the trend glyph shown next to a percent change.
func Arrow(pct float64) string {
	switch {
	case math.IsNaN(pct):
		return ""
	case pct > 0:
		return "▲"
	case pct < 0:
		return "▼"
	default:
		return "■"
	}
}

// formatIndian formats with Indian grouping (last 3, then 2s).
func formatIndian(amount float64) string {
	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	frac := cents % 100

	s := fmt.Sprintf("%d", intPart)
	if len(s) <= 3 {
		return fmt.Sprintf("%s.%02d", s, frac)
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 0 {
		if len(remaining) > 2 {
			result = remaining[len(remaining)-2:] + "," + result
			remaining = remaining[:len(remaining)-2]
		} else {
			result = remaining + "," + result
			remaining = ""
		}
	}
	return fmt.Sprintf("%s.%02d", result, frac)
}

// trimDecimals formats with up to 2 decimals, removing trailing zeros.
func trimDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// roundTo rounds half away from zero at the given number of decimals, so a
// value like -0.04 displays as "0.0" rather than "-0.0".
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}
