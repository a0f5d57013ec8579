// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount. Set once at startup from
// config.
var CurrencySymbol = "₹"

// Blank is shown for absent values.
const Blank = "—"

// FormatMoney formats an amount with two decimals, comma grouping and the
// currency symbol. Negative amounts keep their sign ahead of the symbol.
// e.g., -5000 -> "-₹5,000.00"
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// Beyond int64; skip grouping.
		return sign + CurrencySymbol + fixed
	}
	return sign + CurrencySymbol + FormatNumber(n) + "." + frac
}

// FormatMoneyWhole formats an amount rounded to whole units.
// e.g., 85000.4 -> "₹85,000"
func FormatMoneyWhole(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + CurrencySymbol + FormatNumber(d.IntPart())
}

// FormatCompact formats an amount with K/M suffixes for chart axes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatOptionalMoney formats a possibly blank amount.
func FormatOptionalMoney(v *float64) string {
	if v == nil {
		return Blank
	}
	return FormatMoney(*v)
}

// FormatOptionalInt formats a possibly blank count.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return Blank
	}
	return strconv.Itoa(*v)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatRate formats an annual rate that is already in percent.
// e.g., 16 -> "16.00%"
func FormatRate(pct *float64) string {
	if pct == nil {
		return Blank
	}
	return fmt.Sprintf("%.2f%%", *pct)
}

// FormatDate formats a civil date, or the blank marker for a zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Blank
	}
	return t.Format("2006-01-02")
}

// FormatDelta formats an amount change with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

// YesNo renders a flag the way the ledger sheets do.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
