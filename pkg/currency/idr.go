// Package currency formats and parses Indonesian Rupiah amounts for
// dashboards, analytics and ticket confirmation mail.
package currency

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// FormatIDR renders a whole-Rupiah amount with Indonesian digit grouping and
// no fractional digits, e.g. 45231000 -> "Rp 45.231.000".
func FormatIDR(amount int64) string {
	return printer.Sprintf("Rp %v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// FormatIDRDecimal is FormatIDR for decimal amounts; the fractional part is
// rounded away (Rupiah amounts are whole in practice).
func FormatIDRDecimal(amount decimal.Decimal) string {
	return FormatIDR(amount.Round(0).IntPart())
}

// FormatIDRCompact renders large amounts with Indonesian scale suffixes:
// rb (ribu), jt (juta), M (miliar), T (triliun). E.g. 45231000 -> "Rp 45,2 jt".
func FormatIDRCompact(amount int64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000_000:
		return "Rp " + scaled(amount, 1_000_000_000_000) + " T"
	case abs >= 1_000_000_000:
		return "Rp " + scaled(amount, 1_000_000_000) + " M"
	case abs >= 1_000_000:
		return "Rp " + scaled(amount, 1_000_000) + " jt"
	case abs >= 1_000:
		return "Rp " + scaled(amount, 1_000) + " rb"
	default:
		return FormatIDR(amount)
	}
}

// scaled divides amount by unit and renders at most one fractional digit with
// the Indonesian decimal comma.
func scaled(amount, unit int64) string {
	d := decimal.NewFromInt(amount).Div(decimal.NewFromInt(unit)).Round(1)
	return strings.ReplaceAll(d.String(), ".", ",")
}

// ParseIDR strips every non-digit byte and parses the remainder as a base-10
// integer. Returns 0 when no digits are present or the value overflows int64.
// The digit-stripping cannot tell thousands separators from decimal
// separators; fractional Rupiah input is therefore not supported.
func ParseIDR(text string) int64 {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
