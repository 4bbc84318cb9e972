// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/theirongolddev/subtrack/internal/model"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money formats amounts in one currency for one locale.
type Money struct {
	Code    string
	scale   int // fraction digits
	printer *message.Printer
	symbol  string
}

// NewMoney builds a formatter. Unknown currency codes print the code as
// the symbol; an unparseable locale falls back to en-US.
func NewMoney(code, locale string) Money {
	code = strings.ToUpper(strings.TrimSpace(code))
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)

	m := Money{Code: code, scale: 2, printer: p}
	unit, err := currency.ParseISO(code)
	if err != nil {
		m.symbol = code
		return m
	}
	m.scale, _ = currency.Standard.Rounding(unit)
	m.symbol = p.Sprint(currency.NarrowSymbol(unit))
	return m
}

// prefixed reports whether the symbol goes before the number. x/text does
// not expose CLDR symbol placement, so this is a fixed list.
func (m Money) prefixed() bool {
	switch m.Code {
	case "USD", "GBP", "JPY", "CAD", "AUD", "MXN", "HKD", "SGD", "NZD", "ZAR", "INR":
		return true
	}
	return false
}

// Format renders amount with the currency's standard fraction digits and
// its symbol.
func (m Money) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	n := m.printer.Sprint(number.Decimal(amount, number.MinFractionDigits(m.scale), number.MaxFractionDigits(m.scale)))
	if m.prefixed() {
		return sign + m.symbol + n
	}
	return sign + n + " " + m.symbol
}

var defaultMoney = NewMoney("USD", "en-US")

// SetDefaultCurrency changes the formatter used by FormatCurrency.
func SetDefaultCurrency(code, locale string) {
	defaultMoney = NewMoney(code, locale)
}

// FormatCurrency formats amount with the default currency, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	return defaultMoney.Format(amount)
}

// FormatDate renders a stored YYYY-MM-DD date as "Jan 2, 2006". The date is
// pinned to local noon so no timezone can move it to a neighbouring day.
// Malformed input is returned unchanged.
func FormatDate(iso string) string {
	t, err := model.ParseDate(iso, time.Local, 12)
	if err != nil {
		return iso
	}
	return t.Format("Jan 2, 2006")
}

// DueBadge is the status caption for a record due in days. It is empty
// when the date is further away than within.
func DueBadge(days, within int) string {
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Due Today!"
	case days > within:
		return ""
	case days == 1:
		return "Due in 1 day"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// FormatDays describes a distance in days: "today", "tomorrow", "in 5 days",
// "3 days ago".
func FormatDays(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// FormatPercent formats a 0-100 value with no decimals.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", math.Round(pct))
}

// Truncate shortens s to max runes, ending with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
