// Package billing implements the date and amount arithmetic behind renewals,
// due-date classification and loan progress. Every function is pure; the
// current time is always passed in.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/subtrack/internal/model"
)

const (
	// DefaultUpcomingDays is the window used by IsUpcoming when callers have
	// no preference.
	DefaultUpcomingDays = 30

	// MaxRenewalSteps bounds the overdue catch-up loop in AutoRenew.
	MaxRenewalSteps = 10_000

	weeklyPerMonth = 4.33
)

var (
	// ErrInvalidDate is returned for malformed YYYY-MM-DD input.
	ErrInvalidDate = model.ErrInvalidDate

	// ErrInvalidCycle is returned for a cycle outside the supported set.
	ErrInvalidCycle = errors.New("invalid billing cycle")

	// ErrRenewalLimit signals a record whose date could not be brought
	// current within MaxRenewalSteps cycles.
	ErrRenewalLimit = errors.New("renewal catch-up exceeded iteration limit")
)

// DaysUntil returns the number of calendar days from now's local date to
// date. Negative means overdue, 0 means due today.
//
// Both ends are pinned to local midnight and compared as calendar days, so
// a DST transition in between never turns a 1-day gap into 0 or 2.
func DaysUntil(date string, now time.Time) (int, error) {
	target, err := model.ParseDate(date, now.Location(), 0)
	if err != nil {
		return 0, err
	}
	return dayNumber(target) - dayNumber(now), nil
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// IsUpcoming reports whether date falls within [today, today+withinDays].
func IsUpcoming(date string, withinDays int, now time.Time) (bool, error) {
	days, err := DaysUntil(date, now)
	if err != nil {
		return false, err
	}
	return days >= 0 && days <= withinDays, nil
}

// NeedsRenewal reports whether date is strictly in the past.
func NeedsRenewal(date string, now time.Time) (bool, error) {
	days, err := DaysUntil(date, now)
	if err != nil {
		return false, err
	}
	return days < 0, nil
}

// NextRenewalDate advances date by one cycle. Month arithmetic follows
// time.AddDate normalization: 2024-01-31 plus one month is 2024-03-02.
// An absent cycle advances monthly.
func NextRenewalDate(date string, cycle model.BillingCycle) (string, error) {
	t, err := model.ParseDate(date, time.Local, 12)
	if err != nil {
		return "", err
	}

	switch cycle.OrDefault() {
	case model.CycleWeekly:
		t = t.AddDate(0, 0, 7)
	case model.CycleMonthly:
		t = t.AddDate(0, 1, 0)
	case model.CycleQuarterly:
		t = t.AddDate(0, 3, 0)
	case model.CycleYearly:
		t = t.AddDate(1, 0, 0)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCycle, cycle)
	}
	return model.FormatDate(t), nil
}

// Renewal is the outcome of rolling a due date forward.
type Renewal struct {
	Date  string
	Cycle model.BillingCycle
	Steps int
}

// Changed reports whether the date moved.
func (r Renewal) Changed() bool { return r.Steps > 0 }

// RenewDate applies NextRenewalDate until date is no longer overdue.
// The returned cycle is always populated (absent becomes monthly).
func RenewDate(date string, cycle model.BillingCycle, now time.Time) (Renewal, error) {
	r := Renewal{Date: date, Cycle: cycle.OrDefault()}
	if !r.Cycle.Valid() {
		return r, fmt.Errorf("%w: %q", ErrInvalidCycle, cycle)
	}

	for {
		overdue, err := NeedsRenewal(r.Date, now)
		if err != nil {
			return Renewal{Date: date, Cycle: r.Cycle}, err
		}
		if !overdue {
			return r, nil
		}
		if r.Steps >= MaxRenewalSteps {
			return Renewal{Date: date, Cycle: r.Cycle},
				fmt.Errorf("%w: %s still overdue after %d %s steps", ErrRenewalLimit, r.Date, r.Steps, r.Cycle)
		}
		next, err := NextRenewalDate(r.Date, r.Cycle)
		if err != nil {
			return Renewal{Date: date, Cycle: r.Cycle}, err
		}
		r.Date = next
		r.Steps++
	}
}

// AutoRenewSubscription rolls an overdue renewal date forward and normalizes
// an absent cycle to monthly. changed is true when any field differs from s.
func AutoRenewSubscription(s model.Subscription, now time.Time) (model.Subscription, bool, error) {
	r, err := RenewDate(s.RenewalDate, s.BillingCycle, now)
	if err != nil {
		return s, false, err
	}
	changed := r.Changed() || s.BillingCycle != r.Cycle
	s.RenewalDate = r.Date
	s.BillingCycle = r.Cycle
	return s, changed, nil
}

// AutoRenewLoan is AutoRenewSubscription for a loan's payment date.
func AutoRenewLoan(l model.Loan, now time.Time) (model.Loan, bool, error) {
	r, err := RenewDate(l.PaymentDate, l.BillingCycle, now)
	if err != nil {
		return l, false, err
	}
	changed := r.Changed() || l.BillingCycle != r.Cycle
	l.PaymentDate = r.Date
	l.BillingCycle = r.Cycle
	return l, changed, nil
}

// CalculateLoanDetails derives the remaining balance and payoff percentage.
// Both are clamped: balance never goes negative and progress stays within
// 0..100 even when more than the principal was recorded as paid. A zero
// principal reports 0% progress.
func CalculateLoanDetails(l model.Loan) model.LoanDetails {
	total := decimal.NewFromFloat(l.TotalLoanAmount)
	paid := decimal.NewFromFloat(l.AmountPaidSoFar)

	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	progress := decimal.Zero
	if !total.IsZero() {
		progress = paid.Div(total).Mul(decimal.NewFromInt(100))
	}
	hundred := decimal.NewFromInt(100)
	if progress.GreaterThan(hundred) {
		progress = hundred
	}
	if progress.IsNegative() {
		progress = decimal.Zero
	}

	return model.LoanDetails{
		RemainingBalance: remaining.InexactFloat64(),
		PaymentProgress:  progress.InexactFloat64(),
	}
}

// MonthlyEquivalent normalizes a per-cycle amount to a monthly figure.
func MonthlyEquivalent(amount float64, cycle model.BillingCycle) float64 {
	a := decimal.NewFromFloat(amount)
	switch cycle.OrDefault() {
	case model.CycleWeekly:
		a = a.Mul(decimal.NewFromFloat(weeklyPerMonth))
	case model.CycleQuarterly:
		a = a.Div(decimal.NewFromInt(3))
	case model.CycleYearly:
		a = a.Div(decimal.NewFromInt(12))
	}
	return a.InexactFloat64()
}
