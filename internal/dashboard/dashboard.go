// Package dashboard computes the summary figures and upcoming lists shown on
// the dashboard. Nothing here is stored.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/model"
)

// Options sets the classification windows in days.
type Options struct {
	UpcomingDays int // upcoming lists
	SoonDays     int // "renewals this week" count
}

// DefaultOptions returns the 30-day upcoming and 7-day soon windows.
func DefaultOptions() Options {
	return Options{UpcomingDays: billing.DefaultUpcomingDays, SoonDays: 7}
}

// Upcoming pairs a record with its distance from today.
type Upcoming[T any] struct {
	Record    T   `json:"record"`
	DaysUntil int `json:"daysUntil"`
}

// Summary is the computed dashboard.
type Summary struct {
	// TotalMonthlyCost sums the amount of subscriptions billed monthly
	// (or with no cycle). Other cycles are excluded, not converted.
	TotalMonthlyCost float64 `json:"totalMonthlyCost"`
	// MonthlyEquivalent normalizes every subscription to a monthly figure.
	MonthlyEquivalent float64 `json:"monthlyEquivalent"`

	SubscriptionCount int `json:"subscriptionCount"`
	LoanCount         int `json:"loanCount"`

	OutstandingLoans float64 `json:"outstandingLoans"`
	TotalPrincipal   float64 `json:"totalPrincipal"`
	TotalPaid        float64 `json:"totalPaid"`

	DueSoonCount int `json:"dueSoonCount"`

	UpcomingSubscriptions []Upcoming[model.Subscription] `json:"upcomingSubscriptions"`
	UpcomingLoans         []Upcoming[model.Loan]         `json:"upcomingLoans"`
}

// Build aggregates subs and loans as of now. Records with unparseable dates
// are counted and summed but never listed as upcoming.
func Build(subs []model.Subscription, loans []model.Loan, now time.Time, opts Options) Summary {
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = billing.DefaultUpcomingDays
	}
	if opts.SoonDays <= 0 {
		opts.SoonDays = 7
	}

	s := Summary{
		SubscriptionCount:     len(subs),
		LoanCount:             len(loans),
		UpcomingSubscriptions: []Upcoming[model.Subscription]{},
		UpcomingLoans:         []Upcoming[model.Loan]{},
	}

	monthly := decimal.Zero
	equivalent := decimal.Zero
	for _, sub := range subs {
		if sub.BillingCycle.OrDefault() == model.CycleMonthly {
			monthly = monthly.Add(decimal.NewFromFloat(sub.Amount))
		}
		equivalent = equivalent.Add(decimal.NewFromFloat(billing.MonthlyEquivalent(sub.Amount, sub.BillingCycle)))

		days, err := billing.DaysUntil(sub.RenewalDate, now)
		if err != nil {
			continue
		}
		if days >= 0 && days <= opts.SoonDays {
			s.DueSoonCount++
		}
		if days >= 0 && days <= opts.UpcomingDays {
			s.UpcomingSubscriptions = append(s.UpcomingSubscriptions, Upcoming[model.Subscription]{Record: sub, DaysUntil: days})
		}
	}
	s.TotalMonthlyCost = monthly.InexactFloat64()
	s.MonthlyEquivalent = equivalent.Round(2).InexactFloat64()

	outstanding := decimal.Zero
	principal := decimal.Zero
	paid := decimal.Zero
	for _, l := range loans {
		d := billing.CalculateLoanDetails(l)
		outstanding = outstanding.Add(decimal.NewFromFloat(d.RemainingBalance))
		principal = principal.Add(decimal.NewFromFloat(l.TotalLoanAmount))
		paid = paid.Add(decimal.NewFromFloat(l.AmountPaidSoFar))

		days, err := billing.DaysUntil(l.PaymentDate, now)
		if err != nil {
			continue
		}
		if days >= 0 && days <= opts.UpcomingDays {
			s.UpcomingLoans = append(s.UpcomingLoans, Upcoming[model.Loan]{Record: l, DaysUntil: days})
		}
	}
	s.OutstandingLoans = outstanding.InexactFloat64()
	s.TotalPrincipal = principal.InexactFloat64()
	s.TotalPaid = paid.InexactFloat64()

	sort.SliceStable(s.UpcomingSubscriptions, func(i, j int) bool {
		return s.UpcomingSubscriptions[i].DaysUntil < s.UpcomingSubscriptions[j].DaysUntil
	})
	sort.SliceStable(s.UpcomingLoans, func(i, j int) bool {
		return s.UpcomingLoans[i].DaysUntil < s.UpcomingLoans[j].DaysUntil
	})
	return s
}
