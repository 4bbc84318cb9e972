// Package notify turns due dates into reminders and delivers them.
package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
)

// Kinds of obligation a reminder can refer to.
const (
	KindSubscription = "subscription"
	KindLoan         = "loan"
)

// Reminder is one obligation that is overdue or due soon.
type Reminder struct {
	Kind      string  `json:"kind"`
	ID        string  `json:"id"`
	Vendor    string  `json:"vendor"`
	DueDate   string  `json:"dueDate"`
	DaysUntil int     `json:"daysUntil"`
	Amount    float64 `json:"amount"`
}

// Collect returns every subscription renewal and loan payment due within
// withinDays of now, overdue ones included, soonest first.
func Collect(subs []model.Subscription, loans []model.Loan, now time.Time, withinDays int) []Reminder {
	out := []Reminder{}
	for _, s := range subs {
		days, err := billing.DaysUntil(s.RenewalDate, now)
		if err != nil || days > withinDays {
			continue
		}
		out = append(out, Reminder{Kind: KindSubscription, ID: s.ID, Vendor: s.Vendor, DueDate: s.RenewalDate, DaysUntil: days, Amount: s.Amount})
	}
	for _, l := range loans {
		days, err := billing.DaysUntil(l.PaymentDate, now)
		if err != nil || days > withinDays {
			continue
		}
		out = append(out, Reminder{Kind: KindLoan, ID: l.ID, Vendor: l.Vendor, DueDate: l.PaymentDate, DaysUntil: days, Amount: l.PaymentAmount})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntil != out[j].DaysUntil {
			return out[i].DaysUntil < out[j].DaysUntil
		}
		return strings.ToLower(out[i].Vendor) < strings.ToLower(out[j].Vendor)
	})
	return out
}

// Compose builds the subject and plain-text body of a reminder mail.
func Compose(reminders []Reminder, money cli.Money) (subject, body string) {
	switch len(reminders) {
	case 0:
		return "", ""
	case 1:
		subject = fmt.Sprintf("Upcoming payment: %s", reminders[0].Vendor)
	default:
		subject = fmt.Sprintf("%d upcoming payments", len(reminders))
	}

	var total float64
	var b strings.Builder
	b.WriteString("The following payments are coming up:\n\n")
	for _, r := range reminders {
		label := "Renewal"
		if r.Kind == KindLoan {
			label = "Loan payment"
		}
		fmt.Fprintf(&b, "  - %s %s: %s on %s (%s)\n",
			label, r.Vendor, money.Format(r.Amount), cli.FormatDate(r.DueDate), cli.FormatDays(r.DaysUntil))
		total += r.Amount
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", money.Format(total))
	b.WriteString("\nsubtrack\n")
	return subject, b.String()
}
