package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
)

var (
	subscriptionHeader = table.Row{"ID", "Vendor", "Description", "Billing Cycle", "Amount", "Renewal Date", "Date Purchased", "Color"}
	loanHeader         = table.Row{"ID", "Vendor", "Description", "Total", "Paid", "Remaining", "Progress", "Payment", "Payment Date", "Last Payment", "Loan End Date", "Billing Cycle", "Color"}
)

// amountFunc renders an amount for one output format.
type amountFunc func(float64) string

func plainAmount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func subscriptionRows(subs []model.Subscription, amount amountFunc, date func(string) string) []table.Row {
	rows := make([]table.Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, table.Row{
			s.ID, s.Vendor, s.Description, s.BillingCycle.OrDefault().Label(),
			amount(s.Amount), date(s.RenewalDate), date(s.DatePurchased), model.ColorName(s.ColorTag),
		})
	}
	return rows
}

func loanRows(loans []model.Loan, amount amountFunc, date func(string) string) []table.Row {
	rows := make([]table.Row, 0, len(loans))
	for _, l := range loans {
		d := billing.CalculateLoanDetails(l)
		rows = append(rows, table.Row{
			l.ID, l.Vendor, l.Description,
			amount(l.TotalLoanAmount), amount(l.AmountPaidSoFar), amount(d.RemainingBalance),
			cli.FormatPercent(d.PaymentProgress), amount(l.PaymentAmount),
			date(l.PaymentDate), date(l.LastPaymentDate), date(l.FinalPaymentDate),
			l.BillingCycle.OrDefault().Label(), model.ColorName(l.ColorTag),
		})
	}
	return rows
}

func identity(s string) string { return s }

func newTable(header table.Row, rows []table.Row) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)
	return t
}

func writeTables(w io.Writer, format Format, b Backup, money cli.Money) error {
	amount, date := amountFunc(money.Format), cli.FormatDate
	if format == FormatCSV {
		amount, date = plainAmount, identity
	}

	subs := newTable(subscriptionHeader, subscriptionRows(b.Subscriptions, amount, date))
	loans := newTable(loanHeader, loanRows(b.Loans, amount, date))

	var err error
	switch format {
	case FormatCSV:
		_, err = fmt.Fprintf(w, "%s\n\n%s\n", subs.RenderCSV(), loans.RenderCSV())
	case FormatMarkdown:
		_, err = fmt.Fprintf(w, "## Subscriptions\n\n%s\n\n## Loans\n\n%s\n", subs.RenderMarkdown(), loans.RenderMarkdown())
	case FormatHTML:
		subs.SetTitle("Subscriptions")
		loans.SetTitle("Loans")
		_, err = fmt.Fprintf(w, "%s\n%s\n", subs.RenderHTML(), loans.RenderHTML())
	default:
		err = fmt.Errorf("%s is not a table format", format)
	}
	return err
}
