package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/dashboard"

	"github.com/spf13/cobra"
)

var flagDashboardJSON bool

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"summary"},
	Short:   "Monthly cost, outstanding loans, and upcoming payments",
	RunE:    runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&flagDashboardJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	opts := dashboard.Options{UpcomingDays: data.cfg.General.UpcomingDays, SoonDays: data.cfg.General.SoonDays}
	sum := dashboard.Build(data.subs.All(), data.loans.All(), today(), opts)

	if flagDashboardJSON {
		return printJSON(sum)
	}

	if sum.SubscriptionCount == 0 && sum.LoanCount == 0 {
		fmt.Println("\n  No subscriptions or loans yet.")
		fmt.Println("  Add one with `subtrack subs add` or `subtrack loans add`.")
		return nil
	}

	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = dashboard.DefaultOptions().UpcomingDays
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SUBTRACK  Dashboard"))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Monthly Cost", data.money.Format(sum.TotalMonthlyCost)},
			{"Monthly Equivalent", data.money.Format(sum.MonthlyEquivalent)},
			{"Subscriptions", fmt.Sprintf("%d", sum.SubscriptionCount)},
			{"Renewals This Week", fmt.Sprintf("%d", sum.DueSoonCount)},
			{"---"},
			{"Outstanding Loans", data.money.Format(sum.OutstandingLoans)},
			{"Total Borrowed", data.money.Format(sum.TotalPrincipal)},
			{"Total Repaid", data.money.Format(sum.TotalPaid)},
			{"Loans", fmt.Sprintf("%d", sum.LoanCount)},
		},
	}))

	if len(sum.UpcomingSubscriptions) > 0 {
		rows := make([][]string, 0, len(sum.UpcomingSubscriptions))
		for _, u := range sum.UpcomingSubscriptions {
			rows = append(rows, upcomingRow(u.Record.ColorTag, u.Record.Vendor, u.Record.Amount, u.Record.RenewalDate, u.DaysUntil, data.money))
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    fmt.Sprintf("Upcoming Renewals (%dd)", opts.UpcomingDays),
			Headers:  []string{"", "Vendor", "Amount", "Date", "Due"},
			Rows:     rows,
			LeftCols: 2,
		}))
	}

	if len(sum.UpcomingLoans) > 0 {
		rows := make([][]string, 0, len(sum.UpcomingLoans))
		for _, u := range sum.UpcomingLoans {
			rows = append(rows, upcomingRow(u.Record.ColorTag, u.Record.Vendor, u.Record.PaymentAmount, u.Record.PaymentDate, u.DaysUntil, data.money))
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    fmt.Sprintf("Upcoming Loan Payments (%dd)", opts.UpcomingDays),
			Headers:  []string{"", "Vendor", "Payment", "Date", "Due"},
			Rows:     rows,
			LeftCols: 2,
		}))
	}
	return nil
}

func upcomingRow(color, vendor string, amount float64, date string, days int, money cli.Money) []string {
	return []string{
		cli.Swatch(color),
		cli.Truncate(vendor, 28),
		money.Format(amount),
		cli.FormatDate(date),
		cli.BadgeStyle(days).Render(cli.FormatDays(days)),
	}
}
