package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/tui"

	"github.com/spf13/cobra"
)

var loanFlags = []string{"vendor", "description", "total", "paid", "payment", "date", "last-payment", "final-payment", "color", "cycle"}

var (
	flagLoansJSON bool
	flagLoansYes  bool
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List and manage loans",
	RunE:  runLoansList,
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans by next payment date",
	RunE:  runLoansList,
}

var loansAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a loan (interactive without flags)",
	Args:  cobra.NoArgs,
	RunE:  runLoansAdd,
}

var loansEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a loan (interactive without flags)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoansEdit,
}

var loansDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a loan",
	Args:    cobra.ExactArgs(1),
	RunE:    runLoansDelete,
}

var loansPayCmd = &cobra.Command{
	Use:   "pay <id>",
	Short: "Record one payment and move the payment date forward one cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoansPay,
}

func init() {
	for _, c := range []*cobra.Command{loansAddCmd, loansEditCmd} {
		c.Flags().String("vendor", "", "Lender name")
		c.Flags().String("description", "", "Optional description")
		c.Flags().String("total", "", "Total loan amount")
		c.Flags().String("paid", "", "Amount paid so far")
		c.Flags().String("payment", "", "Amount of each payment")
		c.Flags().String("date", "", "Next payment date (YYYY-MM-DD)")
		c.Flags().String("last-payment", "", "Last payment date (YYYY-MM-DD)")
		c.Flags().String("final-payment", "", "Final payment date (YYYY-MM-DD)")
		c.Flags().String("color", "", "Color tag (name or hex from the palette)")
		c.Flags().String("cycle", "", "Payment cycle ("+cycleNames()+")")
	}

	loansCmd.PersistentFlags().BoolVar(&flagLoansJSON, "json", false, "Print records as JSON")
	loansDeleteCmd.Flags().BoolVarP(&flagLoansYes, "yes", "y", false, "Skip the confirmation prompt")

	loansCmd.AddCommand(loansListCmd, loansAddCmd, loansEditCmd, loansDeleteCmd, loansPayCmd)
	rootCmd.AddCommand(loansCmd)
}

// loanView is the JSON shape of a listed loan.
type loanView struct {
	model.Loan
	model.LoanDetails
}

func runLoansList(_ *cobra.Command, _ []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	loans := data.loans.Sorted()
	if flagLoansJSON {
		views := make([]loanView, len(loans))
		for i, l := range loans {
			views[i] = loanView{Loan: l, LoanDetails: billing.CalculateLoanDetails(l)}
		}
		return printJSON(views)
	}
	if len(loans) == 0 {
		fmt.Println("\n  No loans yet. Add one with `subtrack loans add`.")
		return nil
	}

	now := today()
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		d := billing.CalculateLoanDetails(l)
		due := ""
		if days, err := billing.DaysUntil(l.PaymentDate, now); err == nil {
			due = cli.BadgeStyle(days).Render(cli.FormatDays(days))
		}
		rows = append(rows, []string{
			shortID(l.ID),
			cli.Swatch(l.ColorTag),
			cli.Truncate(l.Vendor, 24),
			data.money.Format(l.PaymentAmount),
			data.money.Format(d.RemainingBalance),
			cli.RenderProgressBar(d.PaymentProgress, 10),
			cli.FormatDate(l.PaymentDate),
			due,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Loans (%d)", len(loans)),
		Headers:  []string{"ID", "", "Lender", "Payment", "Remaining", "Progress", "Next Payment", "Due"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}

func loanFromInput(cmd *cobra.Command, f *model.LoanForm) (model.Loan, error) {
	if !anyChanged(cmd, loanFlags...) {
		if err := runForm(tui.NewLoanForm(f)); err != nil {
			return model.Loan{}, err
		}
	} else {
		setFromFlag(cmd, "vendor", &f.Vendor)
		setFromFlag(cmd, "description", &f.Description)
		setFromFlag(cmd, "total", &f.TotalLoanAmount)
		setFromFlag(cmd, "paid", &f.AmountPaidSoFar)
		setFromFlag(cmd, "payment", &f.PaymentAmount)
		setFromFlag(cmd, "date", &f.PaymentDate)
		setFromFlag(cmd, "last-payment", &f.LastPaymentDate)
		setFromFlag(cmd, "final-payment", &f.FinalPaymentDate)
		setFromFlag(cmd, "color", &f.ColorTag)
		setFromFlag(cmd, "cycle", &f.BillingCycle)
	}
	return f.Loan()
}

func runLoansAdd(cmd *cobra.Command, _ []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	f := model.NewLoanForm(nil)
	draft, err := loanFromInput(cmd, &f)
	if err != nil {
		return cancelled(printValidation(err))
	}
	l, err := data.loans.Add(draft)
	if err != nil {
		return printValidation(err)
	}

	if flagLoansJSON {
		return printJSON(l)
	}
	fmt.Printf("  Added %s (%s), next payment %s\n", l.Vendor, shortID(l.ID), cli.FormatDate(l.PaymentDate))
	return nil
}

func runLoansEdit(cmd *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("loan", data.loans.All(), args[0])
	if err != nil {
		return err
	}
	existing, _ := data.loans.Get(id)

	f := model.NewLoanForm(&existing)
	draft, err := loanFromInput(cmd, &f)
	if err != nil {
		return cancelled(printValidation(err))
	}
	l, err := data.loans.Update(id, draft)
	if err != nil {
		return printValidation(err)
	}

	if flagLoansJSON {
		return printJSON(l)
	}
	fmt.Printf("  Updated %s (%s)\n", l.Vendor, shortID(l.ID))
	return nil
}

func runLoansDelete(_ *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("loan", data.loans.All(), args[0])
	if err != nil {
		return err
	}

	deleted, err := data.loans.Delete(id, func(l model.Loan) bool {
		ok, cerr := confirm(fmt.Sprintf("Delete %s? This cannot be undone.", l.Vendor), "Delete", flagLoansYes)
		return cerr == nil && ok
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Println("  Nothing deleted.")
		return nil
	}
	fmt.Printf("  Deleted loan %s\n", shortID(id))
	return nil
}

func runLoansPay(_ *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("loan", data.loans.All(), args[0])
	if err != nil {
		return err
	}
	existing, _ := data.loans.Get(id)
	if existing.AmountPaidSoFar >= existing.TotalLoanAmount {
		return fmt.Errorf("%s is already paid off", existing.Vendor)
	}

	l, err := data.loans.RecordPayment(id)
	if err != nil {
		return err
	}
	if flagLoansJSON {
		return printJSON(loanView{Loan: l, LoanDetails: billing.CalculateLoanDetails(l)})
	}

	d := billing.CalculateLoanDetails(l)
	fmt.Printf("  Payment recorded for %s: %s remaining (%s), next payment %s\n",
		l.Vendor, data.money.Format(d.RemainingBalance), cli.FormatPercent(d.PaymentProgress), cli.FormatDate(l.PaymentDate))
	return nil
}
