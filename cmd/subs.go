package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/tui"

	"github.com/spf13/cobra"
)

var subscriptionFlags = []string{"vendor", "description", "purchased", "renewal", "amount", "color", "cycle"}

var (
	flagSubsJSON  bool
	flagSubsYes   bool
	flagSubsForce bool
)

var subsCmd = &cobra.Command{
	Use:     "subs",
	Aliases: []string{"subscriptions"},
	Short:   "List and manage subscriptions",
	RunE:    runSubsList,
}

var subsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions by renewal date",
	RunE:  runSubsList,
}

var subsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription (interactive without flags)",
	Args:  cobra.NoArgs,
	RunE:  runSubsAdd,
}

var subsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a subscription (interactive without flags)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsEdit,
}

var subsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subscription",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubsDelete,
}

var subsPaidCmd = &cobra.Command{
	Use:   "paid <id>",
	Short: "Mark a subscription as paid and move its renewal forward one cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsPaid,
}

func init() {
	for _, c := range []*cobra.Command{subsAddCmd, subsEditCmd} {
		c.Flags().String("vendor", "", "Vendor name")
		c.Flags().String("description", "", "Optional description")
		c.Flags().String("purchased", "", "Date purchased (YYYY-MM-DD)")
		c.Flags().String("renewal", "", "Next renewal date (YYYY-MM-DD)")
		c.Flags().String("amount", "", "Amount charged per cycle")
		c.Flags().String("color", "", "Color tag (name or hex from the palette)")
		c.Flags().String("cycle", "", "Billing cycle ("+cycleNames()+")")
	}

	subsCmd.PersistentFlags().BoolVar(&flagSubsJSON, "json", false, "Print records as JSON")
	subsDeleteCmd.Flags().BoolVarP(&flagSubsYes, "yes", "y", false, "Skip the confirmation prompt")
	subsPaidCmd.Flags().BoolVar(&flagSubsForce, "force", false, fmt.Sprintf("Allow marking renewals more than %d days out", markPaidWindow))

	subsCmd.AddCommand(subsListCmd, subsAddCmd, subsEditCmd, subsDeleteCmd, subsPaidCmd)
	rootCmd.AddCommand(subsCmd)
}

func runSubsList(_ *cobra.Command, _ []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	subs := data.subs.Sorted()
	if flagSubsJSON {
		return printJSON(subs)
	}
	if len(subs) == 0 {
		fmt.Println("\n  No subscriptions yet. Add one with `subtrack subs add`.")
		return nil
	}

	now := today()
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		due := ""
		if days, err := billing.DaysUntil(s.RenewalDate, now); err == nil {
			due = cli.BadgeStyle(days).Render(cli.FormatDays(days))
		}
		rows = append(rows, []string{
			shortID(s.ID),
			cli.Swatch(s.ColorTag),
			cli.Truncate(s.Vendor, 28),
			s.BillingCycle.OrDefault().Label(),
			data.money.Format(s.Amount),
			data.money.Format(billing.MonthlyEquivalent(s.Amount, s.BillingCycle)),
			cli.FormatDate(s.RenewalDate),
			due,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Subscriptions (%d)", len(subs)),
		Headers:  []string{"ID", "", "Vendor", "Cycle", "Amount", "Per Month", "Renewal", "Due"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

// subscriptionFromInput fills f from flags, or from an interactive form
// when no field flag was given.
func subscriptionFromInput(cmd *cobra.Command, f *model.SubscriptionForm) (model.Subscription, error) {
	if !anyChanged(cmd, subscriptionFlags...) {
		if err := runForm(tui.NewSubscriptionForm(f)); err != nil {
			return model.Subscription{}, err
		}
	} else {
		setFromFlag(cmd, "vendor", &f.Vendor)
		setFromFlag(cmd, "description", &f.Description)
		setFromFlag(cmd, "purchased", &f.DatePurchased)
		setFromFlag(cmd, "renewal", &f.RenewalDate)
		setFromFlag(cmd, "amount", &f.Amount)
		setFromFlag(cmd, "color", &f.ColorTag)
		setFromFlag(cmd, "cycle", &f.BillingCycle)
	}
	return f.Subscription()
}

func runSubsAdd(cmd *cobra.Command, _ []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	f := model.NewSubscriptionForm(nil)
	draft, err := subscriptionFromInput(cmd, &f)
	if err != nil {
		return cancelled(printValidation(err))
	}
	s, err := data.subs.Add(draft)
	if err != nil {
		return printValidation(err)
	}

	if flagSubsJSON {
		return printJSON(s)
	}
	fmt.Printf("  Added %s (%s), renews %s\n", s.Vendor, shortID(s.ID), cli.FormatDate(s.RenewalDate))
	return nil
}

func runSubsEdit(cmd *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("subscription", data.subs.All(), args[0])
	if err != nil {
		return err
	}
	existing, _ := data.subs.Get(id)

	f := model.NewSubscriptionForm(&existing)
	draft, err := subscriptionFromInput(cmd, &f)
	if err != nil {
		return cancelled(printValidation(err))
	}
	s, err := data.subs.Update(id, draft)
	if err != nil {
		return printValidation(err)
	}

	if flagSubsJSON {
		return printJSON(s)
	}
	fmt.Printf("  Updated %s (%s)\n", s.Vendor, shortID(s.ID))
	return nil
}

func runSubsDelete(_ *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("subscription", data.subs.All(), args[0])
	if err != nil {
		return err
	}

	deleted, err := data.subs.Delete(id, func(s model.Subscription) bool {
		ok, cerr := confirm(fmt.Sprintf("Delete %s? This cannot be undone.", s.Vendor), "Delete", flagSubsYes)
		return cerr == nil && ok
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Println("  Nothing deleted.")
		return nil
	}
	fmt.Printf("  Deleted subscription %s\n", shortID(id))
	return nil
}

func runSubsPaid(_ *cobra.Command, args []string) error {
	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	id, err := resolveID("subscription", data.subs.All(), args[0])
	if err != nil {
		return err
	}
	existing, _ := data.subs.Get(id)

	if !flagSubsForce {
		days, err := billing.DaysUntil(existing.RenewalDate, today())
		if err != nil {
			return fmt.Errorf("renewal date of %s: %w", existing.Vendor, err)
		}
		if days > markPaidWindow {
			return fmt.Errorf("%s renews %s; mark as paid is available within %d days of renewal (use --force)",
				existing.Vendor, cli.FormatDays(days), markPaidWindow)
		}
	}

	s, err := data.subs.MarkAsPaid(id)
	if err != nil {
		return err
	}
	if flagSubsJSON {
		return printJSON(s)
	}
	fmt.Printf("  %s paid, next renewal %s\n", s.Vendor, cli.FormatDate(s.RenewalDate))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cycleNames lists the accepted cycle values for help text.
func cycleNames() string {
	names := make([]string, 0, len(model.Cycles))
	for _, c := range model.Cycles {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
