package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every subscription and loan",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
	data, err := openData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	ok, err := confirm("Delete every subscription and loan? This cannot be undone.", "Reset", flagResetYes)
	if err != nil {
		return cancelled(err)
	}
	if !ok {
		fmt.Println("  Nothing deleted.")
		return nil
	}

	data.store.Reset()
	data.log.Info("all records deleted")
	fmt.Println("  All subscriptions and loans deleted.")
	return nil
}
