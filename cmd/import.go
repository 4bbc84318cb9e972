package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/subtrack/internal/export"
	"github.com/theirongolddev/subtrack/internal/tracker"

	"github.com/spf13/cobra"
)

var (
	flagImportFile string
	flagImportYes  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace all records with a JSON or YAML backup",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagImportFile, "file", "", "Backup file (.json, .yaml)")
	importCmd.Flags().BoolVarP(&flagImportYes, "yes", "y", false, "Skip the confirmation prompt")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, _ []string) error {
	b, err := export.ReadFile(flagImportFile)
	if err != nil {
		return err
	}
	subs, loans, err := export.Prepare(b, tracker.NewID)
	if err != nil {
		return fmt.Errorf("backup %s is not valid:\n%w", flagImportFile, err)
	}

	data, err := openData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	existing := len(data.store.Subscriptions()) + len(data.store.Loans())
	if existing > 0 {
		ok, err := confirm(fmt.Sprintf("Replace %d existing records with %d from the backup?", existing, len(subs)+len(loans)), "Replace", flagImportYes)
		if err != nil {
			return cancelled(err)
		}
		if !ok {
			fmt.Println("  Nothing imported.")
			return nil
		}
	}

	data.subs.Replace(subs)
	data.loans.Replace(loans)

	// Imported dates go through the same roll-forward as any load.
	var loadErr error
	if err := data.subs.Load(); err != nil {
		loadErr = errors.Join(loadErr, err)
	}
	if err := data.loans.Load(); err != nil {
		loadErr = errors.Join(loadErr, err)
	}
	if loadErr != nil {
		warnf("Some imported dates could not be advanced: %v", loadErr)
	}

	data.log.WithField("path", flagImportFile).Info("backup imported")
	fmt.Printf("  Imported %d subscriptions and %d loans from %s\n", len(subs), len(loans), flagImportFile)
	return nil
}
