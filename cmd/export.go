package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/subtrack/internal/export"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export subscriptions and loans",
	Long:  "Write every record as a JSON or YAML backup, or as CSV, Markdown, HTML or XLSX tables.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "Output format ("+strings.Join(names, ", ")+"); inferred from --out when omitted")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

// exportFormat picks the format from --format, then the --out extension,
// then JSON.
func exportFormat() (export.Format, error) {
	switch {
	case flagExportFormat != "":
		return export.ParseFormat(flagExportFormat)
	case flagExportOut != "":
		return export.FormatFromPath(flagExportOut)
	default:
		return export.FormatJSON, nil
	}
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := exportFormat()
	if err != nil {
		return err
	}

	data, err := loadData(os.Stderr)
	if err != nil {
		return err
	}
	defer data.Close()

	b := export.NewBackup(data.subs.Sorted(), data.loans.Sorted(), today())

	if flagExportOut == "" {
		return export.Write(os.Stdout, format, b, data.money)
	}
	if err := export.WriteFile(flagExportOut, format, b, data.money); err != nil {
		return err
	}
	data.log.WithFields(logrus.Fields{"path": flagExportOut, "format": format}).Info("export written")
	fmt.Fprintf(os.Stderr, "  Exported %d subscriptions and %d loans to %s\n",
		len(b.Subscriptions), len(b.Loans), flagExportOut)
	return nil
}
