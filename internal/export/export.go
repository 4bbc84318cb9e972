// Package export writes the tracked records to backup and report formats
// and reads backups back in.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

// Supported formats. Only JSON and YAML can be imported.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every export format.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatHTML, FormatXLSX}

// BackupVersion is written into every backup.
const BackupVersion = 1

// ParseFormat accepts a format name or a common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Backup is the full, importable snapshot of both collections.
type Backup struct {
	Version       int                  `json:"version" yaml:"version"`
	ExportedAt    time.Time            `json:"exportedAt" yaml:"exportedAt"`
	Subscriptions []model.Subscription `json:"subscriptions" yaml:"subscriptions"`
	Loans         []model.Loan         `json:"loans" yaml:"loans"`
}

// NewBackup snapshots the collections.
func NewBackup(subs []model.Subscription, loans []model.Loan, now time.Time) Backup {
	if subs == nil {
		subs = []model.Subscription{}
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return Backup{
		Version:       BackupVersion,
		ExportedAt:    now.UTC().Truncate(time.Second),
		Subscriptions: subs,
		Loans:         loans,
	}
}

// Write renders b to w in the given format. money formats amounts in the
// human-oriented formats (markdown, html).
func Write(w io.Writer, format Format, b Backup, money cli.Money) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV, FormatMarkdown, FormatHTML:
		return writeTables(w, format, b, money)
	case FormatXLSX:
		return writeXLSX(w, b)
	}
	return fmt.Errorf("unknown format %q", format)
}

// WriteFile writes b to path in the given format.
func WriteFile(path string, format Format, b Backup, money cli.Money) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen export path
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := Write(f, format, b, money); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	return f.Close()
}
