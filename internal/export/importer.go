package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/subtrack/internal/model"
	"gopkg.in/yaml.v3"
)

// Read decodes a JSON or YAML backup.
func Read(r io.Reader, format Format) (Backup, error) {
	var b Backup
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&b); err != nil {
			return b, fmt.Errorf("decoding JSON backup: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&b); err != nil {
			return b, fmt.Errorf("decoding YAML backup: %w", err)
		}
	default:
		return b, fmt.Errorf("cannot import %s; use json or yaml", format)
	}
	if b.Version > BackupVersion {
		return b, fmt.Errorf("backup version %d is newer than supported version %d", b.Version, BackupVersion)
	}
	return b, nil
}

// ReadFile opens path and decodes it according to its extension.
func ReadFile(path string) (Backup, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Backup{}, err
	}
	f, err := os.Open(path) //nolint:gosec // user-chosen import path
	if err != nil {
		return Backup{}, fmt.Errorf("opening backup: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, format)
}

// Prepare validates every record of b, assigns ids to records without one
// and rejects duplicate ids. All problems are reported together.
func Prepare(b Backup, newID func() string) ([]model.Subscription, []model.Loan, error) {
	var errs []error
	seen := map[string]bool{}
	claim := func(kind string, i int, id *string) {
		if *id == "" {
			*id = newID()
		}
		if seen[*id] {
			errs = append(errs, fmt.Errorf("%s %d: duplicate id %q", kind, i+1, *id))
		}
		seen[*id] = true
	}

	subs := append([]model.Subscription{}, b.Subscriptions...)
	for i := range subs {
		claim("subscription", i, &subs[i].ID)
		if err := model.ValidateSubscription(subs[i]); err != nil {
			errs = append(errs, fmt.Errorf("subscription %d (%s): %w", i+1, subs[i].Vendor, err))
		}
	}

	loans := append([]model.Loan{}, b.Loans...)
	for i := range loans {
		claim("loan", i, &loans[i].ID)
		if err := model.ValidateLoan(loans[i]); err != nil {
			errs = append(errs, fmt.Errorf("loan %d (%s): %w", i+1, loans[i].Vendor, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return subs, loans, nil
}
