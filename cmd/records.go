package cmd

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/tracker"
	"github.com/theirongolddev/subtrack/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// shortIDLen is how much of an id the list tables show. Any unique prefix
// is accepted as a record reference.
const shortIDLen = 8

// markPaidWindow matches the TUI: a renewal further out than this needs
// --force to be marked as paid.
const markPaidWindow = 7

var errCancelled = errors.New("cancelled")

type identified interface {
	RecordID() string
}

// resolveID finds the single record whose id starts with ref.
func resolveID[T identified](kind string, items []T, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var matches []string
	for _, it := range items {
		id := it.RecordID()
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, ref, tracker.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// anyChanged reports whether any of the named flags was set on the
// command line.
func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// setFromFlag copies a string flag into dst when it was given.
func setFromFlag(cmd *cobra.Command, name string, dst *string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v, err := cmd.Flags().GetString(name)
	if err == nil {
		*dst = v
	}
}

// runForm runs a huh form in the terminal, mapping an abort to
// errCancelled.
func runForm(f *huh.Form) error {
	if err := f.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return err
	}
	return nil
}

// confirm asks a yes/no question unless skip is set.
func confirm(title, affirmative string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	ok := false
	if err := runForm(tui.NewConfirmForm(title, affirmative, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

// printValidation lists field messages one per line.
func printValidation(err error) error {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fmt.Println("\n  The record was not saved:")
	for _, field := range slices.Sorted(maps.Keys(verr.Fields)) {
		fmt.Printf("    %-18s %s\n", field, verr.Fields[field])
	}
	fmt.Println()
	return err
}

// cancelled swallows errCancelled after telling the user.
func cancelled(err error) error {
	if errors.Is(err, errCancelled) {
		fmt.Println("  Cancelled.")
		return nil
	}
	return err
}
