package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/logging"
	"github.com/theirongolddev/subtrack/internal/tui"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// The alternate screen owns stdout, so logs go to a file.
	logf, err := logging.OpenFile(filepath.Join(config.CacheDir(), "tui.log"))
	if err != nil {
		return err
	}
	defer func() { _ = logf.Close() }()

	data, err := openData(logf)
	if err != nil {
		return err
	}
	defer data.Close()

	theme.SetActive(data.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Deps{
		Config:        data.cfg,
		Store:         data.store,
		Subscriptions: data.subs,
		Loans:         data.loans,
		Logger:        data.log,
		NeedSetup:     !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
