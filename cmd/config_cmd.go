package cmd

import (
	"fmt"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:        %s\n", cfg.General.Currency)
	fmt.Printf("    Locale:          %s\n", cfg.General.Locale)
	fmt.Printf("    Upcoming window: %d days\n", cfg.General.UpcomingDays)
	fmt.Printf("    Due-soon window: %d days\n", cfg.General.SoonDays)
	fmt.Println()

	fmt.Println("  [Store]")
	driver := storeOptions(cfg).Driver
	fmt.Printf("    Driver: %s\n", driver)
	switch driver {
	case store.DriverRedis:
		fmt.Printf("    Redis:  %s db %d (prefix %q)\n", cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.RedisPrefix)
	case store.DriverMemory:
		fmt.Println("    Records are not persisted")
	default:
		fmt.Printf("    Path:   %s\n", cfg.Store.Path)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:     %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule:    %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Remind days: %d\n", cfg.Daemon.RemindDays)
	fmt.Println()

	fmt.Println("  [Notify]")
	if cfg.Notify.Enabled() {
		fmt.Printf("    SMTP:     %s:%d\n", cfg.Notify.SMTPHost, cfg.Notify.SMTPPort)
		fmt.Printf("    To:       %s\n", cfg.Notify.To)
		if cfg.Notify.Password != "" {
			fmt.Printf("    Password: %s\n", maskSecret(cfg.Notify.Password))
		}
	} else {
		fmt.Println("    E-mail reminders: not configured (reminders are logged only)")
	}
	fmt.Println()

	fmt.Println("  Run `subtrack setup` to reconfigure.")
	return nil
}
