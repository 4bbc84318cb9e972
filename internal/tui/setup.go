package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

var currencyOptions = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "INR"}

// SetupValues holds the answers of the setup wizard. Fields are strings so
// huh can bind to them directly.
type SetupValues struct {
	Currency   string
	Locale     string
	Driver     string
	StorePath  string
	RedisAddr  string
	Theme      string
	RemindDays string
}

// NewSetupValues prefills the wizard from cfg.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		Currency:   cfg.General.Currency,
		Locale:     cfg.General.Locale,
		Driver:     cfg.Store.Driver,
		StorePath:  cfg.Store.Path,
		RedisAddr:  cfg.Store.RedisAddr,
		Theme:      cfg.Appearance.Theme,
		RemindDays: strconv.Itoa(cfg.Daemon.RemindDays),
	}
}

// NewSetupForm builds the first-run wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	currencies := currencyOptions
	if v.Currency != "" && !slices.Contains(currencies, v.Currency) {
		currencies = append([]string{v.Currency}, currencies...)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to subtrack").
				Description("Track recurring subscriptions and loan payments.\nA few settings first; run `subtrack setup` to change them later."),
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions(currencies...)...).
				Value(&v.Currency),
			huh.NewInput().
				Title("Locale").
				Description("Used for number formatting, e.g. en-US or de-DE").
				Value(&v.Locale),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage").
				Options(
					huh.NewOption("SQLite file (default)", store.DriverSQLite),
					huh.NewOption("Redis", store.DriverRedis),
					huh.NewOption("Memory (nothing is kept)", store.DriverMemory),
				).
				Value(&v.Driver),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SQLite database path").
				Value(&v.StorePath),
		).WithHideFunc(func() bool { return v.Driver != store.DriverSQLite && v.Driver != "" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Placeholder("127.0.0.1:6379").
				Value(&v.RedisAddr).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("an address is required for the redis driver")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return v.Driver != store.DriverRedis }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
			huh.NewInput().
				Title("Reminder window (days)").
				Value(&v.RemindDays).
				Validate(validateDays),
		),
	).WithShowHelp(true)
}

func validateDays(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of days")
	}
	return nil
}

// Apply copies the answers into cfg.
func (v *SetupValues) Apply(cfg *config.Config) error {
	if err := validateDays(v.RemindDays); err != nil {
		return err
	}
	days, _ := strconv.Atoi(strings.TrimSpace(v.RemindDays))

	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(v.Currency))
	if loc := strings.TrimSpace(v.Locale); loc != "" {
		cfg.General.Locale = loc
	}
	cfg.Store.Driver = v.Driver
	if p := strings.TrimSpace(v.StorePath); p != "" {
		cfg.Store.Path = p
	}
	cfg.Store.RedisAddr = strings.TrimSpace(v.RedisAddr)
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	cfg.Daemon.RemindDays = days
	return nil
}
