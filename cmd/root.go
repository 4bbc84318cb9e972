// Package cmd implements the subtrack CLI commands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/logging"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tracker"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagStore     string
	flagQuiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "subtrack",
	Short: "Subscription and loan payment tracker",
	Long:  "Track recurring subscriptions and loan payments: upcoming renewals, monthly cost, and payoff progress.",
	RunE:  runDashboard,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logging.EnvLevel)
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", logging.FormatText, "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Storage driver override (sqlite, redis, memory)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress warnings on stderr")
}

// appData bundles everything a command needs to read or change records.
type appData struct {
	cfg   config.Config
	log   *logrus.Logger
	store *store.Store
	subs  *tracker.Subscriptions
	loans *tracker.Loans
	money cli.Money
}

func (d *appData) Close() {
	if err := d.store.Close(); err != nil {
		d.log.WithError(err).Warn("closing store")
	}
}

// storeOptions maps the configured store section onto driver options.
func storeOptions(cfg config.Config) store.Options {
	opts := store.Options{
		Driver:      cfg.Store.Driver,
		Path:        cfg.Store.Path,
		RedisAddr:   cfg.Store.RedisAddr,
		RedisDB:     cfg.Store.RedisDB,
		RedisPrefix: cfg.Store.RedisPrefix,
	}
	if flagStore != "" {
		opts.Driver = flagStore
	}
	return opts
}

// openData opens the configured store and builds the record controllers
// without loading them.
func openData(logOut io.Writer) (*appData, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(flagLogLevel, flagLogFormat, logOut)
	if err != nil {
		return nil, err
	}

	opts := storeOptions(cfg)
	cfg.Store.Driver = opts.Driver
	kv, err := store.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	st := store.New(kv, logger)

	d := &appData{
		cfg:   cfg,
		log:   logger,
		store: st,
		subs:  tracker.NewSubscriptions(st, tracker.WithLogger(logger)),
		loans: tracker.NewLoans(st, tracker.WithLogger(logger)),
		money: cli.NewMoney(cfg.General.Currency, cfg.General.Locale),
	}
	cli.SetDefaultCurrency(cfg.General.Currency, cfg.General.Locale)
	return d, nil
}

// loadData is the shared loading path used by all record commands. Loading
// rolls overdue dates forward; a date that cannot be advanced is reported
// but not fatal.
func loadData(logOut io.Writer) (*appData, error) {
	d, err := openData(logOut)
	if err != nil {
		return nil, err
	}
	if err := d.subs.Load(); err != nil {
		warnf("Some renewal dates could not be advanced: %v", err)
	}
	if err := d.loans.Load(); err != nil {
		warnf("Some payment dates could not be advanced: %v", err)
	}
	return d, nil
}

func warnf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// today is the reference date for every command.
func today() time.Time {
	return time.Now()
}
