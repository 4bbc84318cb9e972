// Package config loads and saves the subtrack TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

const appName = "subtrack"

// Config holds all subtrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Store      StoreConfig      `toml:"store"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Notify     NotifyConfig     `toml:"notify"`
}

// GeneralConfig holds display and classification preferences.
type GeneralConfig struct {
	Currency     string `toml:"currency"`
	Locale       string `toml:"locale"`
	UpcomingDays int    `toml:"upcoming_days"`
	SoonDays     int    `toml:"soon_days"`
}

// StoreConfig selects the persistence driver.
type StoreConfig struct {
	Driver      string `toml:"driver"`
	Path        string `toml:"path,omitempty"`
	RedisAddr   string `toml:"redis_addr,omitempty"`
	RedisDB     int    `toml:"redis_db,omitempty"`
	RedisPrefix string `toml:"redis_prefix,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background service.
type DaemonConfig struct {
	Addr       string `toml:"addr"`
	Schedule   string `toml:"schedule"`
	RemindDays int    `toml:"remind_days"`
}

// NotifyConfig holds SMTP settings for reminder e-mails. Reminders are only
// mailed when SMTPHost and To are set.
type NotifyConfig struct {
	SMTPHost string `toml:"smtp_host,omitempty"`
	SMTPPort int    `toml:"smtp_port,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	From     string `toml:"from,omitempty"`
	To       string `toml:"to,omitempty"`
}

// Enabled reports whether enough is configured to send mail.
func (n NotifyConfig) Enabled() bool {
	return n.SMTPHost != "" && n.To != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:     "USD",
			Locale:       "en-US",
			UpcomingDays: 30,
			SoonDays:     7,
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			RedisPrefix: appName + ":",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:       "127.0.0.1:8788",
			Schedule:   "@daily",
			RemindDays: 7,
		},
		Notify: NotifyConfig{
			SMTPPort: 587,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// CacheDir returns the XDG-compliant cache directory (logs, pid file).
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultDBPath is the SQLite file used when store.path is unset.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), appName+".db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultDBPath()
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SUBTRACK_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("SUBTRACK_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SUBTRACK_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("SUBTRACK_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SUBTRACK_REDIS_DB: %w", err)
		}
		cfg.Store.RedisDB = n
	}
	if v := os.Getenv("SUBTRACK_SMTP_PASSWORD"); v != "" {
		cfg.Notify.Password = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
