package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{"SUBTRACK_STORE_DRIVER", "SUBTRACK_STORE_PATH", "SUBTRACK_REDIS_ADDR", "SUBTRACK_REDIS_DB", "SUBTRACK_SMTP_PASSWORD"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if Exists() {
		t.Fatal("Exists() = true before Save")
	}
	if cfg.General.Currency != "USD" || cfg.General.UpcomingDays != 30 || cfg.General.SoonDays != 7 {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	want := filepath.Join(dir, "data", "subtrack", "subtrack.db")
	if cfg.Store.Path != want {
		t.Errorf("store path = %q, want %q", cfg.Store.Path, want)
	}
	if cfg.Notify.Enabled() {
		t.Error("notify enabled by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.General.Currency = "EUR"
	cfg.Store.Driver = "redis"
	cfg.Store.RedisAddr = "localhost:6379"
	cfg.Daemon.Schedule = "0 8 * * *"
	cfg.Notify.SMTPHost = "smtp.example.com"
	cfg.Notify.To = "me@example.com"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.General.Currency != "EUR" || got.Store.RedisAddr != "localhost:6379" || got.Daemon.Schedule != "0 8 * * *" {
		t.Errorf("round trip = %+v", got)
	}
	if !got.Notify.Enabled() {
		t.Error("notify should be enabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SUBTRACK_STORE_DRIVER", "memory")
	t.Setenv("SUBTRACK_REDIS_DB", "3")
	t.Setenv("SUBTRACK_SMTP_PASSWORD", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Driver != "memory" || cfg.Store.RedisDB != 3 || cfg.Notify.Password != "s3cret" {
		t.Errorf("env not applied: %+v", cfg)
	}

	t.Setenv("SUBTRACK_REDIS_DB", "three")
	if _, err := Load(); err == nil {
		t.Error("bad SUBTRACK_REDIS_DB accepted")
	}
}

func TestLoad_BadTOML(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(ConfigDir(), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ConfigPath(), []byte("[general\ncurrency = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("malformed config accepted")
	}
}
