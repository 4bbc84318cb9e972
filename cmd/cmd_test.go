package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/export"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tracker"
)

func TestResolveID(t *testing.T) {
	subs := []model.Subscription{
		{ID: "0190a1b2-aaaa"},
		{ID: "0190a1b2-bbbb"},
		{ID: "0190ffff-cccc"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"0190a1b2-aaaa", "0190a1b2-aaaa", false},
		{"0190f", "0190ffff-cccc", false},
		{"0190a1b2-b", "0190a1b2-bbbb", false},
		{"0190a1b2", "", true}, // ambiguous
		{"zzz", "", true},
		{"  ", "", true},
	}
	for _, tt := range tests {
		got, err := resolveID("subscription", subs, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Fatalf("resolveID(%q) err = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("resolveID(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	if _, err := resolveID("subscription", subs, "zzz"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0190a1b2-c3d4-7e5f"); got != "0190a1b2" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "127.0.0.1:9000", "--detach=true"})
	want := []string{"daemon", "--addr", "127.0.0.1:9000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDAndStateFiles(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "subtrackd.pid")

	if err := ensureDaemonNotRunning(pidFile); err != nil {
		t.Fatalf("ensureDaemonNotRunning with no pid file: %v", err)
	}

	if err := writePID(pidFile, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(pidFile)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}

	st := daemonRuntimeState{PID: 4242, Addr: "127.0.0.1:8788", StartedAt: time.Unix(1700000000, 0).UTC(), Schedule: "@daily", Store: "sqlite"}
	if err := writeState(statePath(pidFile), st); err != nil {
		t.Fatal(err)
	}
	got, err := readState(statePath(pidFile))
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartedAt.Equal(st.StartedAt) || got.Addr != st.Addr || got.Schedule != st.Schedule {
		t.Errorf("readState = %+v, want %+v", got, st)
	}

	if err := os.WriteFile(pidFile, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(pidFile); err == nil {
		t.Error("readPID accepted a malformed pid file")
	}
}

func TestExportFormat(t *testing.T) {
	defer func() { flagExportFormat, flagExportOut = "", "" }()

	tests := []struct {
		format, out string
		want        export.Format
		wantErr     bool
	}{
		{"", "", export.FormatJSON, false},
		{"", "backup.yml", export.FormatYAML, false},
		{"", "report.xlsx", export.FormatXLSX, false},
		{"md", "report.xlsx", export.FormatMarkdown, false},
		{"pdf", "", "", true},
		{"", "backup.txt", "", true},
	}
	for _, tt := range tests {
		flagExportFormat, flagExportOut = tt.format, tt.out
		got, err := exportFormat()
		if (err != nil) != tt.wantErr {
			t.Fatalf("exportFormat(%q, %q) err = %v", tt.format, tt.out, err)
		}
		if got != tt.want {
			t.Errorf("exportFormat(%q, %q) = %q, want %q", tt.format, tt.out, got, tt.want)
		}
	}
}

func TestStoreOptionsOverride(t *testing.T) {
	defer func() { flagStore = "" }()

	cfg := config.DefaultConfig()
	cfg.Store.Path = "/tmp/x.db"

	if got := storeOptions(cfg); got.Driver != store.DriverSQLite || got.Path != "/tmp/x.db" {
		t.Errorf("storeOptions = %+v", got)
	}
	flagStore = store.DriverMemory
	if got := storeOptions(cfg); got.Driver != store.DriverMemory {
		t.Errorf("override driver = %q", got.Driver)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "****",
		"app-password-123": "ap...23",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintValidationPassesOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	if got := printValidation(plain); got != plain {
		t.Errorf("printValidation changed a plain error: %v", got)
	}
	if got := cancelled(errCancelled); got != nil {
		t.Errorf("cancelled(errCancelled) = %v, want nil", got)
	}
}
