package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	l, err := New("", "", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %v, want warn", l.GetLevel())
	}
	l.Info("hidden")
	l.WithField("key", "subtrack_loans").Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "key=subtrack_loans") {
		t.Fatalf("output = %q", out)
	}
}

func TestNew_EnvAndJSON(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	var buf bytes.Buffer
	l, err := New("", FormatJSON, &buf)
	if err != nil {
		t.Fatal(err)
	}
	l.WithField("op", "write").Debug("dbg")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not JSON: %q", buf.String())
	}
	if entry["op"] != "write" || entry["msg"] != "dbg" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("loud", "", &bytes.Buffer{}); err == nil {
		t.Error("bad level accepted")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("bad format accepted")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "subtrack.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
}
