package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/theirongolddev/subtrack/internal/model"
)

type failingKV struct {
	getErr, setErr, delErr error
}

func (f failingKV) Get(string) (string, bool, error) { return "", false, f.getErr }
func (f failingKV) Set(string, string) error        { return f.setErr }
func (f failingKV) Delete(string) error             { return f.delErr }
func (f failingKV) Close() error                    { return nil }

func sampleSubs() []model.Subscription {
	return []model.Subscription{
		{ID: "a", Vendor: "Netflix", RenewalDate: "2024-04-01", Amount: 15.49, ColorTag: "#EF4444", BillingCycle: model.CycleMonthly},
		{ID: "b", Vendor: "iCloud", RenewalDate: "2024-05-10", Amount: 0.99, ColorTag: "#3B82F6"},
	}
}

func TestStore_SubscriptionsRoundTrip(t *testing.T) {
	s := New(NewMemoryKV(), nil)
	if got := s.Subscriptions(); got == nil || len(got) != 0 {
		t.Fatalf("empty store Subscriptions() = %#v, want empty non-nil slice", got)
	}

	s.SaveSubscriptions(sampleSubs())
	got := s.Subscriptions()
	if len(got) != 2 || got[0] != sampleSubs()[0] || got[1] != sampleSubs()[1] {
		t.Fatalf("Subscriptions() = %+v", got)
	}
}

func TestStore_AbsentCycleOmittedOnDisk(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, nil)
	s.SaveSubscriptions(sampleSubs()[1:])

	raw, _, _ := kv.Get(KeySubscriptions)
	want := `[{"id":"b","vendor":"iCloud","renewalDate":"2024-05-10","amount":0.99,"colorTag":"#3B82F6"}]`
	if raw != want {
		t.Fatalf("stored = %s\nwant     %s", raw, want)
	}
}

func TestStore_SaveNilWritesEmptyArray(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, nil)
	s.SaveLoans(nil)
	if raw, _, _ := kv.Get(KeyLoans); raw != "[]" {
		t.Fatalf("stored = %q, want []", raw)
	}
}

func TestStore_CorruptValueIsEmptyAndLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	kv := NewMemoryKV()
	_ = kv.Set(KeyLoans, "{not json")
	s := New(kv, log)

	if got := s.Loans(); len(got) != 0 {
		t.Fatalf("Loans() = %+v, want empty", got)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", entry)
	}
	if entry.Data["key"] != KeyLoans || entry.Data["op"] != "decode" {
		t.Fatalf("log fields = %v", entry.Data)
	}
}

func TestStore_FailuresAreSwallowed(t *testing.T) {
	log, hook := test.NewNullLogger()
	boom := errors.New("disk full")
	s := New(failingKV{getErr: boom, setErr: boom, delErr: boom}, log)

	if got := s.Subscriptions(); len(got) != 0 {
		t.Fatalf("Subscriptions() = %+v, want empty", got)
	}
	s.SaveSubscriptions(sampleSubs())
	s.Reset()
	if s.BannerDismissed() {
		t.Fatal("BannerDismissed() = true on failing store")
	}

	// read, write, two deletes, banner read
	if n := len(hook.AllEntries()); n != 5 {
		t.Fatalf("logged %d entries, want 5", n)
	}
	for _, e := range hook.AllEntries() {
		if e.Data[logrus.ErrorKey] != boom {
			t.Fatalf("entry missing error field: %v", e.Data)
		}
	}
}

func TestStore_Banner(t *testing.T) {
	s := New(NewMemoryKV(), nil)
	if s.BannerDismissed() {
		t.Fatal("banner dismissed by default")
	}
	s.SetBannerDismissed(true)
	if !s.BannerDismissed() {
		t.Fatal("banner not dismissed after SetBannerDismissed(true)")
	}
	s.ResetBanner()
	if s.BannerDismissed() {
		t.Fatal("banner still dismissed after ResetBanner")
	}
}

func TestStore_ResetClearsCollectionsOnly(t *testing.T) {
	kv := NewMemoryKV()
	s := New(kv, nil)
	s.SaveSubscriptions(sampleSubs())
	s.SaveLoans([]model.Loan{{ID: "l1", Vendor: "Car"}})
	s.SetBannerDismissed(true)

	s.Reset()

	for _, k := range []string{KeySubscriptions, KeyLoans} {
		if _, ok, _ := kv.Get(k); ok {
			t.Errorf("%s still present after Reset", k)
		}
	}
	if !s.BannerDismissed() {
		t.Error("Reset cleared the banner preference")
	}
}

func TestSQLiteKV(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "subtrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = kv.Close() }()

	if _, ok, err := kv.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := kv.Get("k"); !ok || err != nil || v != "v2" {
		t.Fatalf("Get(k) = %q, %v, %v", v, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatal("k present after delete")
	}
}

func TestSQLiteKV_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtrack.db")
	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	New(kv, nil).SaveSubscriptions(sampleSubs())
	_ = kv.Close()

	kv, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = kv.Close() }()
	if got := New(kv, nil).Subscriptions(); len(got) != 2 {
		t.Fatalf("reopened store has %d subscriptions, want 2", len(got))
	}
}

func TestOpen(t *testing.T) {
	kv, err := Open(Options{Driver: DriverMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.(*MemoryKV); !ok {
		t.Fatalf("memory driver returned %T", kv)
	}

	kv, err = Open(Options{Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.(*SQLiteKV); !ok {
		t.Fatalf("default driver returned %T", kv)
	}
	_ = kv.Close()

	mr := miniredis.RunT(t)
	kv, err = Open(Options{Driver: DriverRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"})
	if err != nil {
		t.Fatal(err)
	}
	r, ok := kv.(*RedisKV)
	if !ok {
		t.Fatalf("redis driver returned %T", kv)
	}
	if got := r.key(KeyLoans); got != "t:subtrack_loans" {
		t.Fatalf("prefixed key = %q", got)
	}
	_ = r.Close()

	if _, err := Open(Options{Driver: "bolt"}); err == nil {
		t.Fatal("unknown driver accepted")
	}
	if _, err := Open(Options{Driver: DriverRedis}); err == nil {
		t.Fatal("redis without address accepted")
	}
}

func TestOpen_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Open(Options{Driver: DriverRedis, RedisAddr: addr}); err == nil {
		t.Fatal("Open succeeded against a stopped redis server")
	}
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(mr.Addr(), 0, "t:")
	defer func() { _ = kv.Close() }()

	if _, ok, err := kv.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, err := kv.Get("k"); !ok || err != nil || v != "v2" {
		t.Fatalf("Get(k) = %q, %v, %v", v, ok, err)
	}
	if v, err := mr.Get("t:k"); err != nil || v != "v2" {
		t.Fatalf("server value under prefixed key = %q, %v", v, err)
	}
	if mr.Exists("k") {
		t.Fatal("value stored without prefix")
	}

	if err := kv.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatal("k present after delete")
	}
}

func TestRedisKV_StoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(mr.Addr(), 0, "")
	defer func() { _ = kv.Close() }()

	New(kv, nil).SaveSubscriptions(sampleSubs())
	if got := New(kv, nil).Subscriptions(); len(got) != 2 {
		t.Fatalf("redis store has %d subscriptions, want 2", len(got))
	}
}

func TestRedisKV_ServerErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedisKV(mr.Addr(), 0, "")
	defer func() { _ = kv.Close() }()

	mr.SetError("ERR server unavailable")
	if _, ok, err := kv.Get("k"); ok || err == nil {
		t.Fatalf("Get during server error = ok %v, err %v", ok, err)
	}
	if err := kv.Set("k", "v"); err == nil {
		t.Fatal("Set during server error succeeded")
	}
}
