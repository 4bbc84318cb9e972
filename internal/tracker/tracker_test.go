package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
)

// countingKV records writes so tests can assert on persistence.
type countingKV struct {
	*store.MemoryKV
	sets int
}

func (c *countingKV) Set(key, value string) error {
	c.sets++
	return c.MemoryKV.Set(key, value)
}

func fixedNow() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newEnv(t *testing.T) (*countingKV, *store.Store) {
	t.Helper()
	kv := &countingKV{MemoryKV: store.NewMemoryKV()}
	return kv, store.New(kv, nil)
}

func seedSubs(t *testing.T, st *store.Store, subs ...model.Subscription) {
	t.Helper()
	st.SaveSubscriptions(subs)
}

func sub(id, renewal string, cycle model.BillingCycle) model.Subscription {
	return model.Subscription{ID: id, Vendor: "Vendor " + id, RenewalDate: renewal, Amount: 10, ColorTag: "#EF4444", BillingCycle: cycle}
}

func TestSubscriptions_LoadRenewsAndPersistsOnce(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st,
		sub("1", "2024-01-01", model.CycleMonthly),
		sub("2", "2024-02-20", model.CycleWeekly),
		sub("3", "2024-06-01", model.CycleYearly),
	)
	kv.sets = 0

	c := NewSubscriptions(st, WithClock(fixedNow))
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if kv.sets != 1 {
		t.Fatalf("persisted %d times, want 1", kv.sets)
	}

	got := st.Subscriptions()
	want := map[string]string{"1": "2024-04-01", "2": "2024-03-19", "3": "2024-06-01"}
	for _, s := range got {
		if s.RenewalDate != want[s.ID] {
			t.Errorf("sub %s RenewalDate = %s, want %s", s.ID, s.RenewalDate, want[s.ID])
		}
	}
}

func TestSubscriptions_LoadNoChangeNoWrite(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st, sub("1", "2024-06-01", model.CycleMonthly))
	kv.sets = 0

	c := NewSubscriptions(st, WithClock(fixedNow))
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if kv.sets != 0 {
		t.Fatalf("persisted %d times, want 0", kv.sets)
	}
}

func TestSubscriptions_LoadPersistsCycleNormalization(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st, sub("1", "2024-06-01", ""))
	kv.sets = 0

	c := NewSubscriptions(st, WithClock(fixedNow))
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if kv.sets != 1 {
		t.Fatalf("persisted %d times, want 1", kv.sets)
	}
	if got := st.Subscriptions()[0].BillingCycle; got != model.CycleMonthly {
		t.Fatalf("stored cycle = %q, want monthly", got)
	}
}

func TestSubscriptions_LoadReportsRenewalLimit(t *testing.T) {
	_, st := newEnv(t)
	seedSubs(t, st, sub("old", "0001-01-01", model.CycleWeekly), sub("ok", "2024-01-01", model.CycleMonthly))

	c := NewSubscriptions(st, WithClock(fixedNow))
	err := c.Load()
	if !errors.Is(err, billing.ErrRenewalLimit) {
		t.Fatalf("Load err = %v, want ErrRenewalLimit", err)
	}
	if s, _ := c.Get("old"); s.RenewalDate != "0001-01-01" {
		t.Fatalf("failed record changed: %+v", s)
	}
	if s, _ := c.Get("ok"); s.RenewalDate != "2024-04-01" {
		t.Fatalf("healthy record not renewed: %+v", s)
	}
}

func TestSubscriptions_Add(t *testing.T) {
	_, st := newEnv(t)
	c := NewSubscriptions(st, WithClock(fixedNow), WithIDGenerator(seqIDs()))
	_ = c.Load()

	draft := sub("", "2024-04-01", model.CycleMonthly)
	draft.ID = "ignored"
	added, err := c.Add(draft)
	if err != nil {
		t.Fatal(err)
	}
	if added.ID != "id-1" {
		t.Fatalf("ID = %q, want id-1", added.ID)
	}
	if got := st.Subscriptions(); len(got) != 1 || got[0] != added {
		t.Fatalf("stored = %+v", got)
	}
}

func TestSubscriptions_AddRejectsInvalid(t *testing.T) {
	kv, st := newEnv(t)
	c := NewSubscriptions(st)
	kv.sets = 0

	_, err := c.Add(model.Subscription{Vendor: "X", RenewalDate: "2024-04-01", ColorTag: "#EF4444"})
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field(model.FieldAmount) == "" {
		t.Fatalf("err = %v, want amount validation error", err)
	}
	if kv.sets != 0 || len(c.All()) != 0 {
		t.Fatal("invalid draft was saved")
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestSubscriptions_Update(t *testing.T) {
	_, st := newEnv(t)
	seedSubs(t, st, sub("1", "2024-04-01", model.CycleMonthly))
	c := NewSubscriptions(st, WithClock(fixedNow))
	_ = c.Load()

	draft := sub("other", "2024-05-05", model.CycleYearly)
	draft.Vendor = "Renamed"
	got, err := c.Update("1", draft)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "1" || got.Vendor != "Renamed" || got.BillingCycle != model.CycleYearly {
		t.Fatalf("Update = %+v", got)
	}
	if st.Subscriptions()[0] != got {
		t.Fatalf("stored = %+v", st.Subscriptions()[0])
	}
}

func TestSubscriptions_UnknownIDIsNoop(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st, sub("1", "2024-04-01", model.CycleMonthly))
	c := NewSubscriptions(st, WithClock(fixedNow))
	_ = c.Load()
	kv.sets = 0

	if _, err := c.Update("nope", sub("", "2024-04-01", model.CycleMonthly)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update err = %v", err)
	}
	if _, err := c.Delete("nope", func(model.Subscription) bool { return true }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
	if _, err := c.MarkAsPaid("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkAsPaid err = %v", err)
	}
	if kv.sets != 0 {
		t.Fatalf("persisted %d times for unknown ids", kv.sets)
	}
}

func TestSubscriptions_DeleteLeavesOthersByteIdentical(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st,
		sub("1", "2024-04-01", model.CycleMonthly),
		sub("2", "2024-05-01", model.CycleQuarterly),
		sub("3", "2024-06-01", model.CycleYearly),
	)
	c := NewSubscriptions(st, WithClock(fixedNow))
	_ = c.Load()

	before, _, _ := kv.Get(store.KeySubscriptions)
	var rawBefore []json.RawMessage
	if err := json.Unmarshal([]byte(before), &rawBefore); err != nil {
		t.Fatal(err)
	}

	deleted, err := c.Delete("2", func(s model.Subscription) bool { return s.ID == "2" })
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}

	after, _, _ := kv.Get(store.KeySubscriptions)
	var rawAfter []json.RawMessage
	if err := json.Unmarshal([]byte(after), &rawAfter); err != nil {
		t.Fatal(err)
	}
	if len(rawAfter) != 2 {
		t.Fatalf("%d records after delete, want 2", len(rawAfter))
	}
	if string(rawAfter[0]) != string(rawBefore[0]) || string(rawAfter[1]) != string(rawBefore[2]) {
		t.Fatalf("surviving records changed:\nbefore %s\nafter  %s", before, after)
	}
}

func TestSubscriptions_DeleteRequiresConfirmation(t *testing.T) {
	kv, st := newEnv(t)
	seedSubs(t, st, sub("1", "2024-04-01", model.CycleMonthly))
	c := NewSubscriptions(st, WithClock(fixedNow))
	_ = c.Load()
	kv.sets = 0

	for name, confirm := range map[string]ConfirmFunc[model.Subscription]{
		"nil":      nil,
		"declined": func(model.Subscription) bool { return false },
	} {
		deleted, err := c.Delete("1", confirm)
		if err != nil || deleted {
			t.Errorf("%s confirm: deleted=%v err=%v", name, deleted, err)
		}
	}
	if kv.sets != 0 || len(c.All()) != 1 {
		t.Fatal("record removed without confirmation")
	}
}

func TestSubscriptions_MarkAsPaidSingleStep(t *testing.T) {
	_, st := newEnv(t)
	c := NewSubscriptions(st, WithClock(fixedNow), WithIDGenerator(seqIDs()))
	_ = c.Load()
	s, err := c.Add(sub("", "2024-01-01", model.CycleMonthly))
	if err != nil {
		t.Fatal(err)
	}

	// already overdue by more than one cycle: still moves only one month
	paid, err := c.MarkAsPaid(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paid.RenewalDate != "2024-02-01" {
		t.Fatalf("RenewalDate = %s, want 2024-02-01", paid.RenewalDate)
	}
	if st.Subscriptions()[0].RenewalDate != "2024-02-01" {
		t.Fatal("mark paid not persisted")
	}
}

func TestSortByDue(t *testing.T) {
	in := []model.Subscription{sub("b", "2024-05-01", ""), sub("a", "2024-04-01", ""), sub("c", "2024-04-01", "")}
	got := SortByDue(in)
	if got[0].ID != "a" || got[1].ID != "c" || got[2].ID != "b" {
		t.Fatalf("order = %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if in[0].ID != "b" {
		t.Fatal("SortByDue mutated its input")
	}
}

func loan(id string) model.Loan {
	return model.Loan{
		ID: id, Vendor: "Loan " + id, TotalLoanAmount: 1000, AmountPaidSoFar: 250,
		PaymentAmount: 100, PaymentDate: "2024-03-20", ColorTag: "#3B82F6", BillingCycle: model.CycleMonthly,
	}
}

func TestLoans_LoadRenews(t *testing.T) {
	_, st := newEnv(t)
	l := loan("1")
	l.PaymentDate = "2024-02-01"
	l.BillingCycle = ""
	st.SaveLoans([]model.Loan{l})

	c := NewLoans(st, WithClock(fixedNow))
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	got := st.Loans()[0]
	if got.PaymentDate != "2024-04-01" || got.BillingCycle != model.CycleMonthly {
		t.Fatalf("stored loan = %+v", got)
	}
}

func TestLoans_CRUD(t *testing.T) {
	_, st := newEnv(t)
	c := NewLoans(st, WithClock(fixedNow), WithIDGenerator(seqIDs()))
	_ = c.Load()

	added, err := c.Add(loan(""))
	if err != nil {
		t.Fatal(err)
	}
	if added.ID != "id-1" {
		t.Fatalf("ID = %q", added.ID)
	}

	bad := loan("")
	bad.AmountPaidSoFar = 2000
	if _, err := c.Update(added.ID, bad); err == nil {
		t.Fatal("overpaid update accepted")
	}

	upd := loan("")
	upd.Vendor = "Mortgage"
	if _, err := c.Update(added.ID, upd); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(added.ID); got.Vendor != "Mortgage" {
		t.Fatalf("Get = %+v", got)
	}

	deleted, err := c.Delete(added.ID, func(model.Loan) bool { return true })
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}
	if len(st.Loans()) != 0 {
		t.Fatal("loan still stored")
	}
}

func TestLoans_RecordPayment(t *testing.T) {
	_, st := newEnv(t)
	st.SaveLoans([]model.Loan{loan("1")})
	c := NewLoans(st, WithClock(fixedNow))
	_ = c.Load()

	got, err := c.RecordPayment("1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AmountPaidSoFar != 350 {
		t.Errorf("AmountPaidSoFar = %v, want 350", got.AmountPaidSoFar)
	}
	if got.LastPaymentDate != "2024-03-15" {
		t.Errorf("LastPaymentDate = %s, want 2024-03-15", got.LastPaymentDate)
	}
	if got.PaymentDate != "2024-04-20" {
		t.Errorf("PaymentDate = %s, want 2024-04-20", got.PaymentDate)
	}
	if st.Loans()[0] != got {
		t.Error("payment not persisted")
	}
}

func TestLoans_RecordPaymentCapsAtPrincipal(t *testing.T) {
	_, st := newEnv(t)
	l := loan("1")
	l.AmountPaidSoFar = 950
	st.SaveLoans([]model.Loan{l})
	c := NewLoans(st, WithClock(fixedNow))
	_ = c.Load()

	got, err := c.RecordPayment("1")
	if err != nil {
		t.Fatal(err)
	}
	if got.AmountPaidSoFar != 1000 {
		t.Fatalf("AmountPaidSoFar = %v, want 1000", got.AmountPaidSoFar)
	}
	if d := billing.CalculateLoanDetails(got); d.RemainingBalance != 0 || d.PaymentProgress != 100 {
		t.Fatalf("details = %+v", d)
	}
}

func TestLoans_ReplaceAndReload(t *testing.T) {
	_, st := newEnv(t)
	c := NewLoans(st, WithClock(fixedNow))
	c.Replace([]model.Loan{loan("x"), loan("y")})
	if len(st.Loans()) != 2 {
		t.Fatal("Replace not persisted")
	}
	st.Reset()
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	if len(c.All()) != 0 {
		t.Fatalf("after reset+load have %d loans", len(c.All()))
	}
}
