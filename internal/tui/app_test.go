package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tracker"
)

func fixedNow() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local) }

func newTestApp(t *testing.T) (App, *store.Store) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	st := store.New(store.NewMemoryKV(), nil)
	st.SaveSubscriptions([]model.Subscription{
		{ID: "s1", Vendor: "Netflix", RenewalDate: "2024-03-18", Amount: 15.49, ColorTag: "#EF4444", BillingCycle: model.CycleMonthly},
		{ID: "s2", Vendor: "Domain", RenewalDate: "2024-09-01", Amount: 12, ColorTag: "#6B7280", BillingCycle: model.CycleYearly},
	})
	st.SaveLoans([]model.Loan{
		{ID: "l1", Vendor: "Car", TotalLoanAmount: 1000, AmountPaidSoFar: 250, PaymentAmount: 100, PaymentDate: "2024-03-20", ColorTag: "#3B82F6", BillingCycle: model.CycleMonthly},
	})

	a := NewApp(Deps{
		Config:        config.DefaultConfig(),
		Store:         st,
		Subscriptions: tracker.NewSubscriptions(st, tracker.WithClock(fixedNow)),
		Loans:         tracker.NewLoans(st, tracker.WithClock(fixedNow)),
		Now:           fixedNow,
	})
	a = send(t, a, a.loadCmd()())
	a = send(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, st
}

func send(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_LoadsSortedRecords(t *testing.T) {
	a, _ := newTestApp(t)

	if !a.loaded {
		t.Fatal("app not marked loaded")
	}
	if len(a.subs) != 2 || a.subs[0].ID != "s1" {
		t.Fatalf("subs = %+v", a.subs)
	}
	if a.summary.TotalMonthlyCost != 15.49 || a.summary.OutstandingLoans != 750 {
		t.Fatalf("summary = %+v", a.summary)
	}
}

func TestApp_TabKeys(t *testing.T) {
	a, _ := newTestApp(t)

	for _, tt := range []struct {
		key  string
		want int
	}{
		{"s", tabSubscriptions},
		{"l", tabLoans},
		{"x", tabSettings},
		{"d", tabDashboard},
		{"tab", tabSubscriptions},
	} {
		a = send(t, a, key(tt.key))
		if a.activeTab != tt.want {
			t.Fatalf("after %q activeTab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestApp_DismissBannerPersists(t *testing.T) {
	a, st := newTestApp(t)

	if a.bannerDismissed {
		t.Fatal("banner should start visible")
	}
	if !strings.Contains(a.View(), "Welcome to subtrack") {
		t.Fatal("dashboard should show the banner")
	}

	a = send(t, a, key("b"))
	if !a.bannerDismissed || !st.BannerDismissed() {
		t.Fatal("b should dismiss and persist the banner")
	}
	if strings.Contains(a.View(), "Welcome to subtrack") {
		t.Fatal("banner still rendered after dismissal")
	}
}

func TestApp_MarkPaidWithinWindow(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("s"))
	a = send(t, a, key("p"))

	if got := st.Subscriptions()[0].RenewalDate; got != "2024-04-18" {
		t.Fatalf("renewal after mark paid = %s, want 2024-04-18", got)
	}
	if a.flashErr {
		t.Fatalf("unexpected error flash %q", a.flash)
	}
}

func TestApp_MarkPaidRefusedOutsideWindow(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("s"))
	a = send(t, a, key("j")) // Domain, renews in September
	a = send(t, a, key("p"))

	if !a.flashErr {
		t.Fatal("expected an error flash")
	}
	for _, s := range st.Subscriptions() {
		if s.ID == "s2" && s.RenewalDate != "2024-09-01" {
			t.Fatalf("s2 renewal changed to %s", s.RenewalDate)
		}
	}
}

func TestApp_RecordPayment(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("l"))
	a = send(t, a, key("p"))

	l := st.Loans()[0]
	if l.AmountPaidSoFar != 350 || l.PaymentDate != "2024-04-20" || l.LastPaymentDate != "2024-03-15" {
		t.Fatalf("loan after payment = %+v", l)
	}
}

func TestApp_DeleteNeedsConfirmation(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("s"))
	a = send(t, a, key("D"))
	if a.form == nil || a.pending == nil || a.pending.kind != formDeleteSubscription {
		t.Fatal("D should open the delete confirmation")
	}

	// Esc cancels without deleting.
	a = send(t, a, key("esc"))
	if a.form != nil || len(st.Subscriptions()) != 2 {
		t.Fatal("esc should close the form and keep the record")
	}

	// A confirmed submission deletes exactly the selected record.
	a = send(t, a, key("D"))
	*a.pending.confirm = true
	a.submitForm()
	subs := st.Subscriptions()
	if len(subs) != 1 || subs[0].ID != "s2" {
		t.Fatalf("subs after delete = %+v", subs)
	}
}

func TestApp_InvalidDraftReopensForm(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("s"))
	a = send(t, a, key("a"))
	if a.pending == nil || a.pending.kind != formAddSubscription {
		t.Fatal("a should open the add form")
	}
	a.pending.sub.Vendor = "Spotify"
	a.pending.sub.Amount = "0"
	a.pending.sub.RenewalDate = "2024-04-01"

	a.submitForm()
	if a.form == nil || a.pending == nil {
		t.Fatal("invalid draft should reopen the form")
	}
	if !strings.Contains(a.pending.errMsg, "Amount must be greater than 0") {
		t.Fatalf("errMsg = %q", a.pending.errMsg)
	}
	if len(st.Subscriptions()) != 2 {
		t.Fatal("invalid draft was persisted")
	}

	a.pending.sub.Amount = "9.99"
	a.submitForm()
	if a.form != nil {
		t.Fatalf("valid draft should close the form, errMsg=%q", a.pending.errMsg)
	}
	if len(st.Subscriptions()) != 3 {
		t.Fatal("valid draft was not persisted")
	}
}

func TestApp_ResetClearsData(t *testing.T) {
	a, st := newTestApp(t)

	a = send(t, a, key("x"))
	a.settings.cursor = settingsReset
	a = send(t, a, key("enter"))
	if a.pending == nil || a.pending.kind != formReset {
		t.Fatal("enter on reset should ask for confirmation")
	}
	*a.pending.confirm = true
	cmd := a.submitForm()
	if cmd == nil {
		t.Fatal("reset should reload")
	}
	a = send(t, a, cmd())

	if len(st.Subscriptions()) != 0 || len(st.Loans()) != 0 {
		t.Fatal("store not cleared")
	}
	if len(a.subs) != 0 || len(a.loans) != 0 {
		t.Fatal("view state not reloaded after reset")
	}
}

func TestApp_ViewFitsTerminal(t *testing.T) {
	a, _ := newTestApp(t)

	for _, tab := range []string{"d", "s", "l", "x"} {
		a = send(t, a, key(tab))
		lines := strings.Split(a.View(), "\n")
		if len(lines) != 40 {
			t.Errorf("tab %s: %d lines, want 40", tab, len(lines))
		}
	}

	a = send(t, a, tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(a.View(), "Terminal too narrow") {
		t.Error("narrow terminal message missing")
	}
}
