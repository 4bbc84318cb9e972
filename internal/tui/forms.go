package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/tracker"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formAddSubscription formKind = iota
	formEditSubscription
	formDeleteSubscription
	formAddLoan
	formEditLoan
	formDeleteLoan
	formReset
	formSetup
)

// pendingForm remembers what the open form is for. The form fields are
// bound to the pointers held here.
type pendingForm struct {
	kind    formKind
	id      string
	title   string
	sub     *model.SubscriptionForm
	loan    *model.LoanForm
	confirm *bool
	setup   *SetupValues
	errMsg  string // validation errors from the last submit
}

func (a App) formWidth() int {
	w := a.contentWidth() - 8
	if w > 72 {
		w = 72
	}
	if w < 40 {
		w = 40
	}
	return w
}

func (a *App) openForm(p *pendingForm, form *huh.Form) tea.Cmd {
	a.pending = p
	a.form = form.WithWidth(a.formWidth())
	return a.form.Init()
}

func (a *App) closeForm() {
	a.form = nil
	a.pending = nil
}

func cycleOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(model.Cycles))
	for i, c := range model.Cycles {
		opts[i] = huh.NewOption(c.Label(), string(c))
	}
	return opts
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(model.PresetColors))
	for i, c := range model.PresetColors {
		opts[i] = huh.NewOption(cli.Swatch(c.Value)+" "+c.Name, c.Value)
	}
	return opts
}

func dateInput(title, placeholder string, v *string) *huh.Input {
	return huh.NewInput().Title(title).Placeholder(placeholder).Value(v)
}

// NewSubscriptionForm builds the add/edit form bound to f. The CLI runs it
// standalone; the TUI embeds it.
func NewSubscriptionForm(f *model.SubscriptionForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Vendor").Value(&f.Vendor),
			huh.NewInput().Title("Description").Placeholder("optional").Value(&f.Description),
			huh.NewInput().Title("Amount").Value(&f.Amount),
			huh.NewSelect[string]().Title("Billing cycle").Options(cycleOptions()...).Value(&f.BillingCycle),
		),
		huh.NewGroup(
			dateInput("Renewal date", "YYYY-MM-DD", &f.RenewalDate),
			dateInput("Date purchased", "YYYY-MM-DD (optional)", &f.DatePurchased),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(&f.ColorTag),
		),
	).WithShowHelp(true)
}

// NewLoanForm builds the add/edit form bound to f.
func NewLoanForm(f *model.LoanForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Lender").Value(&f.Vendor),
			huh.NewInput().Title("Description").Placeholder("optional").Value(&f.Description),
			huh.NewInput().Title("Total loan amount").Value(&f.TotalLoanAmount),
			huh.NewInput().Title("Amount paid so far").Value(&f.AmountPaidSoFar),
			huh.NewInput().Title("Payment amount").Value(&f.PaymentAmount),
		),
		huh.NewGroup(
			dateInput("Next payment date", "YYYY-MM-DD", &f.PaymentDate),
			huh.NewSelect[string]().Title("Payment schedule").Options(cycleOptions()...).Value(&f.BillingCycle),
			dateInput("Last payment date", "YYYY-MM-DD (optional)", &f.LastPaymentDate),
			dateInput("Loan end date", "YYYY-MM-DD (optional)", &f.FinalPaymentDate),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(&f.ColorTag),
		),
	).WithShowHelp(true)
}

// NewConfirmForm asks a yes/no question, storing the answer in v.
func NewConfirmForm(title, affirmative string, v *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(v),
		),
	)
}

func (a *App) openAddSubscription() tea.Cmd {
	f := model.NewSubscriptionForm(nil)
	return a.openForm(&pendingForm{kind: formAddSubscription, title: "Add Subscription", sub: &f}, NewSubscriptionForm(&f))
}

func (a *App) openEditSubscription(s model.Subscription) tea.Cmd {
	f := model.NewSubscriptionForm(&s)
	return a.openForm(&pendingForm{kind: formEditSubscription, id: s.ID, title: "Edit " + s.Vendor, sub: &f}, NewSubscriptionForm(&f))
}

func (a *App) openDeleteSubscription(s model.Subscription) tea.Cmd {
	ok := false
	title := fmt.Sprintf("Delete %s?", s.Vendor)
	return a.openForm(&pendingForm{kind: formDeleteSubscription, id: s.ID, title: "Delete Subscription", confirm: &ok},
		NewConfirmForm(title, "Delete", &ok))
}

func (a *App) openAddLoan() tea.Cmd {
	f := model.NewLoanForm(nil)
	return a.openForm(&pendingForm{kind: formAddLoan, title: "Add Loan", loan: &f}, NewLoanForm(&f))
}

func (a *App) openEditLoan(l model.Loan) tea.Cmd {
	f := model.NewLoanForm(&l)
	return a.openForm(&pendingForm{kind: formEditLoan, id: l.ID, title: "Edit " + l.Vendor, loan: &f}, NewLoanForm(&f))
}

func (a *App) openDeleteLoan(l model.Loan) tea.Cmd {
	ok := false
	title := fmt.Sprintf("Delete %s?", l.Vendor)
	return a.openForm(&pendingForm{kind: formDeleteLoan, id: l.ID, title: "Delete Loan", confirm: &ok},
		NewConfirmForm(title, "Delete", &ok))
}

func (a *App) openResetForm() tea.Cmd {
	ok := false
	return a.openForm(&pendingForm{kind: formReset, title: "Reset", confirm: &ok},
		NewConfirmForm("Delete every subscription and loan? This cannot be undone.", "Reset", &ok))
}

func (a *App) openSetupForm() tea.Cmd {
	v := NewSetupValues(a.cfg)
	return a.openForm(&pendingForm{kind: formSetup, title: "Setup", setup: v}, NewSetupForm(v))
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a, a.submitForm()
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

// submitForm applies a completed form. Drafts that fail validation reopen
// the same form with the messages shown under it.
func (a *App) submitForm() tea.Cmd {
	p := a.pending
	a.closeForm()
	if p == nil {
		return nil
	}
	log := a.deps.Logger

	switch p.kind {
	case formAddSubscription, formEditSubscription:
		draft, err := p.sub.Subscription()
		if err == nil {
			if p.kind == formAddSubscription {
				draft, err = a.deps.Subscriptions.Add(draft)
			} else {
				draft, err = a.deps.Subscriptions.Update(p.id, draft)
			}
		}
		if err != nil {
			return a.reopen(p, NewSubscriptionForm(p.sub), err)
		}
		log.WithField("id", draft.ID).Info("subscription saved")
		a.setFlash("Saved "+draft.Vendor, false)

	case formAddLoan, formEditLoan:
		draft, err := p.loan.Loan()
		if err == nil {
			if p.kind == formAddLoan {
				draft, err = a.deps.Loans.Add(draft)
			} else {
				draft, err = a.deps.Loans.Update(p.id, draft)
			}
		}
		if err != nil {
			return a.reopen(p, NewLoanForm(p.loan), err)
		}
		log.WithField("id", draft.ID).Info("loan saved")
		a.setFlash("Saved "+draft.Vendor, false)

	case formDeleteSubscription:
		deleted, err := a.deps.Subscriptions.Delete(p.id, func(model.Subscription) bool { return *p.confirm })
		a.reportDelete(deleted, err)

	case formDeleteLoan:
		deleted, err := a.deps.Loans.Delete(p.id, func(model.Loan) bool { return *p.confirm })
		a.reportDelete(deleted, err)

	case formReset:
		if !*p.confirm {
			return nil
		}
		a.deps.Store.Reset()
		log.Info("all records reset")
		a.setFlash("All data cleared", false)
		return a.loadCmd()

	case formSetup:
		a.deps.NeedSetup = false
		a.applySetup(p.setup)
	}

	a.refresh()
	return nil
}

func (a *App) reopen(p *pendingForm, form *huh.Form, err error) tea.Cmd {
	p.errMsg = describeError(err)
	return a.openForm(p, form)
}

func (a *App) reportDelete(deleted bool, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		a.setFlash("Record no longer exists", true)
	case deleted:
		a.setFlash("Deleted", false)
	}
}

func (a *App) applySetup(v *SetupValues) {
	before := a.cfg.Store
	if err := v.Apply(&a.cfg); err != nil {
		a.setFlash(err.Error(), true)
		return
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	a.money = newMoney(a.cfg)
	if err := config.Save(a.cfg); err != nil {
		a.deps.Logger.WithError(err).Error("saving config")
		a.setFlash("Could not save config: "+err.Error(), true)
		return
	}
	if a.cfg.Store != before {
		a.setFlash("Saved; storage changes apply on next start", false)
		return
	}
	a.setFlash("Saved to "+config.ConfigPath(), false)
}

// describeError flattens validation errors into "field: message" lines.
func describeError(err error) string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = "• " + verr.Fields[f]
	}
	return strings.Join(lines, "\n")
}

func (a App) viewForm(cw int) string {
	t := theme.Active

	body := a.form.View()
	if a.pending != nil && a.pending.errMsg != "" {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		body += "\n" + errStyle.Render(a.pending.errMsg)
	}
	title := ""
	if a.pending != nil {
		title = a.pending.title
	}

	card := components.FocusCard(title, body, a.formWidth()+4)
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
