package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/tracker"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a App) selectedLoan() (model.Loan, bool) {
	if a.loanCursor < 0 || a.loanCursor >= len(a.loans) {
		return model.Loan{}, false
	}
	return a.loans[a.loanCursor], true
}

func (a App) updateLoansKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.loanCursor = 0
	case "G":
		a.loanCursor = clampCursor(len(a.loans)-1, len(a.loans))
	case "a":
		return a, a.openAddLoan()
	case "e", "enter":
		if l, ok := a.selectedLoan(); ok {
			return a, a.openEditLoan(l)
		}
	case "D", "delete":
		if l, ok := a.selectedLoan(); ok {
			return a, a.openDeleteLoan(l)
		}
	case "p":
		if l, ok := a.selectedLoan(); ok {
			a.recordPayment(l)
		}
	}
	return a, nil
}

func (a *App) recordPayment(l model.Loan) {
	if l.AmountPaidSoFar >= l.TotalLoanAmount {
		a.setFlash(l.Vendor+" is already paid off", true)
		return
	}
	updated, err := a.deps.Loans.RecordPayment(l.ID)
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		a.setFlash("Record no longer exists", true)
	case err != nil:
		a.setFlash(err.Error(), true)
	default:
		a.deps.Logger.WithField("id", l.ID).Info("loan payment recorded")
		a.setFlash(fmt.Sprintf("Payment recorded, %s remaining", a.money.Format(billing.CalculateLoanDetails(updated).RemainingBalance)), false)
	}
	a.refresh()
}

func (a App) renderLoansTab(cw int) string {
	t := theme.Active

	if len(a.loans) == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Loans", dimStyle.Render("No loans yet. Press a to add one."), cw)
	}

	listW, detailW := cw, 0
	if !a.isCompactLayout() {
		widths := components.LayoutRow(cw, 2)
		listW, detailW = widths[0], widths[1]
	}

	list := components.ContentCard(fmt.Sprintf("Loans (%d)", len(a.loans)), a.renderLoanRows(components.CardInnerWidth(listW)), listW)
	l, _ := a.selectedLoan()
	if detailW == 0 {
		return list + "\n" + components.ContentCard(l.Vendor, a.renderLoanDetail(l, components.CardInnerWidth(cw)), cw)
	}
	return components.CardRow([]string{list, components.ContentCard(l.Vendor, a.renderLoanDetail(l, components.CardInnerWidth(detailW)), detailW)})
}

func (a App) renderLoanRows(innerW int) string {
	t := theme.Active
	now := a.deps.Now()

	const amountW, dateW, progressW = 11, 13, 5
	vendorW := innerW - amountW - dateW - progressW - 5
	if vendorW < 8 {
		vendorW = 8
	}

	rows := make([]string, len(a.loans))
	for i, l := range a.loans {
		bg := t.Surface
		fg := t.TextPrimary
		if i == a.loanCursor {
			bg = t.SurfaceHover
			fg = t.AccentBright
		}
		cell := lipgloss.NewStyle().Foreground(fg).Background(bg)

		dateColor := t.TextMuted
		if days, err := billing.DaysUntil(l.PaymentDate, now); err == nil {
			dateColor = t.DueColor(days)
		}
		details := billing.CalculateLoanDetails(l)

		rows[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(l.ColorTag)).Background(bg).Render("●") +
			cell.Render(" "+padCell(l.Vendor, vendorW, false)+" ") +
			cell.Render(padCell(a.money.Format(l.PaymentAmount), amountW, true)+" ") +
			lipgloss.NewStyle().Foreground(dateColor).Background(bg).Render(padCell(cli.FormatDate(l.PaymentDate), dateW, true)+" ") +
			lipgloss.NewStyle().Foreground(components.ColorForProgress(details.PaymentProgress)).Background(bg).
				Render(padCell(cli.FormatPercent(details.PaymentProgress), progressW, true))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderLoanDetail(l model.Loan, innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	details := billing.CalculateLoanDetails(l)

	type field struct{ label, value string }
	fields := []field{
		{"Total Loan", a.money.Format(l.TotalLoanAmount)},
		{"Paid So Far", a.money.Format(l.AmountPaidSoFar)},
		{"Remaining", a.money.Format(details.RemainingBalance)},
		{"Payment", a.money.Format(l.PaymentAmount) + " " + strings.ToLower(l.BillingCycle.OrDefault().Label())},
		{"Next Payment", cli.FormatDate(l.PaymentDate)},
	}
	if days, err := billing.DaysUntil(l.PaymentDate, a.deps.Now()); err == nil {
		fields = append(fields, field{"Status", cli.FormatDays(days)})
	}
	if l.LastPaymentDate != "" {
		fields = append(fields, field{"Last Payment", cli.FormatDate(l.LastPaymentDate)})
	}
	if l.FinalPaymentDate != "" {
		fields = append(fields, field{"Loan End Date", cli.FormatDate(l.FinalPaymentDate)})
	}
	if l.Description != "" {
		fields = append(fields, field{"Description", l.Description})
	}

	lines := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-15s", f.label))+valueStyle.Render(f.value))
	}
	lines = append(lines, "", components.PayoffBar(details.PaymentProgress, innerW))
	return strings.Join(lines, "\n")
}
