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

func (a App) selectedSubscription() (model.Subscription, bool) {
	if a.subCursor < 0 || a.subCursor >= len(a.subs) {
		return model.Subscription{}, false
	}
	return a.subs[a.subCursor], true
}

func (a App) updateSubscriptionsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.subCursor = 0
	case "G":
		a.subCursor = clampCursor(len(a.subs)-1, len(a.subs))
	case "a":
		return a, a.openAddSubscription()
	case "e", "enter":
		if s, ok := a.selectedSubscription(); ok {
			return a, a.openEditSubscription(s)
		}
	case "D", "delete":
		if s, ok := a.selectedSubscription(); ok {
			return a, a.openDeleteSubscription(s)
		}
	case "p":
		if s, ok := a.selectedSubscription(); ok {
			a.markPaid(s)
		}
	}
	return a, nil
}

// markPaid advances the renewal by one cycle. It is only offered close to
// the renewal date.
func (a *App) markPaid(s model.Subscription) {
	days, err := billing.DaysUntil(s.RenewalDate, a.deps.Now())
	if err != nil {
		a.setFlash("Renewal date is not valid", true)
		return
	}
	if days > markPaidWindow {
		a.setFlash(fmt.Sprintf("Mark as Paid is available within %d days of renewal", markPaidWindow), true)
		return
	}
	updated, err := a.deps.Subscriptions.MarkAsPaid(s.ID)
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		a.setFlash("Record no longer exists", true)
	case err != nil:
		a.setFlash(err.Error(), true)
	default:
		a.deps.Logger.WithField("id", s.ID).Info("subscription marked as paid")
		a.setFlash(fmt.Sprintf("%s paid, next renewal %s", updated.Vendor, cli.FormatDate(updated.RenewalDate)), false)
	}
	a.refresh()
}

func (a App) renderSubscriptionsTab(cw int) string {
	t := theme.Active

	if len(a.subs) == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("Subscriptions", dimStyle.Render("No subscriptions yet. Press a to add one."), cw)
	}

	listW, detailW := cw, 0
	if !a.isCompactLayout() {
		widths := components.LayoutRow(cw, 5)
		listW = widths[0] + widths[1] + widths[2]
		detailW = cw - listW
	}

	list := components.ContentCard(fmt.Sprintf("Subscriptions (%d)", len(a.subs)), a.renderSubscriptionRows(components.CardInnerWidth(listW)), listW)
	s, _ := a.selectedSubscription()
	if detailW == 0 {
		return list + "\n" + components.ContentCard(s.Vendor, a.renderSubscriptionDetail(s), cw)
	}
	return components.CardRow([]string{list, components.ContentCard(s.Vendor, a.renderSubscriptionDetail(s), detailW)})
}

func (a App) renderSubscriptionRows(innerW int) string {
	t := theme.Active
	now := a.deps.Now()

	const amountW, dateW, badgeW = 11, 13, 13
	vendorW := innerW - amountW - dateW - badgeW - 5
	if vendorW < 8 {
		vendorW = 8
	}

	rows := make([]string, len(a.subs))
	for i, s := range a.subs {
		bg := t.Surface
		fg := t.TextPrimary
		if i == a.subCursor {
			bg = t.SurfaceHover
			fg = t.AccentBright
		}
		cell := lipgloss.NewStyle().Foreground(fg).Background(bg)

		badge := ""
		days, err := billing.DaysUntil(s.RenewalDate, now)
		if err == nil {
			badge = cli.DueBadge(days, markPaidWindow)
		}
		badgeStyle := lipgloss.NewStyle().Foreground(t.DueColor(days)).Background(bg).Bold(true)

		rows[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(s.ColorTag)).Background(bg).Render("●") +
			cell.Render(" "+padCell(s.Vendor, vendorW, false)+" ") +
			cell.Render(padCell(a.money.Format(s.Amount), amountW, true)+" ") +
			cell.Render(padCell(cli.FormatDate(s.RenewalDate), dateW, true)+" ") +
			badgeStyle.Render(padCell(badge, badgeW, true))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderSubscriptionDetail(s model.Subscription) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	type field struct{ label, value string }
	fields := []field{
		{s.BillingCycle.CostLabel(), a.money.Format(s.Amount)},
		{"Billing Cycle", s.BillingCycle.OrDefault().Label()},
		{"Renewal Date", cli.FormatDate(s.RenewalDate)},
	}
	if days, err := billing.DaysUntil(s.RenewalDate, a.deps.Now()); err == nil {
		fields = append(fields, field{"Status", cli.FormatDays(days)})
	}
	if s.Description != "" {
		fields = append(fields, field{"Description", s.Description})
	}
	if s.DatePurchased != "" {
		fields = append(fields, field{"Purchased", cli.FormatDate(s.DatePurchased)})
	}
	fields = append(fields,
		field{"Monthly Equivalent", a.money.Format(billing.MonthlyEquivalent(s.Amount, s.BillingCycle))},
		field{"Color", model.ColorName(s.ColorTag)},
	)

	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = labelStyle.Render(fmt.Sprintf("%-19s", f.label)) + valueStyle.Render(f.value)
	}
	return strings.Join(lines, "\n")
}
