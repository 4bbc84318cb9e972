package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/subtrack/internal/billing"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	upcomingRows  = 8
	maxVendorBars = 8
)

func (a App) updateDashboardKey(key string) (tea.Model, tea.Cmd) {
	if key == "b" && !a.bannerDismissed {
		a.deps.Store.SetBannerDismissed(true)
		a.bannerDismissed = true
	}
	return a, nil
}

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	sum := a.summary
	var b strings.Builder

	if !a.bannerDismissed {
		textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		body := textStyle.Render("Renewal and payment dates roll forward automatically once they pass.") + "\n" +
			textStyle.Render("Add records on the Subscriptions and Loans tabs.") + "\n" +
			dimStyle.Render("Press b to dismiss.")
		b.WriteString(components.FocusCard("Welcome to subtrack", body, cw))
		b.WriteString("\n")
	}

	metrics := []components.Metric{
		{Label: "Total Monthly Cost", Value: a.money.Format(sum.TotalMonthlyCost), Note: "monthly plans"},
		{Label: "Monthly Equivalent", Value: a.money.Format(sum.MonthlyEquivalent), Note: "all cycles"},
		{Label: "Outstanding Loans", Value: a.money.Format(sum.OutstandingLoans), Note: plural(sum.LoanCount, "loan")},
		{Label: "Due This Week", Value: fmt.Sprintf("%d", sum.DueSoonCount), Note: plural(sum.SubscriptionCount, "subscription")},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	within := a.cfg.General.UpcomingDays
	if within <= 0 {
		within = billing.DefaultUpcomingDays
	}

	subLines := make([]upcomingLine, 0, len(sum.UpcomingSubscriptions))
	for _, u := range sum.UpcomingSubscriptions {
		subLines = append(subLines, upcomingLine{u.Record.ColorTag, u.Record.Vendor, u.Record.Amount, u.DaysUntil})
	}
	loanLines := make([]upcomingLine, 0, len(sum.UpcomingLoans))
	for _, u := range sum.UpcomingLoans {
		loanLines = append(loanLines, upcomingLine{u.Record.ColorTag, u.Record.Vendor, u.Record.PaymentAmount, u.DaysUntil})
	}

	subTitle := fmt.Sprintf("Upcoming Renewals (%dd)", within)
	loanTitle := fmt.Sprintf("Upcoming Loan Payments (%dd)", within)
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard(subTitle, a.renderUpcoming(subLines, components.CardInnerWidth(cw), "No renewals coming up"), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard(loanTitle, a.renderUpcoming(loanLines, components.CardInnerWidth(cw), "No loan payments coming up"), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard(subTitle, a.renderUpcoming(subLines, components.CardInnerWidth(halves[0]), "No renewals coming up"), halves[0]),
			components.ContentCard(loanTitle, a.renderUpcoming(loanLines, components.CardInnerWidth(halves[1]), "No loan payments coming up"), halves[1]),
		}))
	}
	b.WriteString("\n")

	if bars := a.vendorBars(); len(bars) > 0 {
		b.WriteString(components.ContentCard("Monthly Equivalent by Vendor",
			components.HBarChart(bars, components.CardInnerWidth(cw)), cw))
	}

	return b.String()
}

type upcomingLine struct {
	color  string
	vendor string
	amount float64
	days   int
}

func (a App) renderUpcoming(lines []upcomingLine, innerW int, empty string) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(lines) == 0 {
		return dimStyle.Render(empty)
	}

	const amountW, whenW = 12, 12
	vendorW := innerW - amountW - whenW - 4
	if vendorW < 8 {
		vendorW = 8
	}

	out := make([]string, 0, upcomingRows+1)
	for i, l := range lines {
		if i == upcomingRows {
			out = append(out, dimStyle.Render(fmt.Sprintf("+%d more", len(lines)-upcomingRows)))
			break
		}
		whenStyle := lipgloss.NewStyle().Foreground(t.DueColor(l.days)).Background(t.Surface)
		out = append(out,
			cli.Swatch(l.color)+space.Render(" ")+
				textStyle.Render(padCell(l.vendor, vendorW, false))+
				textStyle.Render(padCell(a.money.Format(l.amount), amountW, true))+
				space.Render(" ")+
				whenStyle.Render(padCell(cli.FormatDays(l.days), whenW, true)))
	}
	return strings.Join(out, "\n")
}

// vendorBars aggregates the monthly equivalent per vendor, largest first.
func (a App) vendorBars() []components.Bar {
	totals := map[string]float64{}
	colors := map[string]string{}
	for _, s := range a.subs {
		totals[s.Vendor] += billing.MonthlyEquivalent(s.Amount, s.BillingCycle)
		if _, ok := colors[s.Vendor]; !ok {
			colors[s.Vendor] = s.ColorTag
		}
	}

	bars := make([]components.Bar, 0, len(totals))
	for vendor, v := range totals {
		bars = append(bars, components.Bar{
			Label: vendor,
			Value: v,
			Text:  a.money.Format(v),
			Color: lipgloss.Color(colors[vendor]),
		})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Value != bars[j].Value {
			return bars[i].Value > bars[j].Value
		}
		return bars[i].Label < bars[j].Label
	})
	if len(bars) > maxVendorBars {
		bars = bars[:maxVendorBars]
	}
	return bars
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
