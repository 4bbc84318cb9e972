package components

import (
	"fmt"

	"github.com/theirongolddev/subtrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForProgress returns the bar color for a loan payoff percentage
// (0..100): the closer to paid off, the greener.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 75:
		return t.GreenBright
	case pct >= 50:
		return t.Green
	case pct >= 25:
		return t.Yellow
	default:
		return t.Orange
	}
}

// PayoffBar renders a loan payoff bar followed by its percentage. pct is on
// the 0..100 scale and is clamped.
func PayoffBar(pct float64, width int) string {
	t := theme.Active

	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	barW := width - 5
	if barW < 4 {
		barW = 4
	}

	color := ColorForProgress(pct)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct/100) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct))
}
