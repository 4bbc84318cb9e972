package components

import (
	"strings"

	"github.com/theirongolddev/subtrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Bar is one row of an HBarChart.
type Bar struct {
	Label string
	Value float64
	Text  string // rendered value
	Color lipgloss.Color
}

// HBarChart renders one labeled horizontal bar per row, scaled to the
// largest value. Every line fits in width.
func HBarChart(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	if labelW > width/3 {
		labelW = width / 3
	}
	if peak <= 0 {
		peak = 1
	}

	barW := width - labelW - textW - 2
	if barW < 1 {
		barW = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, len(bars))
	for i, b := range bars {
		color := b.Color
		if color == "" {
			color = t.Accent
		}
		filled := int(b.Value / peak * float64(barW))
		filled = min(max(filled, 0), barW)
		if b.Value > 0 && filled == 0 {
			filled = 1
		}

		label := truncate(b.Label, labelW)
		lines[i] = labelStyle.Render(label+strings.Repeat(" ", labelW-lipgloss.Width(label))) +
			emptyStyle.Render(" ") +
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", filled)) +
			emptyStyle.Render(strings.Repeat(" ", barW-filled+1)) +
			textStyle.Render(b.Text)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
