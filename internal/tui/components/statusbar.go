package components

import (
	"strings"

	"github.com/theirongolddev/subtrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar: key hints on the left and a
// transient message on the right. isErr colors the message red.
func RenderStatusBar(width int, hints, message string, isErr bool) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	if isErr {
		msgStyle = msgStyle.Foreground(t.Red)
	}

	left := " " + hints
	right := ""
	if message != "" {
		right = message + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := base.Render(left) + base.Render(strings.Repeat(" ", padding)) + msgStyle.Render(right)
	return lipgloss.NewStyle().Background(t.Surface).MaxWidth(width).Render(bar)
}
