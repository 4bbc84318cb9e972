package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsTheme = iota
	settingsBanner
	settingsSetup
	settingsReset
	settingsItemCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor int
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "enter", " ":
		return a.settingsActivate()
	}
	return a, nil
}

func (a App) settingsActivate() (tea.Model, tea.Cmd) {
	switch a.settings.cursor {
	case settingsTheme:
		next := theme.Next(a.cfg.Appearance.Theme)
		a.cfg.Appearance.Theme = next.Name
		theme.SetActive(next.Name)
		if err := config.Save(a.cfg); err != nil {
			a.deps.Logger.WithError(err).Error("saving config")
			a.setFlash("Theme applied for this session only", true)
			return a, nil
		}
		a.setFlash("Theme: "+next.Name, false)
	case settingsBanner:
		if a.bannerDismissed {
			a.deps.Store.ResetBanner()
			a.setFlash("Banner will show on the dashboard", false)
		} else {
			a.deps.Store.SetBannerDismissed(true)
			a.setFlash("Banner dismissed", false)
		}
		a.bannerDismissed = a.deps.Store.BannerDismissed()
	case settingsSetup:
		return a, a.openSetupForm()
	case settingsReset:
		return a, a.openResetForm()
	}
	return a, nil
}

func (a App) storageDescription() string {
	switch a.cfg.Store.Driver {
	case store.DriverRedis:
		return fmt.Sprintf("redis %s db %d", a.cfg.Store.RedisAddr, a.cfg.Store.RedisDB)
	case store.DriverMemory:
		return "memory (not persisted)"
	default:
		return "sqlite " + a.cfg.Store.Path
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dangerStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	banner := "shown"
	if a.bannerDismissed {
		banner = "dismissed"
	}

	items := []struct{ label, value string }{
		settingsTheme:  {"Theme", a.cfg.Appearance.Theme},
		settingsBanner: {"Dashboard banner", banner},
		settingsSetup:  {"Run setup wizard", ""},
		settingsReset:  {"Reset all data", "deletes every subscription and loan"},
	}

	var b strings.Builder
	for i, it := range items {
		marker := "  "
		label := labelStyle.Render(fmt.Sprintf("%-20s", it.label))
		if i == a.settings.cursor {
			marker = "▸ "
			label = selectedStyle.Render(fmt.Sprintf("%-20s", it.label))
		}
		value := valueStyle.Render(it.value)
		if i == settingsReset {
			value = dangerStyle.Render(it.value)
		}
		b.WriteString(labelStyle.Render(marker) + label + labelStyle.Render(" ") + value)
		b.WriteString("\n")
	}

	info := []struct{ label, value string }{
		{"Currency", a.cfg.General.Currency + " (" + a.cfg.General.Locale + ")"},
		{"Upcoming window", fmt.Sprintf("%d days", a.cfg.General.UpcomingDays)},
		{"Storage", a.storageDescription()},
		{"Config file", config.ConfigPath()},
	}
	var ib strings.Builder
	for i, it := range info {
		ib.WriteString(labelStyle.Render(fmt.Sprintf("%-18s", it.label)) + valueStyle.Render(it.value))
		if i < len(info)-1 {
			ib.WriteString("\n")
		}
	}

	return components.ContentCard("Settings", strings.TrimSuffix(b.String(), "\n"), cw) + "\n" +
		components.ContentCard("Configuration", ib.String(), cw)
}
