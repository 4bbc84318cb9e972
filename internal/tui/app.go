// Package tui provides the interactive Bubble Tea interface of subtrack.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/config"
	"github.com/theirongolddev/subtrack/internal/dashboard"
	"github.com/theirongolddev/subtrack/internal/logging"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/theirongolddev/subtrack/internal/store"
	"github.com/theirongolddev/subtrack/internal/tracker"
	"github.com/theirongolddev/subtrack/internal/tui/components"
	"github.com/theirongolddev/subtrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Deps are the collaborators the TUI drives.
type Deps struct {
	Config        config.Config
	Store         *store.Store
	Subscriptions *tracker.Subscriptions
	Loans         *tracker.Loans
	Logger        *logrus.Logger
	Now           func() time.Time
	NeedSetup     bool // show the setup wizard before the dashboard
}

// loadedMsg is sent when both collections have been loaded.
type loadedMsg struct {
	err error
}

const (
	tabDashboard = iota
	tabSubscriptions
	tabLoans
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5

	// markPaidWindow is how close a renewal must be before it can be
	// marked as paid.
	markPaidWindow = 7
)

// App is the root Bubble Tea model.
type App struct {
	deps  Deps
	cfg   config.Config
	money cli.Money

	// Data
	loaded          bool
	loadErr         error
	subs            []model.Subscription
	loans           []model.Loan
	summary         dashboard.Summary
	bannerDismissed bool

	// UI state
	width      int
	height     int
	activeTab  int
	showHelp   bool
	subCursor  int
	loanCursor int
	settings   settingsState

	spinner spinner.Model

	// Modal huh form (add/edit, delete confirmation, reset, setup)
	form    *huh.Form
	pending *pendingForm

	flash    string
	flashErr bool
}

// NewApp creates the TUI model. Data is loaded by Init.
func NewApp(deps Deps) App {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		deps:    deps,
		cfg:     deps.Config,
		money:   newMoney(deps.Config),
		spinner: sp,
	}
}

func newMoney(cfg config.Config) cli.Money {
	return cli.NewMoney(cfg.General.Currency, cfg.General.Locale)
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
	)
}

// loadCmd loads both collections, applying the renewal pass.
func (a App) loadCmd() tea.Cmd {
	subs, loans := a.deps.Subscriptions, a.deps.Loans
	return func() tea.Msg {
		return loadedMsg{err: errors.Join(subs.Load(), loans.Load())}
	}
}

// refresh re-reads the controllers and recomputes everything derived.
func (a *App) refresh() {
	a.subs = a.deps.Subscriptions.Sorted()
	a.loans = a.deps.Loans.Sorted()
	a.summary = dashboard.Build(a.subs, a.loans, a.deps.Now(), dashboard.Options{
		UpcomingDays: a.cfg.General.UpcomingDays,
		SoonDays:     a.cfg.General.SoonDays,
	})
	a.bannerDismissed = a.deps.Store.BannerDismissed()

	a.subCursor = clampCursor(a.subCursor, len(a.subs))
	a.loanCursor = clampCursor(a.loanCursor, len(a.loans))
}

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func (a *App) setFlash(msg string, isErr bool) {
	a.flash = msg
	a.flashErr = isErr
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case loadedMsg:
		a.loaded = true
		a.loadErr = msg.err
		a.refresh()
		if msg.err != nil {
			a.deps.Logger.WithError(msg.err).Warn("load: some records could not be renewed")
			a.setFlash("Some dates could not be renewed; see the log", true)
		}
		if a.deps.NeedSetup {
			return a, a.openSetupForm()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.form != nil {
			if msg.String() == "esc" {
				a.closeForm()
				return a, nil
			}
			return a.updateForm(msg)
		}
		return a.updateKey(msg)
	}

	// Forward unhandled messages to the active form (cursor blinks, group
	// transitions).
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		a.flash = ""
		return a, a.loadCmd()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	switch a.activeTab {
	case tabDashboard:
		return a.updateDashboardKey(key)
	case tabSubscriptions:
		return a.updateSubscriptionsKey(key)
	case tabLoans:
		return a.updateLoansKey(key)
	case tabSettings:
		return a.updateSettingsKey(key)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabSubscriptions:
		a.subCursor = clampCursor(a.subCursor+delta, len(a.subs))
	case tabLoans:
		a.loanCursor = clampCursor(a.loanCursor+delta, len(a.loans))
	case tabSettings:
		a.settings.cursor = clampCursor(a.settings.cursor+delta, settingsItemCount)
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  subtrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ subtrack") + subtitleStyle.Render(" · Subscriptions & Loans") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading records...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d s l x", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
		}},
		{"Records", []struct{ key, desc string }{
			{"a", "Add"},
			{"e Enter", "Edit selected"},
			{"D", "Delete selected"},
			{"p", "Mark paid / Record payment"},
		}},
		{"General", []struct{ key, desc string }{
			{"b", "Dismiss dashboard banner"},
			{"r", "Reload"},
			{"Esc", "Cancel form"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHints() string {
	if a.form != nil {
		return "[enter]next  [esc]cancel"
	}
	switch a.activeTab {
	case tabDashboard:
		if !a.bannerDismissed {
			return "[b]dismiss banner  [?]help  [q]uit"
		}
	case tabSubscriptions:
		return "[a]dd  [e]dit  [D]elete  [p]aid  [?]help  [q]uit"
	case tabLoans:
		return "[a]dd  [e]dit  [D]elete  [p]ayment  [?]help  [q]uit"
	case tabSettings:
		return "[enter]select  [?]help  [q]uit"
	}
	return "[?]help  [q]uit"
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusHints(), a.flash, a.flashErr)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch {
	case a.form != nil:
		content = a.viewForm(cw)
	case a.activeTab == tabDashboard:
		content = a.renderDashboardTab(cw)
	case a.activeTab == tabSubscriptions:
		content = a.renderSubscriptionsTab(cw)
	case a.activeTab == tabLoans:
		content = a.renderLoansTab(cw)
	case a.activeTab == tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background
// color so gaps between cards are not left unstyled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// padCell pads or truncates s to exactly width columns.
func padCell(s string, width int, right bool) string {
	if lipgloss.Width(s) > width {
		s = cli.Truncate(s, width)
	}
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
