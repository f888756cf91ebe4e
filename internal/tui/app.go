package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/logging"
	"github.com/sadopc/sleeptrackr/internal/store"
	"github.com/sadopc/sleeptrackr/internal/tracker"
)

// App is the root Bubble Tea model. It owns subscriptions to the tracker's
// Tonight and History and fans their values out to the views.
type App struct {
	tracker *tracker.Tracker
	width   int
	height  int

	activeView viewState
	dashboard  dashboardModel
	reports    reportsModel
	settings   settingsModel
	exporter   exportPicker

	tonight     <-chan *store.SleepNight
	history     <-chan string
	unsubscribe []func()

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the UI on top of a running tracker. loc should be the
// localizer the tracker's history is formatted with; when nil it is built
// from the language setting. Call Close when the program exits.
func NewApp(s *store.Store, tr *tracker.Tracker, loc *i18n.Localizer) *App {
	if loc == nil {
		lang, err := s.GetSetting(context.Background(), "language")
		if err != nil {
			lang = "en"
		}
		loc = format.Localizer(lang)
	}
	home, _ := os.UserHomeDir()

	tonight, stopTonight := tr.Tonight.Subscribe()
	history, stopHistory := tr.History.Subscribe()

	return &App{
		tracker:     tr,
		activeView:  viewTonight,
		dashboard:   newDashboardModel(s, tr, loc),
		reports:     newReportsModel(s),
		settings:    newSettingsModel(s),
		exporter:    newExportPicker(s, home),
		tonight:     tonight,
		history:     history,
		unsubscribe: []func(){stopTonight, stopHistory},
		help:        help.New(),
	}
}

// Close ends the subscriptions, unblocking any pending listen commands.
func (a *App) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

// Run starts the terminal UI and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, s *store.Store, tr *tracker.Tracker, loc *i18n.Localizer) error {
	app := NewApp(s, tr, loc)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	logging.Debugf("ui exited")
	return nil
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		listenTonight(a.tonight),
		listenHistory(a.history),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// listenTonight waits for the next value of the tracker's Tonight. It
// returns nil once the subscription is closed.
func listenTonight(ch <-chan *store.SleepNight) tea.Cmd {
	return func() tea.Msg {
		if n, ok := <-ch; ok {
			return tonightMsg{night: n}
		}
		return nil
	}
}

func listenHistory(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		if text, ok := <-ch; ok {
			return historyMsg{text: text}
		}
		return nil
	}
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.help.Width = w
	body := h - 4 // header + footer
	a.dashboard.setSize(w, body)
	a.reports.setSize(w, body)
	a.settings.setSize(w, body)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tonightMsg:
		cmd := a.toDashboard(msg)
		return a, tea.Batch(cmd, listenTonight(a.tonight))

	case historyMsg:
		cmds := []tea.Cmd{a.toDashboard(msg), listenHistory(a.history)}
		// every history change is a store change; keep the chart current
		if a.activeView == viewReport {
			cmds = append(cmds, a.reports.refresh())
		}
		return a, tea.Batch(cmds...)

	case tickMsg:
		return a, tea.Batch(a.toDashboard(msg), tickCmd())

	case actionDoneMsg:
		a.setStatus(actionStatus(msg), false)
		return a, a.toDashboard(msg)

	case settingsSavedMsg:
		a.setStatus("Settings saved; language and time format apply on next start", false)
		return a, a.toDashboard(msg)

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		if msg.isError {
			logging.Warnf("%s", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		return a, nil
	}

	return a, a.toActiveView(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.exporter.open {
		var cmd tea.Cmd
		a.exporter, cmd = a.exporter.update(msg)
		return a, cmd
	}

	// A child view capturing input (e.g. a form) gets the key first.
	if a.isFormActive() {
		return a, a.toActiveView(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Export):
		a.exporter.show()
		return a, nil
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, keys.Tab1):
		return a, a.switchTo(viewTonight)
	case key.Matches(msg, keys.Tab2):
		return a, a.switchTo(viewReport)
	case key.Matches(msg, keys.Tab3):
		return a, a.switchTo(viewSettings)
	case key.Matches(msg, keys.Tab):
		return a, a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
	}
	return a, a.toActiveView(msg)
}

// switchTo activates v and reloads the data it shows.
func (a *App) switchTo(v viewState) tea.Cmd {
	a.activeView = v
	switch v {
	case viewReport:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
}

func actionStatus(msg actionDoneMsg) string {
	switch msg.op {
	case opStart:
		return "Good night"
	case opStop:
		if msg.night != nil {
			return "Good morning! Slept " + formatDuration(msg.night.Duration())
		}
		return "Good morning"
	case opClear:
		return "History cleared"
	case opRate:
		return "Night rated"
	}
	return ""
}

// toDashboard delivers msg to the dashboard whichever view is active.
func (a *App) toDashboard(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	return cmd
}

func (a *App) toActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTonight:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewReport:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return cmd
}

func (a *App) isFormActive() bool {
	switch a.activeView {
	case viewTonight:
		return a.dashboard.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	bodyHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var body string
	switch {
	case a.exporter.open:
		body = a.exporter.view(a.width - 4)
	case a.activeView == viewReport:
		body = a.reports.view()
	case a.activeView == viewSettings:
		body = a.settings.view()
	default:
		body = a.dashboard.view()
	}

	body = lipgloss.NewStyle().Width(a.width).Height(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (a *App) renderHeader() string {
	title := fg(colorPrimary).Bold(true).Render("☾ sleeptrackr")
	return headerStyle.Render(spread(a.width, title, tabBar(viewNames, int(a.activeView)), 4))
}

func (a *App) renderFooter() string {
	var right string
	if a.dashboard.isRunning() {
		right = moonStyle.Render(" ☾ " + formatDuration(a.dashboard.elapsed()))
	}
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		right += style.Render(" " + a.status)
	}
	return spread(a.width, footerStyle.Render(a.help.View(keys)), right, 2)
}
