package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/store"
	"github.com/sadopc/sleeptrackr/internal/tracker"
)

type formKind int

const (
	formNone formKind = iota
	formRate
	formClear
)

type dashboardModel struct {
	store   *store.Store
	tracker *tracker.Tracker
	loc     *i18n.Localizer
	timer   timerModel
	width   int
	height  int

	tonight *store.SleepNight
	goal    time.Duration
	goalBar progress.Model
	history viewport.Model

	formActive bool
	formKind   formKind
	form       *huh.Form
	rateID     int64

	// Form values as pointers (survive value copies)
	quality *int
	confirm *bool
}

func newDashboardModel(s *store.Store, tr *tracker.Tracker, loc *i18n.Localizer) dashboardModel {
	q := 3
	c := false
	return dashboardModel{
		store:   s,
		tracker: tr,
		loc:     loc,
		timer:   newTimerModel(),
		goal:    8 * time.Hour,
		goalBar: progress.New(progress.WithGradient(string(colorPrimary), string(colorMoon)), progress.WithoutPercentage()),
		history: viewport.New(60, 10),
		quality: &q,
		confirm: &c,
	}
}

type goalMsg struct {
	goal time.Duration
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadGoal()
}

func (d dashboardModel) loadGoal() tea.Cmd {
	return func() tea.Msg {
		return goalMsg{goal: d.store.SleepGoal(context.Background())}
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.goalBar.Width = max(w-12, 10)
	d.history.Width = max(w-8, 10)
	// timer panel with goal bar takes about 11 rows, plus the history
	// panel's border, padding and title.
	d.history.Height = max(h-17, 3)
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tonightMsg:
		d.tonight = msg.night
		d.timer.sync(msg.night)
		return d, nil

	case historyMsg:
		d.history.SetContent(msg.text)
		return d, nil

	case goalMsg:
		d.goal = msg.goal
		return d, nil

	case settingsSavedMsg:
		return d, d.loadGoal()

	case tickMsg:
		d.timer.tick()
		return d, nil

	case actionDoneMsg:
		if msg.op == opStop && msg.night != nil {
			return d.showRateForm(msg.night.ID)
		}
		return d, nil
	}

	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Start):
			if d.tracker.Active() {
				return d, statusCmd("Already tracking a night", true)
			}
			return d, d.startCmd()

		case key.Matches(msg, keys.Stop):
			if !d.tracker.Active() {
				return d, statusCmd("Not tracking", true)
			}
			return d, d.stopCmd()

		case key.Matches(msg, keys.Rate):
			if d.tonight == nil || d.tonight.InProgress() {
				return d, statusCmd("No finished night to rate", true)
			}
			return d.showRateForm(d.tonight.ID)

		case key.Matches(msg, keys.Clear):
			return d.showClearForm()
		}

		var cmd tea.Cmd
		d.history, cmd = d.history.Update(msg)
		return d, cmd
	}
	return d, nil
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func (d dashboardModel) startCmd() tea.Cmd {
	tr := d.tracker
	return func() tea.Msg {
		if err := <-tr.StartTracking(); err != nil {
			return errorStatus("Start failed", err)
		}
		return actionDoneMsg{op: opStart, night: tr.Tonight.Get()}
	}
}

func (d dashboardModel) stopCmd() tea.Cmd {
	tr := d.tracker
	return func() tea.Msg {
		if err := <-tr.StopTracking(); err != nil {
			return errorStatus("Stop failed", err)
		}
		return actionDoneMsg{op: opStop, night: tr.Tonight.Get()}
	}
}

func (d dashboardModel) clearCmd() tea.Cmd {
	tr := d.tracker
	return func() tea.Msg {
		if err := <-tr.ClearHistory(); err != nil {
			return errorStatus("Clear failed", err)
		}
		return actionDoneMsg{op: opClear}
	}
}

func (d dashboardModel) rateCmd(id int64, quality int) tea.Cmd {
	tr := d.tracker
	return func() tea.Msg {
		if err := <-tr.RateNight(id, quality); err != nil {
			return errorStatus("Rating failed", err)
		}
		return actionDoneMsg{op: opRate}
	}
}

func (d dashboardModel) showRateForm(id int64) (dashboardModel, tea.Cmd) {
	*d.quality = 3
	opts := make([]huh.Option[int], 0, 6)
	for q := 5; q >= 0; q-- {
		opts = append(opts, huh.NewOption(format.Quality(q, d.loc), q))
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(format.T(d.loc, "rate_prompt")).
				Options(opts...).
				Value(d.quality),
		),
	).WithShowHelp(true)

	d.rateID = id
	d.formKind = formRate
	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) showClearForm() (dashboardModel, tea.Cmd) {
	*d.confirm = false
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete all recorded nights?").
				Affirmative("Delete").
				Negative("Keep").
				Value(d.confirm),
		),
	).WithShowHelp(true)

	d.formKind = formClear
	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.closeForm()
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		kind, id := d.formKind, d.rateID
		d.closeForm()
		switch kind {
		case formRate:
			return d, d.rateCmd(id, *d.quality)
		case formClear:
			if *d.confirm {
				return d, d.clearCmd()
			}
		}
		return d, nil
	case huh.StateAborted:
		d.closeForm()
		return d, nil
	}
	return d, cmd
}

func (d *dashboardModel) closeForm() {
	d.formActive = false
	d.formKind = formNone
	d.form = nil
	d.rateID = 0
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)

	var bottomPanel string
	if d.formActive && d.form != nil {
		bottomPanel = activePanelStyle.Width(contentWidth).Render(d.form.View())
	} else {
		bottomPanel = d.renderHistoryPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	goalLine := mutedStyle.Render(fmt.Sprintf("Goal %s", formatDuration(d.goal)))

	if d.timer.running() {
		elapsed := d.timer.currentElapsed()
		timeDisplay := clockSleepingStyle.Width(w - 6).Render(formatDuration(elapsed))
		indicator := moonStyle.Render("☾  SLEEPING")
		since := mutedStyle.Render("since " + d.timer.startTime.Local().Format("Mon 15:04"))

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			since,
			"",
			d.goalBar.ViewAs(d.timer.goalProgress(d.goal)),
			goalLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := clockStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  AWAKE")
	hint := mutedStyle.Render("Press s when you go to bed")
	lines := []string{timeDisplay, indicator, hint}

	if n := d.tonight; n != nil && !n.InProgress() {
		slept := highlightStyle.Render(formatDuration(n.Duration()))
		quality := mutedStyle.Render(format.Quality(n.Quality, d.loc))
		lines = append(lines, "", fmt.Sprintf("Last night %s  %s", slept, quality))
		if !n.Rated() {
			lines = append(lines, mutedStyle.Render("Press r to rate it"))
		}
	} else {
		lines = append(lines, "", goalLine)
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (d dashboardModel) renderHistoryPanel(w int) string {
	title := titleStyle.Render("History")
	body := d.history.View()
	if strings.TrimSpace(body) == "" {
		body = mutedStyle.Render("Loading...")
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
