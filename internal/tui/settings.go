package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/store"
)

var languageNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

// preference describes one editable row of the settings table.
type preference struct {
	key      string
	label    string
	fallback string
	show     func(string) string
}

var preferences = []preference{
	{key: "language", label: "Language", fallback: "en", show: func(v string) string {
		if name, ok := languageNames[v]; ok {
			return name
		}
		return v
	}},
	{key: "sleep_goal", label: "Sleep goal", fallback: "28800", show: func(v string) string {
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
		return v
	}},
	{key: "time_format", label: "Time format", fallback: "24h"},
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// bound to form fields; pointers survive value copies
	language   *string
	sleepGoal  *string
	timeFormat *string
}

func newSettingsModel(s *store.Store) settingsModel {
	return settingsModel{
		store:      s,
		values:     map[string]string{},
		language:   new(string),
		sleepGoal:  new(string),
		timeFormat: new(string),
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type prefsLoadedMsg struct {
	values map[string]string
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		all, err := st.GetAllSettings(context.Background())
		if err != nil {
			return errorStatus("Settings error", err)
		}
		values := make(map[string]string, len(all))
		for _, kv := range all {
			values[kv.Key] = kv.Value
		}
		return prefsLoadedMsg{values: values}
	}
}

func (s settingsModel) value(p preference) string {
	if v, ok := s.values[p.key]; ok {
		return v
	}
	return p.fallback
}

func (s settingsModel) lookup(k string) string {
	for _, p := range preferences {
		if p.key == k {
			return s.value(p)
		}
	}
	return ""
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case prefsLoadedMsg:
		s.values = msg.values
	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.openForm()
		}
	}
	return s, nil
}

func (s settingsModel) openForm() (settingsModel, tea.Cmd) {
	*s.language = s.lookup("language")
	*s.sleepGoal = secsToHours(s.lookup("sleep_goal"))
	*s.timeFormat = s.lookup("time_format")

	langs := make([]huh.Option[string], len(format.Languages))
	for i, tag := range format.Languages {
		name, ok := languageNames[tag]
		if !ok {
			name = tag
		}
		langs[i] = huh.NewOption(name, tag)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Description("Applies to the history on next start").
				Options(langs...).
				Value(s.language),
			huh.NewInput().
				Title("Sleep goal (hours)").
				Validate(validateHours).
				Value(s.sleepGoal),
			huh.NewSelect[string]().
				Title("Time format").
				Options(huh.NewOption("24-hour", "24h"), huh.NewOption("12-hour", "12h")).
				Value(s.timeFormat),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateHours(v string) error {
	h, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New("enter a number of hours")
	}
	if h <= 0 || h > 24 {
		return errors.New("goal must be between 0 and 24 hours")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, keys.Back) {
		s.closeForm()
		return s, nil
	}

	m, cmd := s.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateCompleted:
		s.closeForm()
		return s, tea.Sequence(s.save(), s.refresh())
	case huh.StateAborted:
		s.closeForm()
		return s, nil
	}
	return s, cmd
}

func (s *settingsModel) closeForm() {
	s.formActive = false
	s.form = nil
}

// save persists the form values and reports settingsSavedMsg.
func (s settingsModel) save() tea.Cmd {
	st := s.store
	pending := [][2]string{
		{"language", *s.language},
		{"sleep_goal", hoursToSecs(*s.sleepGoal)},
		{"time_format", *s.timeFormat},
	}
	return func() tea.Msg {
		ctx := context.Background()
		for _, kv := range pending {
			if err := st.SetSetting(ctx, kv[0], kv[1]); err != nil {
				return errorStatus("Save failed", err)
			}
		}
		return settingsSavedMsg{}
	}
}

func (s settingsModel) view() string {
	title := titleStyle.Render("Settings")
	var body string

	if s.formActive {
		body = lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View())
	} else {
		lines := []string{title, ""}
		label := lipgloss.NewStyle().Width(16)
		for _, p := range preferences {
			v := s.value(p)
			if p.show != nil {
				v = p.show(v)
			}
			lines = append(lines, "  "+label.Render(p.label)+highlightStyle.Render(v))
		}
		lines = append(lines, "", mutedStyle.Render("Press enter to edit settings"))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	return panelStyle.Width(s.width - 4).Render(body)
}

func secsToHours(v string) string {
	secs, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(float64(secs)/3600, 'f', -1, 64)
}

func hoursToSecs(v string) string {
	h, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.Itoa(int(h * 3600))
}
