package tui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sleeptrackr/internal/export"
	"github.com/sadopc/sleeptrackr/internal/store"
)

type exportFormat struct {
	name  string
	ext   string
	write func([]store.SleepNight, string) error
}

var exportFormats = []exportFormat{
	{name: "CSV", ext: ".csv", write: export.ToCSV},
	{name: "JSON", ext: ".json", write: export.ToJSON},
}

// exportPicker is the overlay that writes the full history to a file in
// dir.
type exportPicker struct {
	store  *store.Store
	dir    string
	open   bool
	cursor int
	now    func() time.Time
}

func newExportPicker(s *store.Store, dir string) exportPicker {
	return exportPicker{store: s, dir: dir, now: time.Now}
}

func (p *exportPicker) show() {
	p.open = true
	p.cursor = 0
}

func (p exportPicker) update(msg tea.KeyMsg) (exportPicker, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		p.cursor = max(p.cursor-1, 0)
	case key.Matches(msg, keys.Down):
		p.cursor = min(p.cursor+1, len(exportFormats)-1)
	case key.Matches(msg, keys.Enter):
		p.open = false
		return p, p.write(exportFormats[p.cursor])
	case key.Matches(msg, keys.Back):
		p.open = false
	}
	return p, nil
}

func (p exportPicker) write(f exportFormat) tea.Cmd {
	s := p.store
	path := filepath.Join(p.dir, "sleeptrackr-export-"+p.now().Format("2006-01-02")+f.ext)
	return func() tea.Msg {
		nights, err := s.ListNights(context.Background())
		if err != nil {
			return errorStatus("Export error", err)
		}
		if err := f.write(nights, path); err != nil {
			return errorStatus(f.name+" error", err)
		}
		return exportDoneMsg{path: path}
	}
}

func (p exportPicker) view(width int) string {
	rows := []string{titleStyle.Render("Export History"), ""}
	for i, f := range exportFormats {
		line := normalItemStyle.Render("  " + f.name)
		if i == p.cursor {
			line = selectedItemStyle.Render("> " + f.name)
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))
	return activePanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
