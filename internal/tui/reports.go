package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sleeptrackr/internal/store"
)

type reportMode int

const (
	reportNights reportMode = iota // rolling last 7 nights
	reportWeek                     // calendar week starting Monday
)

var reportModeNames = []string{"Nights", "Week"}

const dayLayout = "2006-01-02"

// reportWindow returns the UTC [from, to) range of seven days shown for
// mode, shifted back by offset windows.
func reportWindow(mode reportMode, offset int, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var from time.Time
	if mode == reportWeek {
		sinceMonday := (int(today.Weekday()) + 6) % 7
		from = today.AddDate(0, 0, -sinceMonday)
	} else {
		from = today.AddDate(0, 0, -6)
	}
	from = from.AddDate(0, 0, -7*offset)
	return from, from.AddDate(0, 0, 7)
}

type reportsModel struct {
	store  *store.Store
	width  int
	height int
	now    func() time.Time

	mode   reportMode
	offset int

	byDay map[string]store.NightlySummary
	days  []store.NightlySummary
	goal  time.Duration
	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		now:   time.Now,
		byDay: map[string]store.NightlySummary{},
		goal:  8 * time.Hour,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	return reportWindow(r.mode, r.offset, r.now())
}

type reportLoadedMsg struct {
	days []store.NightlySummary
	goal time.Duration
}

func (r reportsModel) refresh() tea.Cmd {
	st := r.store
	from, to := r.dateRange()
	return func() tea.Msg {
		ctx := context.Background()
		days, err := st.GetNightlySummary(ctx, from, to)
		if err != nil {
			return errorStatus("Report error", err)
		}
		return reportLoadedMsg{days: days, goal: st.SleepGoal(ctx)}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		r.days = msg.days
		r.goal = msg.goal
		r.byDay = make(map[string]store.NightlySummary, len(msg.days))
		for _, d := range msg.days {
			r.byDay[d.Date] = d
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
		case key.Matches(msg, keys.Right):
			if r.offset == 0 {
				return r, nil
			}
			r.offset--
		case key.Matches(msg, keys.Enter):
			r.mode = 1 - r.mode
			r.offset = 0
		default:
			return r, nil
		}
		return r, r.refresh()
	}
	return r, nil
}

// barStyle colors a night by how it compares to the sleep goal.
func (r reportsModel) barStyle(secs int64) lipgloss.Style {
	goal := int64(r.goal / time.Second)
	switch {
	case goal > 0 && secs >= goal:
		return fg(colorSuccess)
	case goal > 0 && secs >= goal*3/4:
		return fg(colorWarning)
	default:
		return fg(colorError)
	}
}

func (r *reportsModel) buildChart() {
	height := 12
	if r.height > 30 {
		height = 16
	}
	r.chart = barchart.New(max(r.width-8, 20), height)

	from, to := r.dateRange()
	bars := make([]barchart.BarData, 0, 7)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		v := barchart.BarValue{Style: fg(colorSubtle)}
		if s, ok := r.byDay[day.Format(dayLayout)]; ok {
			v = barchart.BarValue{
				Name:  "Slept",
				Value: float64(s.TotalSeconds) / 3600,
				Style: r.barStyle(s.TotalSeconds),
			}
		}
		bars = append(bars, barchart.BarData{Label: day.Format("Mon 02"), Values: []barchart.BarValue{v}})
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	from, to := r.dateRange()
	period := mutedStyle.Render(from.Format("Jan 02") + " to " + to.AddDate(0, 0, -1).Format("Jan 02, 2006"))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Report"), "  ", tabBar(reportModeNames, int(r.mode)), "  ", period,
	)

	w := r.width - 4
	sections := []string{
		header,
		r.chart.View(),
		r.legend(),
		r.table(w),
		mutedStyle.Render("  ←/→: navigate  enter: switch mode"),
	}
	return panelStyle.Width(w).Render(strings.Join(sections, "\n\n"))
}

func (r reportsModel) table(w int) string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No nights in this period")
	}

	lines := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %10s %7s %8s", "Date", "Slept", "Nights", "Quality")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 40))),
	}

	var total int64
	for _, d := range r.days {
		total += d.TotalSeconds
		quality := "--"
		if d.RatedCount > 0 {
			quality = fmt.Sprintf("%.1f", d.AvgQuality)
		}
		lines = append(lines, fmt.Sprintf("  %-12s %s %8s %7d %8s",
			d.Date, r.barStyle(d.TotalSeconds).Render("●"), formatSeconds(d.TotalSeconds), d.NightCount, quality,
		))
	}

	avg := total / int64(len(r.days))
	lines = append(lines, "", "  Average "+highlightStyle.Render(formatHours(avg))+" per night")
	return strings.Join(lines, "\n")
}

func (r reportsModel) legend() string {
	goal := int64(r.goal / time.Second)
	dot := func(secs int64) string { return r.barStyle(secs).Render("●") }
	return fmt.Sprintf("  %s goal %s  %s close  %s short",
		dot(goal), formatHours(goal), dot(goal*3/4), dot(0))
}
