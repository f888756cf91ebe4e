package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/sleeptrackr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTonight viewState = iota
	viewReport
	viewSettings
)

var viewNames = []string{"Tonight", "Report", "Settings"}

// --- Messages ---

// tonightMsg carries a new value of the tracker's Tonight.
type tonightMsg struct {
	night *store.SleepNight
}

// historyMsg carries a new formatted history.
type historyMsg struct {
	text string
}

type trackerOp int

const (
	opStart trackerOp = iota
	opStop
	opClear
	opRate
)

// actionDoneMsg reports that a tracker action finished without error.
type actionDoneMsg struct {
	op    trackerOp
	night *store.SleepNight
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct{}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func errorStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}
