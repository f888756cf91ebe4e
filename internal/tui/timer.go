package tui

import (
	"time"

	"github.com/sadopc/sleeptrackr/internal/store"
)

// timerState tracks whether a night is being slept through.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
)

// timerModel derives the elapsed sleep time from tonight's night. The
// tracker owns the state; the timer only follows it.
type timerModel struct {
	state     timerState
	startTime time.Time
	elapsed   time.Duration
	nightID   int64

	now func() time.Time
}

func newTimerModel() timerModel {
	return timerModel{
		state: timerStopped,
		now:   time.Now,
	}
}

// sync follows a new value of Tonight. Finished nights stop the timer.
func (t *timerModel) sync(n *store.SleepNight) {
	if n == nil || !n.InProgress() {
		t.state = timerStopped
		t.elapsed = 0
		t.nightID = 0
		return
	}
	t.state = timerRunning
	t.startTime = n.StartTime
	t.nightID = n.ID
	t.elapsed = t.now().Sub(t.startTime)
}

func (t *timerModel) tick() {
	if t.state == timerRunning {
		t.elapsed = t.now().Sub(t.startTime)
	}
}

func (t timerModel) running() bool {
	return t.state == timerRunning
}

func (t timerModel) currentElapsed() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	return t.now().Sub(t.startTime)
}

// goalProgress returns the share of goal slept so far, capped at 1.
func (t timerModel) goalProgress(goal time.Duration) float64 {
	if goal <= 0 || t.state == timerStopped {
		return 0
	}
	p := float64(t.currentElapsed()) / float64(goal)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
