package store

import "time"

// QualityUnrated marks a night whose quality has not been entered yet.
const QualityUnrated = -1

// SleepNight is one tracked sleep interval. A night is in progress while
// its start and end timestamps are equal.
type SleepNight struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Quality   int
}

// NewSleepNight returns an in-progress night starting (and ending) at t.
func NewSleepNight(t time.Time) *SleepNight {
	t = t.Truncate(time.Millisecond)
	return &SleepNight{
		StartTime: t,
		EndTime:   t,
		Quality:   QualityUnrated,
	}
}

func (n SleepNight) InProgress() bool {
	return n.StartTime.Equal(n.EndTime)
}

func (n SleepNight) Duration() time.Duration {
	return n.EndTime.Sub(n.StartTime)
}

func (n SleepNight) Rated() bool {
	return n.Quality != QualityUnrated
}

type Setting struct {
	Key   string
	Value string
}

// NightlySummary represents aggregated sleep per calendar day (UTC) of the
// night's start.
type NightlySummary struct {
	Date         string
	TotalSeconds int64
	NightCount   int
	RatedCount   int
	AvgQuality   float64 // over rated nights only, 0 when none are rated
}
