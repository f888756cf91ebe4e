// Package format renders sleep history as human-readable text.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sadopc/sleeptrackr/internal/store"
)

const (
	Layout24h = "Monday Jan-02-2006 Time: 15:04"
	Layout12h = "Monday Jan-02-2006 Time: 3:04 PM"
)

var qualityIDs = []string{
	"quality_very_bad",
	"quality_poor",
	"quality_so_so",
	"quality_ok",
	"quality_pretty_good",
	"quality_excellent",
}

// Formatter turns a night history into a summary string. The zero value
// formats in English, 24h time, in the local time zone.
type Formatter struct {
	Localizer *i18n.Localizer
	Layout    string
	Location  *time.Location
}

// New returns a Formatter for lang using the given time format setting
// ("12h" or "24h").
func New(lang, timeFormat string) *Formatter {
	f := &Formatter{Localizer: Localizer(lang), Layout: Layout24h}
	if timeFormat == "12h" {
		f.Layout = Layout12h
	}
	return f
}

// Nights formats nights with loc and the default layout.
func Nights(nights []store.SleepNight, loc *i18n.Localizer) string {
	f := Formatter{Localizer: loc}
	return f.Format(nights)
}

func (f Formatter) Format(nights []store.SleepNight) string {
	var sb strings.Builder
	sb.WriteString(f.t("title"))
	sb.WriteString("\n")

	if len(nights) == 0 {
		sb.WriteString("\n")
		sb.WriteString(f.t("no_nights"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, n := range nights {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%s\t%s\n", f.t("start_time"), f.timestamp(n.StartTime))
		if n.InProgress() {
			fmt.Fprintf(&sb, "%s\n", f.t("in_progress"))
			continue
		}
		fmt.Fprintf(&sb, "%s\t%s\n", f.t("end_time"), f.timestamp(n.EndTime))
		fmt.Fprintf(&sb, "%s\t%s\n", f.t("quality"), Quality(n.Quality, f.Localizer))
		fmt.Fprintf(&sb, "%s\t%s\n", f.t("hours_slept"), Elapsed(n.Duration()))
	}
	return sb.String()
}

func (f Formatter) t(id string) string {
	return T(f.Localizer, id)
}

func (f Formatter) timestamp(t time.Time) string {
	layout := f.Layout
	if layout == "" {
		layout = Layout24h
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}

// Quality returns the localized label for a 0..5 rating, or the unrated
// marker for anything else.
func Quality(q int, loc *i18n.Localizer) string {
	if q < 0 || q >= len(qualityIDs) {
		return T(loc, "quality_unrated")
	}
	return T(loc, qualityIDs[q])
}

// Elapsed renders d as h:mm:ss.
func Elapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
