package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/store"
)

func ToCSV(nights []store.SleepNight, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Start", "End", "Duration (s)", "Duration", "Quality", "Quality Label"}); err != nil {
		return err
	}

	for _, n := range nights {
		endStr, secs := "", int64(0)
		if !n.InProgress() {
			endStr = n.EndTime.Local().Format(time.RFC3339)
			secs = int64(n.Duration() / time.Second)
		}

		row := []string{
			strconv.FormatInt(n.ID, 10),
			n.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(secs, 10),
			formatDuration(secs),
			strconv.Itoa(n.Quality),
			format.Quality(n.Quality, nil),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
