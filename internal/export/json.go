package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Nights     []jsonNight `json:"nights"`
}

type jsonNight struct {
	ID           int64  `json:"id"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	InProgress   bool   `json:"in_progress,omitempty"`
	DurationSec  int64  `json:"duration_seconds"`
	Duration     string `json:"duration"`
	Quality      int    `json:"quality"`
	QualityLabel string `json:"quality_label"`
}

func ToJSON(nights []store.SleepNight, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(nights),
	}

	for _, n := range nights {
		endStr, secs := "", int64(0)
		if !n.InProgress() {
			endStr = n.EndTime.Local().Format(time.RFC3339)
			secs = int64(n.Duration() / time.Second)
		}

		export.Nights = append(export.Nights, jsonNight{
			ID:           n.ID,
			StartTime:    n.StartTime.Local().Format(time.RFC3339),
			EndTime:      endStr,
			InProgress:   n.InProgress(),
			DurationSec:  secs,
			Duration:     formatDuration(secs),
			Quality:      n.Quality,
			QualityLabel: format.Quality(n.Quality, nil),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
