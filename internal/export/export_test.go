package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/sleeptrackr/internal/store"
)

func sampleData() []store.SleepNight {
	now := time.Now().UTC().Truncate(time.Second)

	return []store.SleepNight{
		{
			ID:        3,
			StartTime: now.Add(-10 * time.Minute),
			EndTime:   now.Add(-10 * time.Minute), // still running
			Quality:   store.QualityUnrated,
		},
		{
			ID:        2,
			StartTime: now.Add(-30 * time.Hour),
			EndTime:   now.Add(-30*time.Hour + 30*time.Minute),
			Quality:   1,
		},
		{
			ID:        1,
			StartTime: now.Add(-50 * time.Hour),
			EndTime:   now.Add(-42 * time.Hour),
			Quality:   5,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Start", "End", "Duration (s)", "Duration", "Quality", "Quality Label"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	running := records[1]
	if running[0] != "3" {
		t.Fatalf("ID = %q, want 3", running[0])
	}
	if running[2] != "" {
		t.Fatalf("running night should have empty end time, got %q", running[2])
	}
	if running[6] != "--" {
		t.Fatalf("unrated label = %q, want --", running[6])
	}

	full := records[3]
	if full[3] != "28800" {
		t.Fatalf("Duration (s) = %q, want 28800", full[3])
	}
	if full[4] != "08:00:00" {
		t.Fatalf("Duration = %q, want 08:00:00", full[4])
	}
	if full[5] != "5" || full[6] != "Excellent" {
		t.Fatalf("quality = %q/%q, want 5/Excellent", full[5], full[6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Nights) != 3 {
		t.Fatalf("count = %d, nights = %d, want 3", result.Count, len(result.Nights))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	running := result.Nights[0]
	if !running.InProgress || running.EndTime != "" {
		t.Fatalf("running night should be in progress with no end: %+v", running)
	}

	short := result.Nights[1]
	if short.DurationSec != 1800 || short.Duration != "00:30:00" {
		t.Fatalf("duration = %d/%q, want 1800/00:30:00", short.DurationSec, short.Duration)
	}
	if short.QualityLabel != "Poor" {
		t.Fatalf("quality label = %q, want Poor", short.QualityLabel)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Nights != nil {
		t.Fatal("nights should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(sampleData(), path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, n := range result.Nights {
		if _, err := time.Parse(time.RFC3339, n.StartTime); err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", n.StartTime)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
