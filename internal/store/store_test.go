package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertNight is a test helper that inserts a completed night starting
// startOffset seconds ago and lasting durationSecs.
func insertNight(t *testing.T, s *Store, startOffset, durationSecs, quality int) *SleepNight {
	t.Helper()
	start := time.Now().UTC().Add(time.Duration(-startOffset) * time.Second)
	n := NewSleepNight(start)
	n.EndTime = n.StartTime.Add(time.Duration(durationSecs) * time.Second)
	n.Quality = quality
	if err := s.Insert(context.Background(), n); err != nil {
		t.Fatalf("insert night: %v", err)
	}
	return n
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/sleeptrackr.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	insertNight(t, s, 3600, 1800, 3)
	s.Close()

	// Reopen: data survives and migration is not re-run.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	nights, err := s2.ListNights(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(nights) != 1 {
		t.Fatalf("expected 1 night after reopen, got %d", len(nights))
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Nights
// ============================================================

func TestInsertAndGetNight(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 22, 30, 0, 123_456_789, time.UTC)
	n := NewSleepNight(start)
	if err := s.Insert(ctx, n); err != nil {
		t.Fatal(err)
	}
	if n.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := s.GetNight(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.InProgress() {
		t.Fatalf("freshly inserted night should be in progress: %+v", got)
	}
	if !got.StartTime.Equal(start.Truncate(time.Millisecond)) {
		t.Fatalf("start time mismatch: got %v", got.StartTime)
	}
	if got.Quality != QualityUnrated {
		t.Fatalf("expected unrated quality, got %d", got.Quality)
	}
}

func TestGetNightNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetNight(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNight(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := NewSleepNight(time.Now())
	s.Insert(ctx, n)

	n.EndTime = n.StartTime.Add(7 * time.Hour)
	n.Quality = 4
	if err := s.Update(ctx, n); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetNight(ctx, n.ID)
	if got.InProgress() {
		t.Fatal("updated night should be complete")
	}
	if got.Duration() != 7*time.Hour {
		t.Fatalf("expected 7h, got %v", got.Duration())
	}
	if got.Quality != 4 {
		t.Fatalf("expected quality 4, got %d", got.Quality)
	}
}

func TestUpdateNightNonExistent(t *testing.T) {
	s := newTestStore(t)
	n := NewSleepNight(time.Now())
	n.ID = 42
	err := s.Update(context.Background(), n)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTonightEmpty(t *testing.T) {
	s := newTestStore(t)
	n, err := s.GetTonight(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != nil {
		t.Fatalf("expected nil, got %+v", n)
	}
}

func TestGetTonightReturnsLatest(t *testing.T) {
	s := newTestStore(t)
	insertNight(t, s, 7200, 3600, 2)
	second := insertNight(t, s, 3600, 1800, 3)

	got, err := s.GetTonight(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("expected latest night %d, got %+v", second.ID, got)
	}
}

func TestListNightsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	a := insertNight(t, s, 7200, 3600, 1)
	b := insertNight(t, s, 3600, 1800, 2)

	nights, err := s.ListNights(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(nights) != 2 {
		t.Fatalf("expected 2 nights, got %d", len(nights))
	}
	if nights[0].ID != b.ID || nights[1].ID != a.ID {
		t.Fatalf("expected newest first: got %d, %d", nights[0].ID, nights[1].ID)
	}
}

func TestListNightsEmpty(t *testing.T) {
	s := newTestStore(t)
	nights, err := s.ListNights(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if nights != nil {
		t.Fatalf("expected nil slice, got %d items", len(nights))
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	insertNight(t, s, 7200, 3600, 1)
	insertNight(t, s, 3600, 1800, 2)

	if err := s.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	nights, _ := s.ListNights(context.Background())
	if len(nights) != 0 {
		t.Fatalf("expected no nights after clear, got %d", len(nights))
	}
	tonight, _ := s.GetTonight(context.Background())
	if tonight != nil {
		t.Fatal("expected no tonight after clear")
	}
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Insert(ctx, NewSleepNight(time.Now())); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

// ============================================================
// Change notification
// ============================================================

func TestSubscribeNotifiesOnWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var calls atomic.Int32
	unsubscribe := s.Subscribe(func() { calls.Add(1) })

	n := NewSleepNight(time.Now())
	s.Insert(ctx, n)
	n.EndTime = n.StartTime.Add(time.Hour)
	s.Update(ctx, n)
	s.Clear(ctx)

	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}

	unsubscribe()
	unsubscribe() // second call is a no-op
	s.Insert(ctx, NewSleepNight(time.Now()))
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected no notification after unsubscribe, got %d", got)
	}
}

func TestSubscribeNotNotifiedOnFailedWrite(t *testing.T) {
	s := newTestStore(t)

	var calls atomic.Int32
	s.Subscribe(func() { calls.Add(1) })

	n := NewSleepNight(time.Now())
	n.ID = 999
	s.Update(context.Background(), n)
	if calls.Load() != 0 {
		t.Fatal("failed update should not notify")
	}
}

// ============================================================
// Nightly summary
// ============================================================

func TestGetNightlySummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, q := range []int{4, QualityUnrated} {
		n := NewSleepNight(day.Add(time.Hour))
		n.EndTime = n.StartTime.Add(3 * time.Hour)
		n.Quality = q
		s.Insert(ctx, n)
	}
	// In progress nights are excluded.
	s.Insert(ctx, NewSleepNight(day.Add(5*time.Hour)))

	sums, err := s.GetNightlySummary(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("expected 1 summary row, got %d", len(sums))
	}
	got := sums[0]
	if got.Date != "2026-03-01" {
		t.Fatalf("expected date 2026-03-01, got %s", got.Date)
	}
	if got.TotalSeconds != 6*3600 {
		t.Fatalf("expected 6h total, got %d", got.TotalSeconds)
	}
	if got.NightCount != 2 {
		t.Fatalf("expected 2 nights, got %d", got.NightCount)
	}
	if got.RatedCount != 1 {
		t.Fatalf("expected 1 rated night, got %d", got.RatedCount)
	}
	if got.AvgQuality != 4 {
		t.Fatalf("expected avg quality 4 over rated nights, got %v", got.AvgQuality)
	}
}

func TestGetNightlySummaryRatedVeryBad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rated := NewSleepNight(day.Add(time.Hour))
	rated.EndTime = rated.StartTime.Add(time.Hour)
	rated.Quality = 0
	s.Insert(ctx, rated)

	unrated := NewSleepNight(day.Add(24 * time.Hour))
	unrated.EndTime = unrated.StartTime.Add(time.Hour)
	s.Insert(ctx, unrated)

	sums, err := s.GetNightlySummary(ctx, day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(sums))
	}
	if sums[0].RatedCount != 1 || sums[0].AvgQuality != 0 {
		t.Fatalf("very bad night: rated %d avg %v, want 1 and 0", sums[0].RatedCount, sums[0].AvgQuality)
	}
	if sums[1].RatedCount != 0 {
		t.Fatalf("unrated night: rated %d, want 0", sums[1].RatedCount)
	}
}

func TestGetNightlySummaryEmpty(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	sums, err := s.GetNightlySummary(context.Background(), now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Fatalf("expected empty summary, got %d", len(sums))
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"language":    "en",
		"sleep_goal":  "28800",
		"time_format": "24h",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(context.Background(), k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SetSetting(ctx, "key", "v1")
	s.SetSetting(ctx, "key", "v2")
	val, _ := s.GetSetting(ctx, "key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestSleepGoal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if got := s.SleepGoal(ctx); got != 8*time.Hour {
		t.Fatalf("expected default 8h, got %v", got)
	}
	s.SetSetting(ctx, "sleep_goal", "27000")
	if got := s.SleepGoal(ctx); got != 7*time.Hour+30*time.Minute {
		t.Fatalf("expected 7h30m, got %v", got)
	}
	s.SetSetting(ctx, "sleep_goal", "garbage")
	if got := s.SleepGoal(ctx); got != 8*time.Hour {
		t.Fatalf("expected fallback 8h, got %v", got)
	}
}

// ============================================================
// Models
// ============================================================

func TestSleepNightInProgress(t *testing.T) {
	n := NewSleepNight(time.Now())
	if !n.InProgress() {
		t.Fatal("new night should be in progress")
	}
	if n.Duration() != 0 {
		t.Fatalf("expected zero duration, got %v", n.Duration())
	}
	if n.Rated() {
		t.Fatal("new night should be unrated")
	}
	n.EndTime = n.EndTime.Add(time.Millisecond)
	if n.InProgress() {
		t.Fatal("night with end after start should be complete")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
