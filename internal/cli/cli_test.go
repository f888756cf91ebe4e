package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/sleeptrackr/internal/format"
	"github.com/sadopc/sleeptrackr/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	t      *testing.T
	dbPath string
	clock  *testClock
	tuiRan bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:      t,
		dbPath: filepath.Join(t.TempDir(), "sleep.db"),
		clock:  &testClock{now: time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)},
	}
}

// run executes one CLI invocation against the harness database, like a
// separate process would.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp()
	app.Now = h.clock.Now
	app.Interactive = func() bool { return false }
	app.RunTUI = func(context.Context, *App) error {
		h.tuiRan = true
		return nil
	}
	app.Out = &out
	app.Err = &errOut

	full := append([]string{"--db", h.dbPath, "--lang", "en"}, args...)
	err := Execute(context.Background(), app, full)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "args %v", args)
	return out
}

func (h *harness) nights() []store.SleepNight {
	h.t.Helper()
	s, err := store.New(h.dbPath)
	require.NoError(h.t, err)
	defer s.Close()
	nights, err := s.ListNights(context.Background())
	require.NoError(h.t, err)
	return nights
}

func TestStartStopRate(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("start")
	assert.Contains(t, out, "Tracking sleep since")

	out = h.mustRun("start")
	assert.Contains(t, out, "Already tracking")
	require.Len(t, h.nights(), 1)

	h.clock.Advance(7*time.Hour + 30*time.Minute)
	out = h.mustRun("stop")
	assert.Contains(t, out, "Slept 7:30:00")

	nights := h.nights()
	require.Len(t, nights, 1)
	assert.Equal(t, 7*time.Hour+30*time.Minute, nights[0].Duration())

	out = h.mustRun("rate", "1", "4")
	assert.Contains(t, out, "Pretty good")
	assert.Equal(t, 4, h.nights()[0].Quality)
}

func TestStopWithoutSession(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("stop")
	assert.Contains(t, out, "No sleep session in progress")
	assert.Empty(t, h.nights())
}

func TestStopAfterStopIsNoop(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")
	h.clock.Advance(time.Hour)
	h.mustRun("stop")
	h.clock.Advance(time.Hour)

	out := h.mustRun("stop")
	assert.Contains(t, out, "No sleep session in progress")
	assert.Equal(t, time.Hour, h.nights()[0].Duration())
}

func TestRateInvalid(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")

	_, err := h.run("rate", "1", "7")
	assert.Error(t, err)
	_, err = h.run("rate", "x", "3")
	assert.Error(t, err)
	_, err = h.run("rate", "99", "3")
	assert.Error(t, err)
}

func TestClearRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")

	_, err := h.run("clear")
	assert.Error(t, err)
	assert.Len(t, h.nights(), 1)

	out := h.mustRun("clear", "--yes")
	assert.Contains(t, out, "cleared")
	assert.Empty(t, h.nights())

	out = h.mustRun("stop")
	assert.Contains(t, out, "No sleep session in progress")
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("history")
	assert.Contains(t, out, "No sleep data yet")

	h.mustRun("start")
	h.clock.Advance(8 * time.Hour)
	h.mustRun("stop")

	out = h.mustRun("history")
	assert.True(t, strings.HasPrefix(out, "Here is your sleep data"))
	assert.Contains(t, out, "8:00:00")
}

func TestHistoryGerman(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("--lang", "de", "history")
	assert.Contains(t, out, "Hier sind deine Schlafdaten")
}

func TestRootNonInteractivePrintsHistory(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun()
	assert.Contains(t, out, "Here is your sleep data")
	assert.False(t, h.tuiRan)
}

func TestRootInteractiveRunsTUI(t *testing.T) {
	h := newHarness(t)
	app := NewApp()
	app.Interactive = func() bool { return true }
	app.RunTUI = func(ctx context.Context, a *App) error {
		h.tuiRan = true
		assert.NotNil(t, a.Tracker)
		return nil
	}
	app.Out = &bytes.Buffer{}
	app.Err = &bytes.Buffer{}
	logFile := filepath.Join(t.TempDir(), "logs", "app.log")

	err := Execute(context.Background(), app, []string{"--db", h.dbPath, "--log-file", logFile})
	require.NoError(t, err)
	assert.True(t, h.tuiRan)
	_, err = os.Stat(logFile)
	assert.NoError(t, err, "TUI mode should log to a file")
}

func TestInteractiveLanguageOverride(t *testing.T) {
	h := newHarness(t)
	app := NewApp()
	app.Interactive = func() bool { return true }
	var prompt string
	app.RunTUI = func(ctx context.Context, a *App) error {
		prompt = format.T(a.Formatter.Localizer, "rate_prompt")
		return nil
	}
	app.Out = &bytes.Buffer{}
	app.Err = &bytes.Buffer{}
	logFile := filepath.Join(t.TempDir(), "app.log")

	err := Execute(context.Background(), app, []string{"--db", h.dbPath, "--log-file", logFile, "--lang", "de"})
	require.NoError(t, err)
	assert.Equal(t, "Wie hast du geschlafen?", prompt)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("start")
	h.clock.Advance(6 * time.Hour)
	h.mustRun("stop")

	path := filepath.Join(t.TempDir(), "nights.json")
	out := h.mustRun("export", "--format", "json", "--out", path)
	assert.Contains(t, out, "Exported 1 nights")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.Count)

	_, err = h.run("export", "--format", "xml", "--out", path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Contains(t, out, "sleeptrackr dev")
}
