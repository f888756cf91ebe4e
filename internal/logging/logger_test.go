package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { Setup(os.Stderr, "info") })

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn message missing: %q", out)
	}
}

func TestSetupInvalidLevel(t *testing.T) {
	if err := Setup(&bytes.Buffer{}, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}
