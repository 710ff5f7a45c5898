package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesParentDirAndWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "summd.log")

	log, closer, err := New(path, "debug", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	log.Info("daemon started", "pid", 123)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output, got nothing")
	}
}

func TestNewWithConsoleEchoesHumanReadableLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summd.log")
	var console bytes.Buffer

	log, closer, err := New(path, "info", &console)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	log.Info("session started", "session_id", "abc123")

	if !strings.Contains(console.String(), "session started") || !strings.Contains(console.String(), "session_id=abc123") {
		t.Errorf("console output = %q, want it to contain the message and attrs", console.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"session_id":"abc123"`) {
		t.Errorf("file output = %q, want JSON with session_id", string(data))
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if parseLevel("bogus") != parseLevel("info") {
		t.Error("unrecognized level should fall back to info")
	}
}
