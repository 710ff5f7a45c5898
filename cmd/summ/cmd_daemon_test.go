package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDaemonPID(t *testing.T) {
	base := t.TempDir()

	if got := readDaemonPID(base); got != 0 {
		t.Errorf("readDaemonPID (missing) = %d, want 0", got)
	}

	if err := os.WriteFile(filepath.Join(base, "daemon.pid"), []byte("4242"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := readDaemonPID(base); got != 4242 {
		t.Errorf("readDaemonPID = %d, want 4242", got)
	}

	if err := os.WriteFile(filepath.Join(base, "daemon.pid"), []byte("4242\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := readDaemonPID(base); got != 4242 {
		t.Errorf("readDaemonPID (trailing newline) = %d, want 4242", got)
	}

	if err := os.WriteFile(filepath.Join(base, "daemon.pid"), []byte("not-a-pid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := readDaemonPID(base); got != 0 {
		t.Errorf("readDaemonPID (garbage) = %d, want 0", got)
	}
}

func TestIsDaemonAliveForOwnProcess(t *testing.T) {
	if !isDaemonAlive(os.Getpid()) {
		t.Error("isDaemonAlive(self) = false, want true")
	}
}
