package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/daemon"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
)

// startTestDaemon wires a real daemon.Server over a fake filesystem and
// multiplexer, points HOME at a fresh temp directory with a config.toml
// pointing at the server's socket, and returns the base directory. The
// server is shut down through t.Cleanup.
func startTestDaemon(t *testing.T) (base string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	base = filepath.Join(home, ".summ-daemon")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatal(err)
	}
	sockPath := filepath.Join(base, "daemon.sock")
	cfgContents := fmt.Sprintf("socket_path = %q\n", sockPath)
	if err := os.WriteFile(filepath.Join(base, "config.toml"), []byte(cfgContents), 0o644); err != nil {
		t.Fatal(err)
	}
	// doDaemonStatus checks the pidfile before dialing the socket, so the
	// test daemon needs a plausible pidfile of its own. The test process
	// itself is always alive, so it doubles as that PID.
	if err := os.WriteFile(filepath.Join(base, "daemon.pid"), []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}

	h := &daemon.Handler{
		FS:       fsys.NewFake(),
		Mux:      multiplexer.NewFake(),
		Registry: registry.New(),
		Config:   &config.DaemonConfig{SessionsDir: filepath.Join(base, "sessions"), MultiplexerPrefix: "summ-"},
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Base:     base,
	}
	s := &daemon.Server{SocketPath: sockPath, Handler: h, Log: h.Log}
	if err := s.Listen(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Serve(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		_ = s.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	})

	return base
}

func TestRunDaemonStatusReportsRunning(t *testing.T) {
	startTestDaemon(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"daemon", "status"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(daemon status) = %d, stderr: %s", code, stderr.String())
	}
}

func TestRunListEmptyFleet(t *testing.T) {
	startTestDaemon(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"list"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(list) = %d, stderr: %s", code, stderr.String())
	}
	if stdout.String() != "No sessions.\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "No sessions.\n")
	}
}

func TestRunUnknownCommandExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"bogus"}, &stdout, &stderr); code == 0 {
		t.Fatal("run(bogus) = 0, want non-zero")
	}
}

func TestRunStatusAgainstMissingDaemonIsDaemonUnavailable(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"status", "some-session"}, &stdout, &stderr); code == 0 {
		t.Fatal("run(status) against a missing daemon = 0, want non-zero")
	}
	if !strings.Contains(stderr.String(), "E007") {
		t.Errorf("stderr = %q, want an E007 (daemon unavailable) error", stderr.String())
	}
}
