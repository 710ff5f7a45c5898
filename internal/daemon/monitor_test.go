package daemon

import (
	"testing"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
	"github.com/JhihJian/SUMM-Daemon/internal/session"
)

func TestMonitorSweepPersistsTransitionToStopped(t *testing.T) {
	fs := fsys.NewFake()
	mux := multiplexer.NewFake()
	reg := registry.New()
	cfg := &config.DaemonConfig{SessionsDir: "/base/sessions", MultiplexerPrefix: "summ-"}

	workdir := cfg.SessionRuntimePath("abc")
	pid := 42
	s := &session.Session{
		SessionID:              "abc",
		MultiplexerSessionName: "summ-abc",
		Status:                 session.StatusRunning,
		Pid:                    &pid,
		CreatedAt:              time.Now(),
	}
	if err := fs.MkdirAll(workdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := session.Save(fs, workdir, s); err != nil {
		t.Fatal(err)
	}

	unlock := reg.Lock()
	reg.Put(s)
	unlock()
	// Note: mux has no "summ-abc" session registered, so SessionExists
	// reports false and the effective status is Stopped.

	m := &Monitor{FS: fs, Mux: mux, Registry: reg, Config: cfg, Interval: time.Second, Log: discardLogger()}
	m.sweep()

	unlock = reg.RLock()
	got, _ := reg.Get("abc")
	unlock()
	if got.Status != session.StatusStopped {
		t.Errorf("status = %v, want stopped", got.Status)
	}
	if got.Pid != nil {
		t.Error("expected pid cleared once the multiplexer session is gone")
	}

	reloaded, err := session.Load(fs, workdir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != session.StatusStopped {
		t.Errorf("persisted status = %v, want stopped", reloaded.Status)
	}
}

func TestMonitorSweepNoopWhenStatusUnchanged(t *testing.T) {
	fs := fsys.NewFake()
	mux := multiplexer.NewFake()
	reg := registry.New()
	cfg := &config.DaemonConfig{SessionsDir: "/base/sessions", MultiplexerPrefix: "summ-"}

	if err := mux.CreateSession("summ-abc", "/workdir", "claude"); err != nil {
		t.Fatal(err)
	}

	workdir := cfg.SessionRuntimePath("abc")
	s := &session.Session{
		SessionID:              "abc",
		MultiplexerSessionName: "summ-abc",
		Status:                 session.StatusRunning,
		CreatedAt:              time.Now(),
	}
	if err := fs.MkdirAll(workdir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := session.Save(fs, workdir, s); err != nil {
		t.Fatal(err)
	}

	unlock := reg.Lock()
	reg.Put(s)
	unlock()

	writesBefore := countWrites(fs)
	m := &Monitor{FS: fs, Mux: mux, Registry: reg, Config: cfg, Interval: time.Second, Log: discardLogger()}
	m.sweep()

	if countWrites(fs) != writesBefore {
		t.Error("expected no meta.json rewrite when effective status is unchanged")
	}
}

func countWrites(fs *fsys.Fake) int {
	n := 0
	for _, c := range fs.Calls {
		if c.Method == "WriteFile" {
			n++
		}
	}
	return n
}
