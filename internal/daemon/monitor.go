package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
	"github.com/JhihJian/SUMM-Daemon/internal/session"
	"github.com/JhihJian/SUMM-Daemon/internal/telemetry"
)

// Monitor periodically recomputes every registered session's effective
// status and persists a transition when it diverges from the cached
// Status field. Apart from startup recovery, it is the only writer of
// meta.json outside of request handling, so it takes the writer lock
// for the full sweep.
type Monitor struct {
	FS        fsys.FS
	Mux       multiplexer.Multiplexer
	Registry  *registry.Registry
	Config    *config.DaemonConfig
	Interval  time.Duration
	Log       *slog.Logger
	Telemetry *telemetry.Recorder
}

// Run sweeps on a ticker until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Monitor) sweep() {
	unlock := m.Registry.Lock()
	defer unlock()

	now := time.Now()
	for _, s := range m.Registry.All() {
		cli, err := session.LoadStatus(m.FS, m.Config.SessionStatusPath(s.SessionID))
		if err != nil {
			m.Log.Warn("monitor: reading status file", "session_id", s.SessionID, "error", err)
			continue
		}

		eff := session.EffectiveStatus(m.Mux.SessionExists, s, cli, now)
		if eff == s.Status {
			continue
		}

		prev := s.Status
		s.Status = eff
		if eff == session.StatusStopped {
			s.Pid = nil
		} else if pid, ok := m.Mux.GetPanePID(s.MultiplexerSessionName); ok {
			s.Pid = &pid
		}
		s.LastActivity = now

		if err := session.Save(m.FS, m.Config.SessionRuntimePath(s.SessionID), s); err != nil {
			m.Log.Warn("monitor: persisting transition", "session_id", s.SessionID, "error", err)
			continue
		}

		m.Log.Info("monitor: status transition", "session_id", s.SessionID, "from", prev, "to", eff)
		if m.Telemetry != nil {
			m.Telemetry.MonitorTransition(string(prev), string(eff))
		}
	}
}
