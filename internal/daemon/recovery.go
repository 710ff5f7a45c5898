// Package daemon wires the registry, multiplexer, filesystem, and
// configuration together into the running summd process: startup
// recovery, the request socket, and the periodic status monitor.
package daemon

import (
	"log/slog"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
	"github.com/JhihJian/SUMM-Daemon/internal/session"
)

// Recover reconciles on-disk session metadata against the multiplexer's
// live session set at startup. For every sessions_dir child with a
// meta.json:
//
//   - its multiplexer session is alive: adopt it (status Running,
//     pid refreshed from the multiplexer; meta.json is rewritten if
//     the pid changed so a restart-without-intervening-monitor-tick
//     still reflects the correct pid on disk)
//   - its multiplexer session is gone but meta.json says Running:
//     mark it dead (status Stopped, pid cleared, persisted)
//   - otherwise: keep the on-disk status as-is
//
// Live multiplexer sessions under the daemon's prefix with no
// corresponding meta.json are orphans: logged, never adopted, since
// the daemon has no record of their workdir or init source.
func Recover(fs fsys.FS, mux multiplexer.Multiplexer, cfg *config.DaemonConfig, reg *registry.Registry, log *slog.Logger) error {
	if err := fs.MkdirAll(cfg.SessionsDir, 0o755); err != nil {
		return err
	}

	live, err := mux.ListSessionsWithPrefix(cfg.MultiplexerPrefix)
	if err != nil {
		return err
	}
	liveSet := make(map[string]bool, len(live))
	for _, name := range live {
		liveSet[name] = true
	}
	claimed := make(map[string]bool, len(live))

	entries, err := fs.ReadDir(cfg.SessionsDir)
	if err != nil {
		return err
	}

	unlock := reg.Lock()
	defer unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sessionID := entry.Name()
		workdir := cfg.SessionRuntimePath(sessionID)
		s, err := session.Load(fs, workdir)
		if err != nil {
			log.Warn("recovery: skipping session with unreadable metadata", "session_id", sessionID, "error", err)
			continue
		}

		if liveSet[s.MultiplexerSessionName] {
			claimed[s.MultiplexerSessionName] = true
			pid, _ := mux.GetPanePID(s.MultiplexerSessionName)
			changed := s.Status != session.StatusRunning || s.Pid == nil || *s.Pid != pid
			s.Status = session.StatusRunning
			if pid != 0 {
				s.Pid = &pid
			}
			if changed {
				if err := session.Save(fs, workdir, s); err != nil {
					log.Warn("recovery: persisting adopted session", "session_id", sessionID, "error", err)
				}
			}
			log.Info("recovery: adopted session", "session_id", sessionID, "multiplexer_session", s.MultiplexerSessionName)
		} else if s.Status == session.StatusRunning {
			s.Status = session.StatusStopped
			s.Pid = nil
			if err := session.Save(fs, workdir, s); err != nil {
				log.Warn("recovery: persisting dead session", "session_id", sessionID, "error", err)
			}
			log.Info("recovery: marked session dead", "session_id", sessionID)
		}

		reg.Put(s)
	}

	for _, name := range live {
		if claimed[name] {
			continue
		}
		log.Warn("recovery: orphan multiplexer session with no metadata", "multiplexer_session", name)
	}

	return nil
}
