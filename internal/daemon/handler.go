package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/fsys"
	"github.com/JhihJian/SUMM-Daemon/internal/hooks"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
	"github.com/JhihJian/SUMM-Daemon/internal/registry"
	"github.com/JhihJian/SUMM-Daemon/internal/session"
	"github.com/JhihJian/SUMM-Daemon/internal/telemetry"
	"github.com/JhihJian/SUMM-Daemon/internal/workspace"
)

// Version is reported in DaemonStatus responses.
const Version = "0.1.0"

// Handler dispatches decoded requests against the registry, the
// multiplexer, and the filesystem. It holds no connection state; a
// single Handler serves every connection the server accepts.
type Handler struct {
	FS        fsys.FS
	Mux       multiplexer.Multiplexer
	Registry  *registry.Registry
	Config    *config.DaemonConfig
	Log       *slog.Logger
	Telemetry *telemetry.Recorder
	Base      string // ~/.summ-daemon, for the installed hook script path
	Started   time.Time
}

// Handle dispatches req to the operation named by req.Type, returning
// the response to write back to the client. It never returns a Go
// error: every failure is encoded as a protocol.Response of type
// "Error".
func (h *Handler) Handle(req *protocol.Request) protocol.Response {
	switch req.Type {
	case protocol.ReqStart:
		return h.handleStart(req)
	case protocol.ReqStop:
		return h.handleStop(req)
	case protocol.ReqList:
		return h.handleList(req)
	case protocol.ReqStatus:
		return h.handleStatus(req)
	case protocol.ReqInject:
		return h.handleInject(req)
	case protocol.ReqDaemonStatus:
		return h.handleDaemonStatus()
	default:
		return protocol.ErrorResponse(protocol.NewError(protocol.ErrInvalidCli, fmt.Sprintf("unknown request type %q", req.Type)))
	}
}

func errResponse(err error) protocol.Response {
	if perr, ok := err.(*protocol.Error); ok {
		return protocol.ErrorResponse(perr)
	}
	return protocol.ErrorResponse(protocol.NewError(protocol.ErrDaemonUnavailable, err.Error()))
}

// teardownSessionDir removes a partially-created session directory
// after a Start failure, so a failed session creates no trace on disk.
func (h *Handler) teardownSessionDir(sessionID, workdir string) {
	if err := h.FS.RemoveAll(workdir); err != nil {
		h.Log.Warn("start: cleaning up after failed session creation", "session_id", sessionID, "error", err)
	}
}

func (h *Handler) newSessionID() string {
	for {
		id := uuid.NewString()
		unlock := h.Registry.RLock()
		collides := h.Registry.Has(id)
		unlock()
		if !collides {
			return id
		}
	}
}

func (h *Handler) handleStart(req *protocol.Request) protocol.Response {
	if req.Cli == "" {
		return errResponse(protocol.NewError(protocol.ErrInvalidCli, "cli is required"))
	}
	if req.Init == "" {
		return errResponse(protocol.NewError(protocol.ErrInitSource, "init is required"))
	}

	if _, err := os.Stat(req.Init); err != nil {
		return errResponse(protocol.NewError(protocol.ErrInitSource, fmt.Sprintf("initialization source %q: %v", req.Init, err)))
	}

	sessionID := h.newSessionID()
	workdir := h.Config.SessionRuntimePath(sessionID)
	workspaceDir := h.Config.SessionWorkspacePath(sessionID)
	runtimeDir := h.Config.SessionRuntimeDir(sessionID)

	if err := h.FS.MkdirAll(workspaceDir, 0o755); err != nil {
		return errResponse(protocol.NewError(protocol.ErrArchiveExtraction, err.Error()))
	}

	if err := workspace.Materialize(req.Init, workspaceDir); err != nil {
		h.teardownSessionDir(sessionID, workdir)
		return errResponse(err)
	}

	scriptPath := h.Config.HookScriptPath(h.Base)
	if err := hooks.WireSession(h.FS, workspaceDir, req.Cli, scriptPath, sessionID, runtimeDir); err != nil {
		h.teardownSessionDir(sessionID, workdir)
		return errResponse(protocol.NewError(protocol.ErrInitSource, err.Error()))
	}

	muxName := session.MultiplexerName(h.Config.MultiplexerPrefix, sessionID)
	if err := h.Mux.CreateSession(muxName, workspaceDir, req.Cli); err != nil {
		h.teardownSessionDir(sessionID, workdir)
		return errResponse(protocol.NewError(protocol.ErrProcessStart, err.Error()))
	}

	// Best-effort: pane logging and pid resolution never block Start.
	logPath := h.Config.LogsDir + "/" + sessionID + ".log"
	if err := h.Mux.EnableLogging(muxName, logPath); err != nil {
		h.Log.Warn("start: enabling pane logging", "session_id", sessionID, "error", err)
	}
	pid, _ := h.Mux.GetPanePID(muxName)

	now := time.Now()
	name := req.Name
	if name == "" {
		name = sessionID
	}
	s := &session.Session{
		SessionID:              sessionID,
		MultiplexerSessionName: muxName,
		DisplayName:            name,
		Cli:                    req.Cli,
		Workdir:                workdir,
		InitSource:             req.Init,
		Status:                 session.StatusRunning,
		CreatedAt:              now,
		LastActivity:           now,
	}
	if pid != 0 {
		s.Pid = &pid
	}

	if err := session.Save(h.FS, workdir, s); err != nil {
		h.teardownSessionDir(sessionID, workdir)
		return errResponse(protocol.NewError(protocol.ErrProcessStart, err.Error()))
	}

	unlock := h.Registry.Lock()
	h.Registry.Put(s)
	unlock()

	if h.Telemetry != nil {
		h.Telemetry.SessionStarted()
	}

	return protocol.Success(toStatusResponse(s))
}

func (h *Handler) handleStop(req *protocol.Request) protocol.Response {
	unlock := h.Registry.Lock()
	defer unlock()

	s, ok := h.Registry.Get(req.SessionID)
	if !ok {
		return errResponse(protocol.NewError(protocol.ErrSessionNotFound, req.SessionID))
	}

	if err := h.Mux.KillSession(s.MultiplexerSessionName); err != nil {
		return errResponse(protocol.NewError(protocol.ErrMultiplexerUnavailable, err.Error()))
	}

	s.Status = session.StatusStopped
	s.Pid = nil
	s.LastActivity = time.Now()
	if err := session.Save(h.FS, h.Config.SessionRuntimePath(s.SessionID), s); err != nil {
		h.Log.Warn("stop: persisting session", "session_id", s.SessionID, "error", err)
	}

	if h.Telemetry != nil {
		h.Telemetry.SessionStopped()
	}

	return protocol.Success(toStatusResponse(s))
}

func (h *Handler) handleList(req *protocol.Request) protocol.Response {
	unlock := h.Registry.RLock()
	defer unlock()

	all := h.Registry.All()
	out := make([]protocol.SessionInfo, 0, len(all))
	for _, s := range all {
		eff := h.effectiveStatus(s)
		if req.StatusFilter != "" && protocol.Status(eff) != req.StatusFilter {
			continue
		}
		out = append(out, protocol.SessionInfo{
			SessionID:    s.SessionID,
			Name:         s.DisplayName,
			Cli:          s.Cli,
			Status:       protocol.Status(eff),
			CreatedAt:    s.CreatedAt.Format(time.RFC3339),
			LastActivity: s.LastActivity.Format(time.RFC3339),
		})
	}
	return protocol.Success(out)
}

func (h *Handler) handleStatus(req *protocol.Request) protocol.Response {
	unlock := h.Registry.RLock()
	defer unlock()

	s, ok := h.Registry.Get(req.SessionID)
	if !ok {
		return errResponse(protocol.NewError(protocol.ErrSessionNotFound, req.SessionID))
	}

	eff := h.effectiveStatus(s)
	resp := protocol.StatusResponse{
		SessionID: s.SessionID,
		Name:      s.DisplayName,
		Cli:       s.Cli,
		Status:    protocol.Status(eff),
		Pid:       s.Pid,
	}
	return protocol.Success(resp)
}

func (h *Handler) handleInject(req *protocol.Request) protocol.Response {
	unlock := h.Registry.RLock()
	s, ok := h.Registry.Get(req.SessionID)
	unlock()
	if !ok {
		return errResponse(protocol.NewError(protocol.ErrSessionNotFound, req.SessionID))
	}

	if h.effectiveStatus(s) == session.StatusStopped {
		return errResponse(protocol.NewError(protocol.ErrSessionStopped, req.SessionID))
	}

	if err := h.Mux.SendKeys(s.MultiplexerSessionName, req.Message, true); err != nil {
		return errResponse(protocol.NewError(protocol.ErrMessageInjection, err.Error()))
	}

	unlock = h.Registry.Lock()
	s.LastActivity = time.Now()
	unlock()

	return protocol.Success(struct{}{})
}

func (h *Handler) handleDaemonStatus() protocol.Response {
	unlock := h.Registry.RLock()
	count := h.Registry.Len()
	unlock()

	return protocol.Success(protocol.DaemonStatusResponse{
		Running:      true,
		SessionCount: count,
		Version:      Version,
	})
}

// effectiveStatus derives s's live status from the multiplexer and its
// hook-written status file. Callers must hold at least the reader lock.
func (h *Handler) effectiveStatus(s *session.Session) session.Status {
	cli, err := session.LoadStatus(h.FS, h.Config.SessionStatusPath(s.SessionID))
	if err != nil {
		h.Log.Warn("reading hook status file", "session_id", s.SessionID, "error", err)
	}
	return session.EffectiveStatus(h.Mux.SessionExists, s, cli, time.Now())
}

func toStatusResponse(s *session.Session) protocol.StatusResponse {
	return protocol.StatusResponse{
		SessionID: s.SessionID,
		Name:      s.DisplayName,
		Cli:       s.Cli,
		Status:    protocol.Status(s.Status),
		Pid:       s.Pid,
	}
}
