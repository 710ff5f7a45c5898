package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

// Server accepts connections on a Unix socket and dispatches each
// request frame it reads to a Handler, one round-trip per connection.
type Server struct {
	SocketPath string
	Handler    *Handler
	Log        *slog.Logger

	// RequestTimeout bounds how long handleConn waits on the frame
	// read/write for a single connection before giving up on a dead
	// peer. Zero means no deadline is set.
	RequestTimeout time.Duration

	listener net.Listener
}

// Listen removes any stale socket file at SocketPath and binds a fresh
// Unix listener. Call Serve afterward to start accepting.
func (s *Server) Listen() error {
	if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	l, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// Serve runs the accept loop until ctx is canceled or Close is called,
// at which point the underlying accept error is treated as a clean
// shutdown rather than logged as a failure. Each accepted connection is
// served in its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Log.Warn("accept", "error", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops the listener, unblocking Serve.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConn reads exactly one request frame, dispatches it, writes
// exactly one response frame, and closes the connection. The protocol
// is one request per connection: clients reconnect for each call.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	if s.RequestTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(s.RequestTimeout)); err != nil {
			s.Log.Warn("setting connection deadline", "error", err)
		}
	}

	var req protocol.Request
	if err := protocol.ReadFrame(conn, &req); err != nil {
		s.Log.Warn("reading request frame", "error", err)
		resp := protocol.ErrorResponse(protocol.NewError(protocol.ErrDaemonUnavailable, err.Error()))
		_ = protocol.WriteFrame(conn, resp)
		return
	}

	resp := s.Handler.Handle(&req)
	s.Log.Debug("request handled", "request_type", req.Type, "response_type", resp.Type, "code", resp.Code)
	if s.Handler.Telemetry != nil {
		s.Handler.Telemetry.Request(req.Type)
	}

	if err := protocol.WriteFrame(conn, resp); err != nil {
		s.Log.Warn("writing response frame", "error", err, "request_type", req.Type)
	}
}
