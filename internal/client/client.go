// Package client dials summd's request socket and performs a single
// request/response round trip per call, matching the one-request-per-
// connection wire protocol the daemon implements.
package client

import (
	"fmt"
	"net"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

// DefaultTimeout bounds how long Call waits to connect and to read the
// response before giving up.
const DefaultTimeout = 5 * time.Second

// Call dials socketPath, writes req as a single frame, reads back
// exactly one response frame, and returns it. A dial failure is
// reported as an E007 (daemon unavailable) protocol error so callers
// can treat every failure mode uniformly.
func Call(socketPath string, req protocol.Request) (protocol.Response, error) {
	conn, err := net.DialTimeout("unix", socketPath, DefaultTimeout)
	if err != nil {
		return protocol.Response{}, protocol.NewError(protocol.ErrDaemonUnavailable,
			fmt.Sprintf("connecting to %s: %v (is summd running?)", socketPath, err))
	}
	defer conn.Close() //nolint:errcheck // best-effort cleanup

	_ = conn.SetDeadline(time.Now().Add(DefaultTimeout))

	if err := protocol.WriteFrame(conn, req); err != nil {
		return protocol.Response{}, protocol.NewError(protocol.ErrDaemonUnavailable, err.Error())
	}

	var resp protocol.Response
	if err := protocol.ReadFrame(conn, &resp); err != nil {
		return protocol.Response{}, protocol.NewError(protocol.ErrDaemonUnavailable, err.Error())
	}
	return resp, nil
}

// AsError converts an Error-type response into a *protocol.Error, or
// returns nil for a Success response.
func AsError(resp protocol.Response) error {
	if resp.Type != "Error" {
		return nil
	}
	return protocol.NewError(protocol.ErrorCode(resp.Code), resp.Message)
}
