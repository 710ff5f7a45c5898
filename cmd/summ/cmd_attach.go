package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/multiplexer"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
	"github.com/JhihJian/SUMM-Daemon/internal/session"
)

func newAttachCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <session-id>",
		Short: "Attach this terminal to a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if doAttach(args[0], stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

// doAttach resolves the session through the daemon to confirm it
// exists and is live, then attaches the terminal directly to its
// tmux session. The attach itself never goes through the daemon
// socket: once the session name is known, this is a bare tmux
// attach-session with stdio passed straight through.
func doAttach(sessionID string, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqStatus, SessionID: sessionID})
	if err != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	var status protocol.StatusResponse
	if err := decodeResponse(resp, &status); err != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if status.Status == protocol.StatusStopped {
		fmt.Fprintf(stderr, "summ attach: session %s is stopped\n", sessionID) //nolint:errcheck // best-effort stderr
		return 1
	}

	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	muxName := session.MultiplexerName(cfg.MultiplexerPrefix, sessionID)
	mux := multiplexer.NewTmux()
	if err := mux.AttachSession(muxName); err != nil {
		fmt.Fprintf(stderr, "summ attach: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	return 0
}
