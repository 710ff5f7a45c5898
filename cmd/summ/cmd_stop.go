package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

func newStopCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Stop a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if doStop(args[0], stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func doStop(sessionID string, stdout, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ stop: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqStop, SessionID: sessionID})
	if err != nil {
		fmt.Fprintf(stderr, "summ stop: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ stop: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	fmt.Fprintf(stdout, "Stopped session %s\n", sessionID) //nolint:errcheck // best-effort stdout
	return 0
}
