package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

func newStatusCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show a session's effective status",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if doStatus(args[0], stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func doStatus(sessionID string, stdout, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ status: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqStatus, SessionID: sessionID})
	if err != nil {
		fmt.Fprintf(stderr, "summ status: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ status: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	var status protocol.StatusResponse
	if err := decodeResponse(resp, &status); err != nil {
		fmt.Fprintf(stderr, "summ status: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	fmt.Fprintf(stdout, "session:  %s\n", status.SessionID) //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "name:     %s\n", status.Name)       //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "cli:      %s\n", status.Cli)        //nolint:errcheck // best-effort stdout
	fmt.Fprintf(stdout, "status:   %s\n", status.Status)     //nolint:errcheck // best-effort stdout
	if status.Pid != nil {
		fmt.Fprintf(stdout, "pid:      %d\n", *status.Pid) //nolint:errcheck // best-effort stdout
	}
	return 0
}
