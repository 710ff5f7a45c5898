package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

func newStartCmd(stdout, stderr io.Writer) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "start <cli> <init>",
		Short: "Start a new supervised CLI session",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if doStart(args[0], args[1], name, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "a human-readable name for the session (defaults to its id)")
	return cmd
}

func doStart(cli, init, name string, stdout, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqStart, Cli: cli, Init: init, Name: name})
	if err != nil {
		fmt.Fprintf(stderr, "summ start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ start: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	var status protocol.StatusResponse
	if err := decodeResponse(resp, &status); err != nil {
		fmt.Fprintf(stderr, "summ start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	fmt.Fprintf(stdout, "Started session %s (%s)\n", status.SessionID, status.Name) //nolint:errcheck // best-effort stdout
	return 0
}
