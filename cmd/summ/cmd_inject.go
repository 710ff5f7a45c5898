package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

func newInjectCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "inject <session-id> <message...>",
		Short: "Send a message into a running session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if doInject(args[0], strings.Join(args[1:], " "), stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

func doInject(sessionID, message string, stdout, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ inject: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqInject, SessionID: sessionID, Message: message})
	if err != nil {
		fmt.Fprintf(stderr, "summ inject: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ inject: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	fmt.Fprintf(stdout, "Sent to %s\n", sessionID) //nolint:errcheck // best-effort stdout
	return 0
}
