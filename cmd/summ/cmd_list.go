package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if doList(protocol.Status(status), stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (running, idle, stopped)")
	return cmd
}

func doList(statusFilter protocol.Status, stdout, stderr io.Writer) int {
	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ list: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqList, StatusFilter: statusFilter})
	if err != nil {
		fmt.Fprintf(stderr, "summ list: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if perr := client.AsError(resp); perr != nil {
		fmt.Fprintf(stderr, "summ list: %v\n", perr) //nolint:errcheck // best-effort stderr
		return 1
	}

	var sessions []protocol.SessionInfo
	if err := decodeResponse(resp, &sessions); err != nil {
		fmt.Fprintf(stderr, "summ list: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	if len(sessions) == 0 {
		fmt.Fprintln(stdout, "No sessions.") //nolint:errcheck // best-effort stdout
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION ID\tNAME\tCLI\tSTATUS\tLAST ACTIVITY") //nolint:errcheck // best-effort stdout
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.SessionID, s.Name, s.Cli, s.Status, s.LastActivity) //nolint:errcheck // best-effort stdout
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "summ list: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	return 0
}
