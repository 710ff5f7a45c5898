// summ is the command-line client for summd, the session supervisor
// daemon. Every subcommand but "daemon" dials the daemon's socket,
// performs one request/response round trip, and renders the result.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit signals a non-zero exit from a RunE after the command has
// already written its own error to stderr.
var errExit = errors.New("exit")

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "summ",
		Short:         "summ manages a fleet of supervised CLI assistant sessions",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "summ: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newStartCmd(stdout, stderr),
		newStopCmd(stdout, stderr),
		newListCmd(stdout, stderr),
		newStatusCmd(stdout, stderr),
		newAttachCmd(stdout, stderr),
		newInjectCmd(stdout, stderr),
		newDaemonCmd(stdout, stderr),
	)
	return root
}

// resolveSocketPath loads the daemon config to find its configured
// socket path. With no config.toml the default location is used; a
// config.toml that can't be read or parsed is returned as an error,
// the same way summd refuses to start on it.
func resolveSocketPath() (string, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(base)
	if err != nil {
		return "", err
	}
	return cfg.SocketPath, nil
}
