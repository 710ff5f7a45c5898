package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JhihJian/SUMM-Daemon/internal/client"
	"github.com/JhihJian/SUMM-Daemon/internal/config"
	"github.com/JhihJian/SUMM-Daemon/internal/protocol"
)

// newDaemonCmd creates the "summ daemon" command group: start, stop,
// status, and logs for the background summd process.
func newDaemonCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the summd background daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newDaemonStartCmd(stdout, stderr),
		newDaemonStopCmd(stdout, stderr),
		newDaemonStatusCmd(stdout, stderr),
		newDaemonLogsCmd(stdout, stderr),
	)
	return cmd
}

func newDaemonStartCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Fork summd into the background",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if doDaemonStart(stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

// doDaemonStart forks a detached summd process and waits briefly to
// confirm it took the lock and is listening on its socket.
func doDaemonStart(stdout, stderr io.Writer) int {
	base, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	if pid := readDaemonPID(base); pid != 0 && isDaemonAlive(pid) {
		fmt.Fprintf(stdout, "Daemon already running (PID %d)\n", pid) //nolint:errcheck // best-effort stdout
		return 0
	}

	summdPath, err := exec.LookPath("summd")
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon start: finding summd: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	child := exec.Command(summdPath)
	child.SysProcAttr = daemonSysProcAttr()
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil

	if err := child.Start(); err != nil {
		fmt.Fprintf(stderr, "summ daemon start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	childPID := child.Process.Pid

	time.Sleep(200 * time.Millisecond)
	pid := readDaemonPID(base)
	if pid != childPID {
		fmt.Fprintf(stderr, "summ daemon start: child failed to take the lock (pidfile has %d, expected %d)\n", pid, childPID) //nolint:errcheck // best-effort stderr
		return 1
	}

	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon start: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	for i := 0; i < 50; i++ {
		if _, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqDaemonStatus}); err == nil {
			fmt.Fprintf(stdout, "Daemon started (PID %d)\n", childPID) //nolint:errcheck // best-effort stdout
			return 0
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Fprintf(stderr, "summ daemon start: PID %d did not answer on %s within 5s\n", childPID, sockPath) //nolint:errcheck // best-effort stderr
	return 1
}

func newDaemonStopCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if doDaemonStop(stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

// doDaemonStop sends SIGTERM to the pidfile's process and waits up to
// 5s for that process to exit.
func doDaemonStop(stdout, stderr io.Writer) int {
	base, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon stop: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	pid := readDaemonPID(base)
	if pid == 0 || !isDaemonAlive(pid) {
		fmt.Fprintln(stderr, "summ daemon stop: no daemon is running") //nolint:errcheck // best-effort stderr
		return 1
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon stop: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(stderr, "summ daemon stop: signaling PID %d: %v\n", pid, err) //nolint:errcheck // best-effort stderr
		return 1
	}

	for i := 0; i < 50; i++ {
		if !isDaemonAlive(pid) {
			fmt.Fprintf(stdout, "Daemon stopped (PID %d)\n", pid) //nolint:errcheck // best-effort stdout
			return 0
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Fprintf(stderr, "summ daemon stop: PID %d did not exit within 5s\n", pid) //nolint:errcheck // best-effort stderr
	return 1
}

func newDaemonStatusCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether summd is running",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if doDaemonStatus(stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
}

// doDaemonStatus reports PID liveness from the pidfile and, if alive,
// asks the daemon itself for its session count and version over the
// socket.
func doDaemonStatus(stdout, stderr io.Writer) int {
	base, err := config.BaseDir()
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon status: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	pid := readDaemonPID(base)
	if pid == 0 || !isDaemonAlive(pid) {
		fmt.Fprintln(stdout, "Daemon is not running") //nolint:errcheck // best-effort stdout
		return 1
	}

	sockPath, err := resolveSocketPath()
	if err != nil {
		fmt.Fprintf(stdout, "Daemon is running (PID %d)\n", pid) //nolint:errcheck // best-effort stdout
		return 0
	}
	resp, err := client.Call(sockPath, protocol.Request{Type: protocol.ReqDaemonStatus})
	if err != nil {
		fmt.Fprintf(stdout, "Daemon is running (PID %d, socket unreachable: %v)\n", pid, err) //nolint:errcheck // best-effort stdout
		return 0
	}
	var status protocol.DaemonStatusResponse
	if err := decodeResponse(resp, &status); err != nil {
		fmt.Fprintf(stdout, "Daemon is running (PID %d)\n", pid) //nolint:errcheck // best-effort stdout
		return 0
	}

	fmt.Fprintf(stdout, "Daemon is running (PID %d, version %s, %d session(s))\n", pid, status.Version, status.SessionCount) //nolint:errcheck // best-effort stdout
	return 0
}

func newDaemonLogsCmd(stdout, stderr io.Writer) *cobra.Command {
	var numLines int
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail the daemon log file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if doDaemonLogs(numLines, follow, stdout, stderr) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&numLines, "lines", "n", 50, "number of lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "follow log output")
	return cmd
}

func doDaemonLogs(numLines int, follow bool, stdout, stderr io.Writer) int {
	cfg, err := resolveConfig()
	if err != nil {
		fmt.Fprintf(stderr, "summ daemon logs: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	if _, err := os.Stat(cfg.LogFile); os.IsNotExist(err) {
		fmt.Fprintf(stderr, "summ daemon logs: log file not found: %s\n", cfg.LogFile) //nolint:errcheck // best-effort stderr
		return 1
	}

	tailArgs := []string{"-n", strconv.Itoa(numLines)}
	if follow {
		tailArgs = append(tailArgs, "-f")
	}
	tailArgs = append(tailArgs, cfg.LogFile)

	tailCmd := exec.Command("tail", tailArgs...)
	tailCmd.Stdout = stdout
	tailCmd.Stderr = stderr
	if err := tailCmd.Run(); err != nil {
		fmt.Fprintf(stderr, "summ daemon logs: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	return 0
}

// readDaemonPID reads the PID summd wrote into <base>/daemon.pid.
// Returns 0 if the file is missing, empty, or unparseable.
func readDaemonPID(base string) int {
	data, err := os.ReadFile(filepath.Join(base, "daemon.pid"))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
