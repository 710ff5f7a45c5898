//go:build !windows

package main

import (
	"os"
	"syscall"
)

// isDaemonAlive checks whether a process with the given PID is running
// by sending signal 0, a no-op that only checks process existence.
func isDaemonAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// daemonSysProcAttr detaches the forked summd from the parent's process
// group so it survives the client exiting.
func daemonSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
