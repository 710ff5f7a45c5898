// Package multiplexer wraps the terminal-multiplexer binary (tmux) that
// hosts each session's detached interactive process. Every call is
// synchronous and independent; no persistent connection to the
// multiplexer is kept between calls.
package multiplexer

import "time"

// Multiplexer is the contract the daemon depends on. The tmux-backed
// implementation lives in [Tmux]; tests use [Fake].
type Multiplexer interface {
	// CheckAvailable verifies the multiplexer binary is present and at
	// least the minimum supported version.
	CheckAvailable() error

	// CreateSession starts a detached session named name, rooted at
	// workdir, running command.
	CreateSession(name, workdir, command string) error

	// SessionExists reports whether a session with the given name is
	// currently hosted by the multiplexer.
	SessionExists(name string) bool

	// GetPanePID returns the process id of the session's first pane,
	// or (0, false) if the session does not exist.
	GetPanePID(name string) (int, bool)

	// SendKeys writes text as literal keystrokes into the session,
	// appending a newline token when pressEnter is true.
	SendKeys(name, text string, pressEnter bool) error

	// KillSession terminates the session. Best-effort: killing a
	// session that no longer exists is not an error.
	KillSession(name string) error

	// ListSessionsWithPrefix returns the names of sessions whose name
	// starts with prefix. Must succeed with an empty result when the
	// multiplexer is hosting zero sessions.
	ListSessionsWithPrefix(prefix string) ([]string, error)

	// EnableLogging arranges for the session's output to be appended
	// to logPath.
	EnableLogging(name, logPath string) error

	// CapturePane returns the last n lines of the session's pane buffer.
	CapturePane(name string, lines int) (string, error)
}

// MinVersionMajor and MinVersionMinor give the first supported release.
const (
	MinVersionMajor = 3
	MinVersionMinor = 0
)

// defaultTimeout bounds every child-process invocation against the
// multiplexer binary so a wedged call cannot stall a request handler
// indefinitely.
const defaultTimeout = 5 * time.Second
