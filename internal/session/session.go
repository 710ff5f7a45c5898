// Package session defines the Session record, the CLI-reported status
// file it is reconciled against, and the pure effective-status
// derivation that is the heart of the daemon's consistency model.
package session

import "time"

// CliState is the state a hook script reports in status.json.
type CliState string

const (
	CliIdle    CliState = "idle"
	CliBusy    CliState = "busy"
	CliStopped CliState = "stopped"
)

// CliStatus is the record written by the hook script to
// workdir/runtime/status.json. The daemon only reads this file; it
// never writes it.
type CliStatus struct {
	State     CliState  `json:"state"`
	Message   string    `json:"message,omitempty"`
	Event     string    `json:"event,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is the lowercase-serialized lifecycle state of a Session.
type Status string

const (
	StatusRunning Status = "running"
	StatusIdle    Status = "idle"
	StatusStopped Status = "stopped"
)

// Session is the central entity: a supervised CLI process bound to a
// multiplexer session and a workspace directory.
type Session struct {
	SessionID               string    `json:"session_id"`
	MultiplexerSessionName   string    `json:"multiplexer_session_name"`
	DisplayName              string    `json:"name"`
	Cli                      string    `json:"cli"`
	Workdir                  string    `json:"workdir"`
	InitSource               string    `json:"init_source"`
	Status                   Status    `json:"status"`
	Pid                      *int      `json:"pid,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	LastActivity             time.Time `json:"last_activity"`
}

// MultiplexerName derives the multiplexer session name for a session
// id, under the given prefix (default "summ-").
func MultiplexerName(prefix, sessionID string) string {
	return prefix + sessionID
}
