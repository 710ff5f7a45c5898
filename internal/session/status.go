package session

import "time"

// StaleAfter is the age beyond which a hook-written status file is no
// longer trusted as an affirmative idle/stopped signal.
const StaleAfter = 120 * time.Second

// SessionExists abstracts the multiplexer existence check so this
// package stays free of a dependency on the multiplexer package.
type SessionExists func(name string) bool

// EffectiveStatus is the pure function at the heart of the
// consistency model: it derives a session's live status from the
// multiplexer's own knowledge and the freshest hook-written signal,
// never from the cached Status field.
//
//	if the multiplexer session is gone: Stopped
//	else if no status.json, or it's stale (> StaleAfter old): Running (conservative: assume busy)
//	else: map its state (idle -> Idle, busy -> Running, stopped -> Stopped)
func EffectiveStatus(exists SessionExists, s *Session, cli *CliStatus, now time.Time) Status {
	if !exists(s.MultiplexerSessionName) {
		return StatusStopped
	}
	if cli == nil {
		return StatusRunning
	}
	if now.Sub(cli.Timestamp) > StaleAfter {
		return StatusRunning
	}
	switch cli.State {
	case CliIdle:
		return StatusIdle
	case CliStopped:
		return StatusStopped
	default:
		return StatusRunning
	}
}
