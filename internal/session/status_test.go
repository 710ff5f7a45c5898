package session

import (
	"testing"
	"time"
)

func alwaysExists() SessionExists {
	return func(string) bool { return true }
}

func TestEffectiveStatusMultiplexerGone(t *testing.T) {
	exists := func(string) bool { return false }
	s := &Session{MultiplexerSessionName: "summ-abc"}

	got := EffectiveStatus(exists, s, &CliStatus{State: CliIdle, Timestamp: time.Now()}, time.Now())
	if got != StatusStopped {
		t.Errorf("got %q, want stopped", got)
	}
}

func TestEffectiveStatusNoSignalAssumesRunning(t *testing.T) {
	exists := alwaysExists()
	s := &Session{MultiplexerSessionName: "summ-abc"}

	got := EffectiveStatus(exists, s, nil, time.Now())
	if got != StatusRunning {
		t.Errorf("got %q, want running", got)
	}
}

func TestEffectiveStatusStaleSignalAssumesRunning(t *testing.T) {
	exists := alwaysExists()
	s := &Session{MultiplexerSessionName: "summ-abc"}
	now := time.Now()
	stale := &CliStatus{State: CliIdle, Timestamp: now.Add(-121 * time.Second)}

	got := EffectiveStatus(exists, s, stale, now)
	if got != StatusRunning {
		t.Errorf("got %q, want running for a signal older than 120s", got)
	}
}

func TestEffectiveStatusFreshIdle(t *testing.T) {
	exists := alwaysExists()
	s := &Session{MultiplexerSessionName: "summ-abc"}
	now := time.Now()
	fresh := &CliStatus{State: CliIdle, Timestamp: now.Add(-1 * time.Second)}

	got := EffectiveStatus(exists, s, fresh, now)
	if got != StatusIdle {
		t.Errorf("got %q, want idle", got)
	}
}

func TestEffectiveStatusFreshBusyMapsToRunning(t *testing.T) {
	exists := alwaysExists()
	s := &Session{MultiplexerSessionName: "summ-abc"}
	now := time.Now()
	fresh := &CliStatus{State: CliBusy, Timestamp: now}

	got := EffectiveStatus(exists, s, fresh, now)
	if got != StatusRunning {
		t.Errorf("got %q, want running", got)
	}
}

func TestEffectiveStatusFreshStoppedSignal(t *testing.T) {
	exists := alwaysExists()
	s := &Session{MultiplexerSessionName: "summ-abc"}
	now := time.Now()
	fresh := &CliStatus{State: CliStopped, Timestamp: now}

	got := EffectiveStatus(exists, s, fresh, now)
	if got != StatusStopped {
		t.Errorf("got %q, want stopped", got)
	}
}

func TestMultiplexerName(t *testing.T) {
	if got, want := MultiplexerName("summ-", "abc123"), "summ-abc123"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
