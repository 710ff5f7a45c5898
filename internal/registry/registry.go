// Package registry holds the in-memory mapping of session id to
// [session.Session], the single shared mutable datum in the daemon,
// guarded by one multi-reader/single-writer lock.
package registry

import (
	"sync"

	"github.com/JhihJian/SUMM-Daemon/internal/session"
)

// Registry is safe for concurrent use. The zero value is not usable;
// construct with [New].
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]*session.Session)}
}

// Lock acquires the writer lock and returns an unlock function. Callers
// use this to hold the lock across validate-mutate-persist spans that
// touch the registry through Get/Put/Delete/All below.
func (r *Registry) Lock() func() {
	r.mu.Lock()
	return r.mu.Unlock
}

// RLock acquires the reader lock and returns an unlock function.
func (r *Registry) RLock() func() {
	r.mu.RLock()
	return r.mu.RUnlock
}

// Get returns the session for id, or (nil, false) if absent. Callers
// must hold at least the reader lock.
func (r *Registry) Get(id string) (*session.Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Put inserts or replaces the session for its own SessionID. Callers
// must hold the writer lock.
func (r *Registry) Put(s *session.Session) {
	r.sessions[s.SessionID] = s
}

// Delete removes the session for id, if present. Callers must hold the
// writer lock.
func (r *Registry) Delete(id string) {
	delete(r.sessions, id)
}

// All returns a snapshot slice of every session currently registered.
// Callers must hold at least the reader lock for the duration of the
// call (the returned slice itself may be used after release).
func (r *Registry) All() []*session.Session {
	out := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len reports the number of registered sessions. Callers must hold at
// least the reader lock.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Has reports whether id is already used by a registered session, for
// Start's (vanishingly unlikely) collision-retry loop. Callers must
// hold at least the reader lock.
func (r *Registry) Has(id string) bool {
	_, ok := r.sessions[id]
	return ok
}
