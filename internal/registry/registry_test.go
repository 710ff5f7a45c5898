package registry

import (
	"testing"
	"time"

	"github.com/JhihJian/SUMM-Daemon/internal/session"
)

func TestPutGetDelete(t *testing.T) {
	r := New()
	s := &session.Session{SessionID: "abc", Status: session.StatusRunning, CreatedAt: time.Now()}

	unlock := r.Lock()
	r.Put(s)
	unlock()

	runlock := r.RLock()
	got, ok := r.Get("abc")
	runlock()
	if !ok || got.SessionID != "abc" {
		t.Fatalf("Get(abc) = %+v, %v", got, ok)
	}

	unlock = r.Lock()
	r.Delete("abc")
	unlock()

	runlock = r.RLock()
	_, ok = r.Get("abc")
	runlock()
	if ok {
		t.Fatal("expected session to be removed")
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	r := New()
	unlock := r.Lock()
	r.Put(&session.Session{SessionID: "a"})
	r.Put(&session.Session{SessionID: "b"})
	unlock()

	runlock := r.RLock()
	all := r.All()
	runlock()
	if len(all) != 2 {
		t.Fatalf("got %d sessions, want 2", len(all))
	}
}

func TestHasDetectsCollision(t *testing.T) {
	r := New()
	unlock := r.Lock()
	r.Put(&session.Session{SessionID: "dup"})
	collided := r.Has("dup")
	unlock()
	if !collided {
		t.Error("expected Has(dup) to report true")
	}
}
