package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// AcquireLock takes an exclusive, non-blocking lock on <base>/daemon.pid
// and writes the current process's pid into it. The returned lock must
// be released (via ReleaseLock) on shutdown; holding it is what makes a
// second summd invocation against the same base directory fail fast
// instead of racing the first for the socket.
func AcquireLock(base string) (*flock.Flock, error) {
	path := filepath.Join(base, "daemon.pid")
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another summd instance holds %s", path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return lock, nil
}

// ReleaseLock unlocks and removes the pidfile.
func ReleaseLock(lock *flock.Flock) error {
	path := lock.Path()
	if err := lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
