package daemon

import (
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the rename-and-recreate pattern editors use
// for atomic saves into a single notification.
var debounceDelay = 200 * time.Millisecond

// WatchConfig watches base for changes to config.toml and logs that a
// restart is needed to pick them up. summd's configuration is read
// once at startup into values shared across the handler, server, and
// monitor without synchronization, so this stops short of an in-place
// reload: announcing the change is cheap and safe, mutating shared
// config fields from a watcher goroutine is not. Returns a cleanup
// function; if the watcher can't be created, returns a no-op cleanup
// and summd simply runs without change notifications.
func WatchConfig(base string, log *slog.Logger) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return func() {}
	}
	if err := watcher.Add(base); err != nil {
		log.Warn("config watcher: cannot watch base directory", "dir", base, "error", err)
		_ = watcher.Close()
		return func() {}
	}

	var dirty atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != "config.toml" {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, func() {
					if dirty.CompareAndSwap(false, true) {
						log.Info("config.toml changed; restart summd to apply")
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "error", err)
			}
		}
	}()

	return func() {
		_ = watcher.Close()
		<-done
	}
}
