package session

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/logger"
)

const watchDebounce = 200 * time.Millisecond

// Watch re-probes the stored token whenever the credential database at path
// changes, so a logout from another process ends this session too.
func (g *Gate) Watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory so the WAL and journal files are seen as well.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	g.mu.Lock()
	g.watcher = watcher
	g.mu.Unlock()

	go g.watchLoop(watcher, filepath.Base(path))
	return nil
}

// isCredentialEvent reports whether event touches the database file or one
// of its sidecar files.
func isCredentialEvent(event fsnotify.Event, base string) bool {
	if !strings.HasPrefix(filepath.Base(event.Name), base) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0
}

func (g *Gate) watchLoop(watcher *fsnotify.Watcher, base string) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isCredentialEvent(event, base) {
				continue
			}

			g.mu.Lock()
			if g.closed {
				g.mu.Unlock()
				return
			}
			// Debounce rapid changes
			if g.debounceTimer != nil {
				g.debounceTimer.Stop()
			}
			g.debounceTimer = g.clock.AfterFunc(watchDebounce, g.reprobe, "session", "watch")
			g.mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			g.sendEvent(Event{Type: EventError, Error: err})

		case <-g.stopChan:
			return
		}
	}
}

func (g *Gate) reprobe() {
	select {
	case <-g.stopChan:
		return
	default:
	}

	// Sync history lives in the same file, so most writes leave the
	// credentials alone.
	if !g.credentialsChanged() {
		return
	}

	if _, err := g.CheckAuth(context.Background()); err != nil {
		logger.Warn("credential re-probe failed", "error", err)
		g.sendEvent(Event{Type: EventError, Error: err})
	}
}
