// Package watch turns changes to the library database made by other
// processes into session refreshes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/stash/internal/core/ports/driving"
	"github.com/custodia-labs/stash/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.Scheduler = (*Watcher)(nil)

// DefaultDebounce coalesces the burst of writes one save produces.
const DefaultDebounce = 250 * time.Millisecond

// Refresher is anything that can reload the library.
type Refresher interface {
	Refresh()
}

// Config holds watcher configuration.
type Config struct {
	// Dir is the directory holding the watched files.
	Dir string

	// Files are base names inside Dir whose writes trigger a refresh,
	// typically the database and its WAL file.
	Files []string

	// Debounce is the quiet period before a refresh fires (default: 250ms).
	Debounce time.Duration
}

// Watcher watches a directory and calls Refresh once per burst of writes
// to the configured files.
type Watcher struct {
	dir      string
	files    map[string]struct{}
	debounce time.Duration
	target   Refresher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher. Nothing is watched until Start.
func NewWatcher(cfg Config, target Refresher) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		files[f] = struct{}{}
	}
	return &Watcher{
		dir:      cfg.Dir,
		files:    files,
		debounce: cfg.Debounce,
		target:   target,
	}
}

// Start watches until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsWatcher.Close()

	// Watch the directory, not the files: SQLite creates and removes the
	// WAL file as connections come and go.
	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	logger.Debug("Watching %s for external changes", w.dir)

	// The debounce timer is created on the first relevant event and reset
	// on every one after. fire stays nil until then.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-stopCh:
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Debug("Library file changed: %s (%s)", event.Name, event.Op)
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					fire = timer.C
				} else {
					timer.Reset(w.debounce)
				}
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error: %v", err)

		case <-fire:
			logger.Debug("Refreshing after external change")
			w.target.Refresh()
		}
	}
}

// Stop ends the watch loop and waits for Start to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	return nil
}

// relevant reports whether event is a write or create on a watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	_, ok := w.files[filepath.Base(event.Name)]
	return ok
}
