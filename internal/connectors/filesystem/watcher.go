package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Notifier is told that the directory changed.
type Notifier interface {
	Trigger()
}

// DefaultQuietPeriod is how long the tree must stay unchanged before a
// notification is sent.
const DefaultQuietPeriod = 500 * time.Millisecond

// Watcher watches a directory tree and notifies on new or modified files.
// New subdirectories are watched as they appear.
//
// Bursts of events are coalesced: one notification is sent once no relevant
// event has arrived for the quiet period, so a file written in several
// steps is scanned after its last write rather than after its first.
type Watcher struct {
	root     string
	notifier Notifier
	filter   func(name string) bool
	quiet    time.Duration
	watcher  *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithQuietPeriod sets the settle window. Non-positive values keep the default.
func WithQuietPeriod(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// NewWatcher creates a watcher for root. filter selects which file names
// cause a notification; nil accepts every file.
func NewWatcher(root string, notifier Notifier, filter func(name string) bool, opts ...WatcherOption) (*Watcher, error) {
	if err := ensureDir(root); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		notifier: notifier,
		filter:   filter,
		quiet:    DefaultQuietPeriod,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers notifications until ctx is cancelled, then closes the watcher.
// A burst still settling when ctx is cancelled is dropped.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	settle := time.NewTimer(w.quiet)
	settle.Stop()
	defer settle.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleFsEvent(event) {
				pending = true
				settle.Reset(w.quiet)
			}
		case <-settle.C:
			if pending {
				pending = false
				w.notifier.Trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// handleFsEvent reports whether an event should trigger a scan.
// Newly created directories are added to the watch list instead.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	if isHidden(relativeTo(w.root, event.Name)) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watcher: %v", err)
			}
			// Files may have landed before the watch was added
			return true
		}
		return false
	}

	if w.filter != nil && !w.filter(filepath.Base(event.Name)) {
		return false
	}
	logger.Debug("watcher: %s %s", event.Op, event.Name)
	return true
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(relativeTo(w.root, path)) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
