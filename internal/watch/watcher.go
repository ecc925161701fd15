// Package watch turns filesystem activity into debounced reindex work.
//
// The Watcher produces discrete change events for project documents; the
// Scheduler consumes them into pending/deleted queues and periodically
// drives the indexer.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	lierrors "github.com/loreindex/loreindex/internal/errors"
	"github.com/loreindex/loreindex/internal/index"
	"github.com/loreindex/loreindex/internal/store"
)

// Op is the kind of change a filesystem event reports.
type Op int

const (
	// OpCreate indicates a new document appeared.
	OpCreate Op = iota
	// OpModify indicates an existing document changed.
	OpModify
	// OpDelete indicates a document was removed.
	OpDelete
)

// String returns a readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Event is one document change notification.
type Event struct {
	// Path is project-relative with forward slashes.
	Path string

	// Op is the change kind.
	Op Op

	// Timestamp is when the event was observed.
	Timestamp time.Time
}

// Watcher watches a project tree via fsnotify and emits document events.
// Only markdown paths outside the internal-state directory are reported;
// created subdirectories are added to the watch automatically.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
}

// NewWatcher creates a watcher for the given project root.
func NewWatcher(projectRoot string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeInternal, "cannot create filesystem watcher", err)
	}

	return &Watcher{
		root:    projectRoot,
		watcher: fsw,
		events:  make(chan Event, 256),
		errors:  make(chan error, 8),
	}, nil
}

// Events returns the document event channel.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if err := w.addRecursive(w.root); err != nil {
		return lierrors.New(lierrors.ErrCodeInternal, "cannot watch project directory", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if ignoredPath(rel) {
		return
	}

	// New directories must be added to the watch before events inside
	// them can be seen.
	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			_ = w.addRecursive(ev.Name)
			return
		}
	}

	if !strings.HasSuffix(rel, index.DocumentExt) {
		return
	}

	var op Op
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpCreate
	case ev.Op&fsnotify.Write != 0:
		op = OpModify
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		// A rename away from the watched name reads as a deletion; the
		// new name arrives as its own create event.
		op = OpDelete
	default:
		return
	}

	select {
	case w.events <- Event{Path: rel, Op: op, Timestamp: time.Now()}:
	default:
		slog.Warn("watch_event_buffer_full", slog.String("path", rel))
	}
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// addRecursive adds dir and all non-ignored subdirectories to the watch.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr == nil && rel != "." && ignoredPath(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// ignoredPath reports whether a relative path is outside the core's
// interest: the internal-state directory and hidden entries.
func ignoredPath(rel string) bool {
	if rel == "." || rel == "" {
		return true
	}
	if rel == store.DataDirName || strings.HasPrefix(rel, store.DataDirName+"/") {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
