package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/loreindex/loreindex/internal/index"
)

// FileIndexer is the slice of the indexer the scheduler drives.
type FileIndexer interface {
	IndexFile(ctx context.Context, relPath string) (index.Result, error)
	Deindex(ctx context.Context, relPath string) error
}

// Scheduler owns the transient pending/deleted queues and periodically
// turns quiet files into reindex work.
//
// Modify and create events refresh a pending entry's timestamp, so a
// burst of edits coalesces into one eventual reindex. Deletions are never
// debounced: a stale row is worse than a slightly-early delete. A file
// becomes ready only after it has been quiet for the configured period;
// this avoids re-embedding a file many times while the user is typing.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]time.Time
	deleted []string

	indexer FileIndexer
	lock    *flock.Flock
	tick    time.Duration
	quiet   time.Duration
}

// NewScheduler creates a scheduler. The lock is the per-project indexing
// lock shared with the full-reindex runner; each pass takes it so the two
// can never index the same project at once.
func NewScheduler(indexer FileIndexer, lock *flock.Flock, tick, quiet time.Duration) *Scheduler {
	return &Scheduler{
		pending: make(map[string]time.Time),
		indexer: indexer,
		lock:    lock,
		tick:    tick,
		quiet:   quiet,
	}
}

// Apply feeds one watcher event into the queues.
func (s *Scheduler) Apply(ev Event) {
	switch ev.Op {
	case OpCreate, OpModify:
		s.NoteChange(ev.Path, ev.Timestamp)
	case OpDelete:
		s.NoteDelete(ev.Path)
	}
}

// NoteChange records a modification, refreshing any pending entry.
func (s *Scheduler) NoteChange(path string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[path] = at
}

// NoteDelete queues a path for deindexing and drops any pending change.
func (s *Scheduler) NoteDelete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, path)
	s.deleted = append(s.deleted, path)
}

// QueueSizes reports the current queue depths, for status output.
func (s *Scheduler) QueueSizes() (pending, deleted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending), len(s.deleted)
}

// Run processes the queues on a fixed tick until the context ends.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Pass(ctx, time.Now())
		}
	}
}

// Pass executes one scheduler pass: drain deletions, then index every
// pending file that has been quiet long enough. Failures are logged and
// never halt the pass; a failed file is simply retried when its next
// change event re-queues it.
func (s *Scheduler) Pass(ctx context.Context, now time.Time) {
	deleted, ready := s.drain(now)
	if len(deleted) == 0 && len(ready) == 0 {
		return
	}

	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil || !locked {
			// A full reindex holds the lock; requeue everything for the
			// next tick.
			s.requeue(deleted, ready, now)
			return
		}
		defer func() { _ = s.lock.Unlock() }()
	}

	for _, path := range deleted {
		if err := s.indexer.Deindex(ctx, path); err != nil {
			slog.Warn("deindex_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	for _, path := range ready {
		if err := ctx.Err(); err != nil {
			return
		}
		result, err := s.indexer.IndexFile(ctx, path)
		if err != nil {
			slog.Warn("background_index_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		if !result.Skipped {
			slog.Debug("background_index_complete",
				slog.String("path", path),
				slog.Int("chunks", result.Chunks))
		}
	}
}

// drain removes and returns all deleted paths plus every pending path
// quiet since before the threshold.
func (s *Scheduler) drain(now time.Time) (deleted, ready []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted = s.deleted
	s.deleted = nil

	threshold := now.Add(-s.quiet)
	for path, lastModified := range s.pending {
		if !lastModified.After(threshold) {
			ready = append(ready, path)
			delete(s.pending, path)
		}
	}
	return deleted, ready
}

// requeue puts drained work back after a pass could not take the lock.
func (s *Scheduler) requeue(deleted, ready []string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, deleted...)
	for _, path := range ready {
		if _, exists := s.pending[path]; !exists {
			// Backdate past the quiet period so the path is ready again
			// on the next tick.
			s.pending[path] = now.Add(-s.quiet)
		}
	}
}
