package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	lierrors "github.com/loreindex/loreindex/internal/errors"
	"github.com/loreindex/loreindex/internal/store"
)

// LockFileName is the on-disk indexing lock inside the data directory.
const LockFileName = "index.lock"

// lockRetryDelay is how often lock acquisition is retried while waiting.
const lockRetryDelay = 100 * time.Millisecond

// LockPath returns the indexing lock path for a project.
func LockPath(projectRoot string) string {
	return filepath.Join(projectRoot, store.DataDirName, LockFileName)
}

// NewLock creates the per-project indexing lock. The same lock is taken
// by the full-reindex runner and each background scheduler pass, so the
// two can never index the same project concurrently.
func NewLock(projectRoot string) *flock.Flock {
	_ = os.MkdirAll(filepath.Join(projectRoot, store.DataDirName), 0o755)
	return flock.New(LockPath(projectRoot))
}

// Progress reports full-reindex progress to the caller's UI.
type Progress struct {
	FilesProcessed int
	FilesTotal     int
	CurrentFile    string
}

// Summary is the result of a completed full reindex.
type Summary struct {
	FilesTotal     int
	FilesIndexed   int
	FilesSkipped   int
	FilesFailed    int
	ChunksEmbedded int
	Tokens         int
	Cost           float64
	Duration       time.Duration
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithProgress registers a progress callback, invoked once per file.
func WithProgress(fn func(Progress)) RunnerOption {
	return func(r *Runner) { r.onProgress = fn }
}

// Runner drives a full project reindex.
type Runner struct {
	indexer    *Indexer
	lock       *flock.Flock
	indexing   atomic.Bool
	onProgress func(Progress)
}

// NewRunner creates a runner for the indexer's project.
func NewRunner(ix *Indexer, opts ...RunnerOption) *Runner {
	r := &Runner{
		indexer: ix,
		lock:    NewLock(ix.root),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsIndexing reports whether a full reindex is currently running in this
// process. Exposed for the status surface.
func (r *Runner) IsIndexing() bool {
	return r.indexing.Load()
}

// Reindex enumerates every indexable document and indexes each in turn.
//
// The run is gated two ways: an in-process flag rejects overlapping
// Reindex calls, and the shared file lock serializes against the
// background scheduler. A failed file is logged and skipped; it stays
// retryable on a later pass.
func (r *Runner) Reindex(ctx context.Context) (*Summary, error) {
	if !r.indexing.CompareAndSwap(false, true) {
		return nil, lierrors.Newf(lierrors.ErrCodeLocked, "a reindex is already running")
	}
	defer r.indexing.Store(false)

	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeLocked, "cannot acquire indexing lock", err)
	}
	if !locked {
		return nil, lierrors.Newf(lierrors.ErrCodeLocked, "indexing lock held by another process")
	}
	defer func() { _ = r.lock.Unlock() }()

	start := time.Now()

	files, err := r.indexer.CollectIndexableFiles()
	if err != nil {
		return nil, err
	}

	summary := &Summary{FilesTotal: len(files)}
	for i, relPath := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		r.reportProgress(Progress{
			FilesProcessed: i,
			FilesTotal:     len(files),
			CurrentFile:    relPath,
		})

		result, err := r.indexer.IndexFile(ctx, relPath)
		if err != nil {
			summary.FilesFailed++
			slog.Warn("index_file_failed",
				slog.String("path", relPath),
				slog.String("error", err.Error()))
			continue
		}

		if result.Skipped {
			summary.FilesSkipped++
		} else {
			summary.FilesIndexed++
		}
		summary.ChunksEmbedded += result.Embedded
		summary.Tokens += result.Tokens
		summary.Cost += result.Cost
	}

	r.reportProgress(Progress{
		FilesProcessed: len(files),
		FilesTotal:     len(files),
	})

	summary.Duration = time.Since(start)
	slog.Info("reindex_complete",
		slog.Int("files_total", summary.FilesTotal),
		slog.Int("files_indexed", summary.FilesIndexed),
		slog.Int("files_failed", summary.FilesFailed),
		slog.Int("chunks_embedded", summary.ChunksEmbedded),
		slog.Duration("duration", summary.Duration))

	return summary, nil
}

func (r *Runner) reportProgress(p Progress) {
	if r.onProgress != nil {
		r.onProgress(p)
	}
}
