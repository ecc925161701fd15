package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreindex/loreindex/internal/index"
	lierrors "github.com/loreindex/loreindex/internal/errors"
)

// fakeIndexer records the calls a scheduler pass makes.
type fakeIndexer struct {
	mu        sync.Mutex
	indexed   []string
	deindexed []string
	failPaths map[string]bool
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{failPaths: make(map[string]bool)}
}

func (f *fakeIndexer) IndexFile(_ context.Context, relPath string) (index.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPaths[relPath] {
		return index.Result{}, lierrors.Provider("simulated failure", nil)
	}
	f.indexed = append(f.indexed, relPath)
	return index.Result{Path: relPath, Chunks: 1, Embedded: 1}, nil
}

func (f *fakeIndexer) Deindex(_ context.Context, relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deindexed = append(f.deindexed, relPath)
	return nil
}

func (f *fakeIndexer) snapshot() (indexed, deindexed []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.indexed...), append([]string(nil), f.deindexed...)
}

func newTestScheduler(ix FileIndexer) *Scheduler {
	return NewScheduler(ix, nil, 10*time.Second, 120*time.Second)
}

func TestScheduler_QuietPeriodGatesIndexing(t *testing.T) {
	ix := newFakeIndexer()
	s := newTestScheduler(ix)
	now := time.Now()

	s.NoteChange("notes/a.md", now.Add(-30*time.Second))

	// Still inside the quiet period: nothing happens.
	s.Pass(context.Background(), now)
	indexed, _ := ix.snapshot()
	assert.Empty(t, indexed)

	// Once quiet long enough, the file is indexed and dequeued.
	s.Pass(context.Background(), now.Add(100*time.Second))
	indexed, _ = ix.snapshot()
	assert.Equal(t, []string{"notes/a.md"}, indexed)

	pending, _ := s.QueueSizes()
	assert.Equal(t, 0, pending)
}

func TestScheduler_ModifyRefreshesQuietTimer(t *testing.T) {
	ix := newFakeIndexer()
	s := newTestScheduler(ix)
	now := time.Now()

	// Edits keep arriving; the quiet timer keeps resetting.
	s.NoteChange("notes/a.md", now.Add(-200*time.Second))
	s.NoteChange("notes/a.md", now.Add(-10*time.Second))

	s.Pass(context.Background(), now)
	indexed, _ := ix.snapshot()
	assert.Empty(t, indexed, "a recently-edited file is never ready")
}

func TestScheduler_DeletionsAreNeverDebounced(t *testing.T) {
	ix := newFakeIndexer()
	s := newTestScheduler(ix)
	now := time.Now()

	s.NoteChange("notes/a.md", now)
	s.NoteDelete("notes/a.md")

	s.Pass(context.Background(), now)

	indexed, deindexed := ix.snapshot()
	assert.Empty(t, indexed, "the pending entry was cancelled by the delete")
	assert.Equal(t, []string{"notes/a.md"}, deindexed, "deletions are processed immediately")
}

func TestScheduler_FailedFileDoesNotHaltPass(t *testing.T) {
	ix := newFakeIndexer()
	ix.failPaths["notes/bad.md"] = true
	s := newTestScheduler(ix)
	old := time.Now().Add(-300 * time.Second)

	s.NoteChange("notes/bad.md", old)
	s.NoteChange("notes/good.md", old)

	s.Pass(context.Background(), time.Now())

	indexed, _ := ix.snapshot()
	assert.Equal(t, []string{"notes/good.md"}, indexed)

	// The failed file is gone from pending; only a new change event
	// re-queues it.
	pending, _ := s.QueueSizes()
	assert.Equal(t, 0, pending)
}

func TestScheduler_ApplyMapsEvents(t *testing.T) {
	s := newTestScheduler(newFakeIndexer())
	now := time.Now()

	s.Apply(Event{Path: "notes/a.md", Op: OpCreate, Timestamp: now})
	s.Apply(Event{Path: "notes/b.md", Op: OpModify, Timestamp: now})
	s.Apply(Event{Path: "notes/a.md", Op: OpDelete, Timestamp: now})

	pending, deleted := s.QueueSizes()
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, deleted)
}

func TestScheduler_RunStopsOnContextCancel(t *testing.T) {
	s := NewScheduler(newFakeIndexer(), nil, 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_EmptyPassDoesNothing(t *testing.T) {
	ix := newFakeIndexer()
	s := newTestScheduler(ix)

	s.Pass(context.Background(), time.Now())

	indexed, deindexed := ix.snapshot()
	assert.Empty(t, indexed)
	assert.Empty(t, deindexed)
}
