package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertFileWithChunks(t *testing.T, s *Store, path string, hashes ...string) []int64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpsertFile(ctx, FileRecord{
		FilePath:    path,
		ContentHash: "file-" + path,
		FileType:    "character",
		LastIndexed: time.Now(),
		ChunkCount:  len(hashes),
	}))

	ids := make([]int64, 0, len(hashes))
	for i, hash := range hashes {
		id, err := s.InsertChunk(ctx, ChunkRecord{
			FilePath:    path,
			ChunkIndex:  i,
			ContentHash: hash,
			Preview:     "preview",
			TokenCount:  10,
			Embedding:   []float32{float32(i), 1, 2},
		})
		require.NoError(t, err)
		require.NoError(t, s.InsertChunkMetadata(ctx, id, ChunkMetadata{
			EntityType: "character",
			EntityName: "alice",
		}))
		ids = append(ids, id)
	}
	return ids
}

func TestOpen_SchemaIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")

	s1, err := OpenPath(path)
	require.NoError(t, err)
	insertFileWithChunks(t, s1, "characters/alice/profile.md", "h0")
	require.NoError(t, s1.Close())

	// Reopening runs schema creation again and keeps existing rows.
	s2, err := OpenPath(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	stats, err := s2.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestUpsertFile_ReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertFile(ctx, FileRecord{
		FilePath: "notes/a.md", ContentHash: "old", FileType: "notes", LastIndexed: time.Now(), ChunkCount: 1,
	}))
	require.NoError(t, s.UpsertFile(ctx, FileRecord{
		FilePath: "notes/a.md", ContentHash: "new", FileType: "notes", LastIndexed: time.Now(), ChunkCount: 2,
	}))

	hash, err := s.FileHash(ctx, "notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "new", hash)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalFiles)
}

func TestFileHash_UnknownPathIsEmptyNotError(t *testing.T) {
	s := openTestStore(t)

	hash, err := s.FileHash(context.Background(), "never/indexed.md")
	require.NoError(t, err)
	assert.Equal(t, "", hash)
}

func TestChunkHashes(t *testing.T) {
	s := openTestStore(t)
	insertFileWithChunks(t, s, "notes/a.md", "h0", "h1", "h2")

	hashes, err := s.ChunkHashes(context.Background(), "notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "h0", 1: "h1", 2: "h2"}, hashes)

	empty, err := s.ChunkHashes(context.Background(), "notes/missing.md")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteFileData_CascadesToChunksAndMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertFileWithChunks(t, s, "characters/alice/profile.md", "h0", "h1")
	insertFileWithChunks(t, s, "characters/bob/profile.md", "h0")

	require.NoError(t, s.DeleteFileData(ctx, "characters/alice/profile.md"))

	// No orphaned chunk or metadata rows for the removed path.
	chunks, err := s.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "characters/bob/profile.md", chunks[0].FilePath)

	var orphans int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM chunk_metadata WHERE chunk_id NOT IN (SELECT id FROM chunks)`).Scan(&orphans))
	assert.Equal(t, 0, orphans)
}

func TestDeleteChunksForFile_KeepsFileRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertFileWithChunks(t, s, "notes/a.md", "h0", "h1")

	require.NoError(t, s.DeleteChunksForFile(ctx, "notes/a.md"))

	hashes, err := s.ChunkHashes(ctx, "notes/a.md")
	require.NoError(t, err)
	assert.Empty(t, hashes)

	hash, err := s.FileHash(ctx, "notes/a.md")
	require.NoError(t, err)
	assert.NotEmpty(t, hash, "file record survives a chunk-only delete")
}

func TestAllChunks_RoundTripsEmbeddings(t *testing.T) {
	s := openTestStore(t)
	insertFileWithChunks(t, s, "notes/a.md", "h0", "h1")

	chunks, err := s.AllChunks(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, []float32{0, 1, 2}, chunks[0].Embedding)
	assert.Equal(t, []float32{1, 1, 2}, chunks[1].Embedding)
	assert.Equal(t, "character", chunks[0].Metadata.EntityType)
	assert.Equal(t, "alice", chunks[0].Metadata.EntityName)
}

func TestLogEmbedding_AccumulatesCost(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogEmbedding(ctx, 1000, 3, 0.01))
	require.NoError(t, s.LogEmbedding(ctx, 500, 1, 0.005))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.015, stats.TotalCost, 1e-9)
}

func TestStats_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFiles)
	assert.Equal(t, 0, stats.TotalChunks)
	assert.True(t, stats.LastIndexed.IsZero())
	assert.Equal(t, 0.0, stats.TotalCost)
}

func TestClear_WipesEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertFileWithChunks(t, s, "notes/a.md", "h0")
	require.NoError(t, s.LogEmbedding(ctx, 100, 1, 0.001))

	require.NoError(t, s.Clear(ctx))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestClose_Idempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.FileHash(context.Background(), "notes/a.md")
	assert.Error(t, err)
}
