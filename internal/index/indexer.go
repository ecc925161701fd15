// Package index orchestrates chunking, change detection, embedding and
// storage for project documents.
package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/loreindex/loreindex/internal/chunk"
	"github.com/loreindex/loreindex/internal/embed"
	lierrors "github.com/loreindex/loreindex/internal/errors"
	"github.com/loreindex/loreindex/internal/store"
)

// DocumentExt is the document extension the indexer is responsible for.
const DocumentExt = ".md"

// skipDirs are directory names never descended into during enumeration.
var skipDirs = map[string]bool{
	"exports":      true,
	"node_modules": true,
}

// Result reports what one IndexFile call actually did.
type Result struct {
	// Path is the project-relative path that was processed.
	Path string

	// Chunks is the number of chunks now stored for the file.
	Chunks int

	// Embedded is the number of chunks embedded in this pass.
	Embedded int

	// Tokens is the estimated token count of the embedded chunks.
	Tokens int

	// Cost is the ledger cost of this pass.
	Cost float64

	// Skipped is true for zero-work passes: unchanged content or a
	// document that yields no chunks.
	Skipped bool
}

// Indexer processes one file at a time: chunk, diff, embed, store.
type Indexer struct {
	root   string
	store  *store.Store
	client embed.Client
}

// New creates an indexer over the given project root, store and
// embedding client.
func New(projectRoot string, st *store.Store, client embed.Client) *Indexer {
	return &Indexer{root: projectRoot, store: st, client: client}
}

// IndexFile (re)indexes a single document.
//
// The pass is strictly sequential: hash-check, chunk, diff, delete old
// chunks, upsert the file record, embed, insert chunks, log cost. An
// unchanged whole-document hash short-circuits to a zero-work result,
// which is the primary cost-control mechanism.
func (ix *Indexer) IndexFile(ctx context.Context, relPath string) (Result, error) {
	result := Result{Path: relPath}

	absPath := filepath.Join(ix.root, filepath.FromSlash(relPath))
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, lierrors.NotFound(relPath)
		}
		return result, lierrors.New(lierrors.ErrCodeFileUnreadable, "cannot read "+relPath, err)
	}
	content := string(data)

	docHash := chunk.HashContent(content)
	storedHash, err := ix.store.FileHash(ctx, relPath)
	if err != nil {
		return result, err
	}
	if storedHash == docHash {
		result.Skipped = true
		return result, nil
	}

	chunks := chunk.Split(content, relPath)
	if len(chunks) == 0 {
		// Unparseable or empty content: leave existing rows untouched.
		result.Skipped = true
		return result, nil
	}

	prevHashes, err := ix.store.ChunkHashes(ctx, relPath)
	if err != nil {
		return result, err
	}

	var changed, unchanged []int
	for i, c := range chunks {
		if prevHashes[c.Index] == c.ContentHash {
			unchanged = append(unchanged, i)
		} else {
			changed = append(changed, i)
		}
	}

	// Delete-then-reinsert-all: chunk count and ordering can shift between
	// versions, so row-level patching is not attempted.
	if err := ix.store.DeleteChunksForFile(ctx, relPath); err != nil {
		return result, err
	}

	if err := ix.store.UpsertFile(ctx, store.FileRecord{
		FilePath:    relPath,
		ContentHash: docHash,
		FileType:    chunks[0].Metadata.FileType,
		LastIndexed: time.Now(),
		ChunkCount:  len(chunks),
	}); err != nil {
		return result, err
	}

	vectors := make([][]float32, len(chunks))

	// Changed chunks are embedded in bounded batches.
	for start := 0; start < len(changed); start += embed.MaxBatchSize {
		end := min(start+embed.MaxBatchSize, len(changed))
		batch := changed[start:end]

		texts := make([]string, len(batch))
		for bi, ci := range batch {
			texts[bi] = chunks[ci].Content
		}

		embedded, err := ix.client.EmbedBatch(ctx, texts)
		if err != nil {
			return result, ix.rollback(ctx, relPath, storedHash, err)
		}
		for bi, ci := range batch {
			vectors[ci] = embedded[bi]
		}
	}

	// Chunks whose hash did not change were still deleted above, so they
	// must be re-embedded individually before reinsertion.
	for _, ci := range unchanged {
		embedded, err := ix.client.EmbedBatch(ctx, []string{chunks[ci].Content})
		if err != nil {
			return result, ix.rollback(ctx, relPath, storedHash, err)
		}
		vectors[ci] = embedded[0]
	}

	for i, c := range chunks {
		id, err := ix.store.InsertChunk(ctx, store.ChunkRecord{
			FilePath:       relPath,
			ChunkIndex:     c.Index,
			SectionHeading: c.SectionHeading,
			ContentHash:    c.ContentHash,
			Preview:        c.Preview,
			TokenCount:     c.TokenCount,
			Embedding:      vectors[i],
		})
		if err != nil {
			return result, ix.rollback(ctx, relPath, storedHash, err)
		}

		if err := ix.store.InsertChunkMetadata(ctx, id, store.ChunkMetadata{
			BookID:     c.Metadata.BookID,
			ChapterID:  c.Metadata.ChapterID,
			EntityType: c.Metadata.EntityType,
			EntityName: c.Metadata.EntityName,
		}); err != nil {
			return result, ix.rollback(ctx, relPath, storedHash, err)
		}

		result.Tokens += c.TokenCount
		result.Embedded++
	}
	result.Chunks = len(chunks)

	result.Cost = float64(result.Tokens) / 1e6 * ix.client.CostPerMillionTokens()
	if result.Embedded > 0 {
		if err := ix.store.LogEmbedding(ctx, result.Tokens, result.Embedded, result.Cost); err != nil {
			return result, err
		}
	}

	return result, nil
}

// rollback restores change detection after a failed pass. The old chunks
// are already gone, so the file record is pointed back at the previous
// hash (or removed for a never-indexed file); the next pass then sees a
// hash mismatch and reindexes from scratch.
func (ix *Indexer) rollback(ctx context.Context, relPath, prevHash string, cause error) error {
	if prevHash == "" {
		_ = ix.store.DeleteFileData(ctx, relPath)
		return cause
	}
	_ = ix.store.UpsertFile(ctx, store.FileRecord{
		FilePath:    relPath,
		ContentHash: prevHash,
		FileType:    chunk.Classify(relPath).FileType,
		LastIndexed: time.Now(),
		ChunkCount:  0,
	})
	return cause
}

// Deindex removes all stored data for a path. Used when the source file
// is deleted externally.
func (ix *Indexer) Deindex(ctx context.Context, relPath string) error {
	return ix.store.DeleteFileData(ctx, relPath)
}

// CollectIndexableFiles enumerates eligible documents under the project
// root: markdown files outside hidden directories and the export and
// dependency-cache deny-list. Paths are project-relative, forward-slash,
// sorted.
func (ix *Indexer) CollectIndexableFiles() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		name := d.Name()
		if d.IsDir() {
			if path == ix.root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, DocumentExt) {
			return nil
		}

		rel, err := filepath.Rel(ix.root, path)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeFileUnreadable, "cannot enumerate project files", err)
	}

	sort.Strings(paths)
	return paths, nil
}
