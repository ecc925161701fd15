package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/loreindex/loreindex/internal/embed"
	lierrors "github.com/loreindex/loreindex/internal/errors"
)

// DataDirName is the per-project internal-state directory.
const DataDirName = ".loreindex"

// DBFileName is the index database file inside DataDirName.
const DBFileName = "index.db"

// DBPath returns the index database path for a project.
func DBPath(projectDir string) string {
	return filepath.Join(projectDir, DataDirName, DBFileName)
}

// Store is the persistent index for one project.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens (or creates) the index store for the given project root and
// initializes the schema. Schema creation is idempotent.
func Open(projectDir string) (*Store, error) {
	return OpenPath(DBPath(projectDir))
}

// OpenPath opens a store at an explicit database path. An empty path opens
// an in-memory store for tests.
func OpenPath(path string) (*Store, error) {
	dsn := path
	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, lierrors.Storage("cannot create index directory", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, lierrors.Storage("cannot open index database", err)
	}

	// Single connection: SQLite allows one writer, and the indexer already
	// serializes file processing. Readers go through WAL snapshots.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite; DSN params
	// are not honored.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, lierrors.Storage("cannot configure index database", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, lierrors.New(lierrors.ErrCodeSchema, "cannot initialize index schema", err)
	}

	return s, nil
}

// initSchema creates the four index tables and supporting indexes.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS indexed_files (
		file_path    TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		file_type    TEXT NOT NULL DEFAULT 'unknown',
		last_indexed INTEGER NOT NULL,
		chunk_count  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path       TEXT NOT NULL REFERENCES indexed_files(file_path) ON DELETE CASCADE,
		chunk_index     INTEGER NOT NULL,
		section_heading TEXT NOT NULL DEFAULT '',
		content_hash    TEXT NOT NULL,
		preview         TEXT NOT NULL DEFAULT '',
		token_count     INTEGER NOT NULL DEFAULT 0,
		embedding       BLOB NOT NULL,
		UNIQUE(file_path, chunk_index)
	);

	CREATE TABLE IF NOT EXISTS chunk_metadata (
		chunk_id    INTEGER PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
		book_id     TEXT NOT NULL DEFAULT '',
		chapter_id  TEXT NOT NULL DEFAULT '',
		entity_type TEXT NOT NULL DEFAULT '',
		entity_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS embedding_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		tokens     INTEGER NOT NULL,
		chunks     INTEGER NOT NULL,
		cost       REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_file_path ON chunks(file_path);
	CREATE INDEX IF NOT EXISTS idx_metadata_entity ON chunk_metadata(entity_type, entity_name);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertFile inserts or replaces the IndexedFile record for a path.
// Called before chunk insertion so foreign-key references are valid.
func (s *Store) UpsertFile(ctx context.Context, rec FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexed_files (file_path, content_hash, file_type, last_indexed, chunk_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			file_type    = excluded.file_type,
			last_indexed = excluded.last_indexed,
			chunk_count  = excluded.chunk_count`,
		rec.FilePath, rec.ContentHash, rec.FileType, rec.LastIndexed.UnixMilli(), rec.ChunkCount)
	if err != nil {
		return lierrors.Storage("cannot upsert file record", err).WithDetail("path", rec.FilePath)
	}
	return nil
}

// DeleteChunksForFile removes every chunk (and, via cascade, its metadata)
// for a path, keeping the file record. Used before reinserting a changed
// file's chunks.
func (s *Store) DeleteChunksForFile(ctx context.Context, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE file_path = ?`, filePath); err != nil {
		return lierrors.Storage("cannot delete chunks", err).WithDetail("path", filePath)
	}
	return nil
}

// DeleteFileData removes all stored data for a path: the file record and,
// via cascade, every chunk and metadata row. Used when the source file is
// deleted externally.
func (s *Store) DeleteFileData(ctx context.Context, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM indexed_files WHERE file_path = ?`, filePath); err != nil {
		return lierrors.Storage("cannot delete file data", err).WithDetail("path", filePath)
	}
	return nil
}

// InsertChunk stores a chunk and returns its assigned identity.
func (s *Store) InsertChunk(ctx context.Context, rec ChunkRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errClosed()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (file_path, chunk_index, section_heading, content_hash, preview, token_count, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.FilePath, rec.ChunkIndex, rec.SectionHeading, rec.ContentHash,
		rec.Preview, rec.TokenCount, embed.VectorToBytes(rec.Embedding))
	if err != nil {
		return 0, lierrors.Storage("cannot insert chunk", err).WithDetail("path", rec.FilePath)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, lierrors.Storage("cannot read chunk identity", err)
	}
	return id, nil
}

// InsertChunkMetadata stores the metadata row for a chunk identity.
func (s *Store) InsertChunkMetadata(ctx context.Context, chunkID int64, meta ChunkMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chunk_metadata (chunk_id, book_id, chapter_id, entity_type, entity_name)
		VALUES (?, ?, ?, ?, ?)`,
		chunkID, meta.BookID, meta.ChapterID, meta.EntityType, meta.EntityName)
	if err != nil {
		return lierrors.Storage("cannot insert chunk metadata", err)
	}
	return nil
}

// LogEmbedding appends one cost-ledger entry. Ledger entries are never
// mutated or deleted except on Clear.
func (s *Store) LogEmbedding(ctx context.Context, tokens, chunks int, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embedding_log (created_at, tokens, chunks, cost)
		VALUES (?, ?, ?, ?)`,
		time.Now().UnixMilli(), tokens, chunks, cost)
	if err != nil {
		return lierrors.Storage("cannot append embedding log", err)
	}
	return nil
}

// FileHash returns the stored whole-document hash for a path.
// Returns "" with no error when the path has never been indexed.
func (s *Store) FileHash(ctx context.Context, filePath string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", errClosed()
	}

	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM indexed_files WHERE file_path = ?`, filePath).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", lierrors.Storage("cannot read file hash", err).WithDetail("path", filePath)
	}
	return hash, nil
}

// ChunkHashes returns the stored chunk-index to content-hash map for a path.
// The indexer diffs new chunks against this to find what changed.
func (s *Store) ChunkHashes(ctx context.Context, filePath string) (map[int]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_index, content_hash FROM chunks WHERE file_path = ?`, filePath)
	if err != nil {
		return nil, lierrors.Storage("cannot read chunk hashes", err).WithDetail("path", filePath)
	}
	defer rows.Close()

	hashes := make(map[int]string)
	for rows.Next() {
		var idx int
		var hash string
		if err := rows.Scan(&idx, &hash); err != nil {
			return nil, lierrors.Storage("cannot scan chunk hash", err)
		}
		hashes[idx] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, lierrors.Storage("cannot read chunk hashes", err)
	}
	return hashes, nil
}

// AllChunks loads every stored chunk joined with its metadata, ordered by
// path and chunk index. This is the search engine's full-scan read.
func (s *Store) AllChunks(ctx context.Context) ([]SearchableChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.file_path, c.chunk_index, c.section_heading, c.content_hash,
		       c.preview, c.token_count, c.embedding,
		       COALESCE(m.book_id, ''), COALESCE(m.chapter_id, ''),
		       COALESCE(m.entity_type, ''), COALESCE(m.entity_name, '')
		FROM chunks c
		LEFT JOIN chunk_metadata m ON m.chunk_id = c.id
		ORDER BY c.file_path, c.chunk_index`)
	if err != nil {
		return nil, lierrors.Storage("cannot load chunks", err)
	}
	defer rows.Close()

	var chunks []SearchableChunk
	for rows.Next() {
		var c SearchableChunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.FilePath, &c.ChunkIndex, &c.SectionHeading,
			&c.ContentHash, &c.Preview, &c.TokenCount, &blob,
			&c.Metadata.BookID, &c.Metadata.ChapterID,
			&c.Metadata.EntityType, &c.Metadata.EntityName); err != nil {
			return nil, lierrors.Storage("cannot scan chunk", err)
		}
		c.Embedding = embed.BytesToVector(blob)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, lierrors.Storage("cannot load chunks", err)
	}
	return chunks, nil
}

// Stats returns aggregate index statistics.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, errClosed()
	}

	var stats Stats
	var lastIndexed sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       (SELECT COUNT(*) FROM chunks),
		       MAX(last_indexed)
		FROM indexed_files`).Scan(&stats.TotalFiles, &stats.TotalChunks, &lastIndexed)
	if err != nil {
		return Stats{}, lierrors.Storage("cannot read index stats", err)
	}
	if lastIndexed.Valid {
		stats.LastIndexed = time.UnixMilli(lastIndexed.Int64)
	}

	var cost sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT SUM(cost) FROM embedding_log`).Scan(&cost); err != nil {
		return Stats{}, lierrors.Storage("cannot read cumulative cost", err)
	}
	if cost.Valid {
		stats.TotalCost = cost.Float64
	}

	return stats, nil
}

// Clear wipes all index data, including the cost ledger.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed()
	}

	for _, stmt := range []string{
		`DELETE FROM indexed_files`,
		`DELETE FROM embedding_log`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return lierrors.Storage("cannot clear index", err)
		}
	}

	// Reclaim space after a full wipe.
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return lierrors.Storage("cannot vacuum index", err)
	}
	return nil
}

// Close checkpoints the WAL and closes the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

func errClosed() error {
	return lierrors.Newf(lierrors.ErrCodeStorage, "index store is closed")
}
