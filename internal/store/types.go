// Package store persists the semantic-search index for one project.
//
// The store is a single SQLite database under the project's internal-state
// directory. WAL mode keeps readers (search, stats) unblocked while the
// indexer writes. Cascading foreign keys guarantee that deleting a file
// removes every chunk and metadata row it owned, so orphaned vectors can
// never pollute search.
package store

import "time"

// FileRecord is the persisted record of one indexed document.
type FileRecord struct {
	// FilePath is the project-relative forward-slash path, unique per file.
	FilePath string

	// ContentHash is the SHA-256 hex digest of the whole document.
	ContentHash string

	// FileType is the coarse classification derived from the path.
	FileType string

	// LastIndexed is when the file was last successfully indexed.
	LastIndexed time.Time

	// ChunkCount is the number of chunks currently stored for the file.
	ChunkCount int
}

// ChunkRecord is one embeddable span of a document, with its vector.
type ChunkRecord struct {
	// ID is the store-assigned identity, set on insert.
	ID int64

	// FilePath references the owning FileRecord.
	FilePath string

	// ChunkIndex is the zero-based position within the file.
	ChunkIndex int

	// SectionHeading is the "## " heading line, empty when none.
	SectionHeading string

	// ContentHash is the SHA-256 hex digest of the chunk text.
	ContentHash string

	// Preview is a short excerpt for search results.
	Preview string

	// TokenCount is the estimated token count of the chunk.
	TokenCount int

	// Embedding is the vector, serialized little-endian on disk.
	Embedding []float32
}

// ChunkMetadata holds the filter tags stored one-to-one with a chunk.
// Tags drive query-time filtering only, never scoring.
type ChunkMetadata struct {
	BookID     string `json:"book_id,omitempty"`
	ChapterID  string `json:"chapter_id,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
}

// SearchableChunk is a chunk joined with its metadata, as loaded for the
// brute-force search scan.
type SearchableChunk struct {
	ChunkRecord
	Metadata ChunkMetadata
}

// Stats summarizes the index for status reporting.
type Stats struct {
	TotalFiles  int
	TotalChunks int
	LastIndexed time.Time
	TotalCost   float64
}
