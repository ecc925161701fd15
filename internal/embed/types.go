// Package embed converts text into embedding vectors.
//
// The Client interface is the provider boundary: the indexer and search
// engine never talk to a concrete provider directly, so backends can be
// swapped (or faked in tests) without touching either.
package embed

import (
	"context"
	"time"
)

// Common embedding constants.
const (
	// MaxBatchSize is the largest batch sent to the provider in one request.
	MaxBatchSize = 128

	// DefaultTimeout is the per-request timeout for provider calls.
	DefaultTimeout = 60 * time.Second

	// DefaultQueryCacheSize is the number of query embeddings kept in the
	// LRU cache. At 1024 dims * 4 bytes * 256 entries this is about 1MB.
	DefaultQueryCacheSize = 256
)

// Client generates embedding vectors for documents and queries.
//
// A batch call either returns exactly one vector per input or fails
// entirely; callers must never assume partial success.
type Client interface {
	// EmbedBatch embeds document texts. Returns one vector per input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query. Providers may shape query
	// requests differently from document requests for asymmetric search.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed embedding dimensionality.
	Dimensions() int

	// CostPerMillionTokens returns the provider cost rate for the ledger.
	CostPerMillionTokens() float64

	// ModelName returns the model identifier.
	ModelName() string
}
