// Package search answers similarity queries over the stored index.
//
// Every query is a fresh, brute-force scan of all stored chunk vectors.
// At the target corpus scale this keeps results exact and as fresh as the
// last committed write, with no index structure to maintain.
package search

import (
	"context"
	"sort"

	"github.com/loreindex/loreindex/internal/embed"
	"github.com/loreindex/loreindex/internal/exclude"
	"github.com/loreindex/loreindex/internal/store"
)

// Result is one ranked search hit.
type Result struct {
	// FilePath is the project-relative path of the source document.
	FilePath string `json:"file_path"`

	// SectionHeading is the chunk's heading, empty when none.
	SectionHeading string `json:"section_heading,omitempty"`

	// Score is the cosine similarity to the query, higher is better.
	Score float32 `json:"score"`

	// Preview is a short excerpt of the chunk.
	Preview string `json:"preview"`

	// TokenCount is the chunk's estimated token count, used by the
	// prompt assembler to stay inside its context budget.
	TokenCount int `json:"token_count"`

	// Metadata carries the chunk's filter tags.
	Metadata store.ChunkMetadata `json:"metadata"`
}

// Options narrows and bounds a search.
type Options struct {
	// MaxResults caps the number of hits returned.
	MaxResults int

	// EntityTypes keeps only chunks whose entity type is in the list.
	// Empty means no entity-type filtering.
	EntityTypes []string

	// BookID keeps only chunks scoped to the given book. Empty means no
	// book filtering.
	BookID string

	// Excluded matches user-configured "do not use for AI context" paths.
	Excluded *exclude.Matcher

	// AlreadyLoaded lists paths the caller has loaded into the prompt by
	// other means; their chunks are dropped to avoid duplicate context.
	AlreadyLoaded []string
}

// Engine scores queries against the stored index.
type Engine struct {
	store  *store.Store
	client embed.Client
}

// New creates a search engine over a store and embedding client.
func New(st *store.Store, client embed.Client) *Engine {
	return &Engine{store: st, client: client}
}

// Search embeds the query, scans every stored chunk, filters, and returns
// the top hits by cosine similarity.
//
// Failures embedding the query or reading the store propagate as-is:
// a search that silently returns wrong-but-plausible results is worse
// than a visible failure.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	queryVec, err := e.client.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks, err := e.store.AllChunks(ctx)
	if err != nil {
		return nil, err
	}

	entityTypes := make(map[string]bool, len(opts.EntityTypes))
	for _, t := range opts.EntityTypes {
		entityTypes[t] = true
	}
	alreadyLoaded := make(map[string]bool, len(opts.AlreadyLoaded))
	for _, p := range opts.AlreadyLoaded {
		alreadyLoaded[p] = true
	}

	results := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		if opts.Excluded != nil && opts.Excluded.Match(c.FilePath) {
			continue
		}
		if alreadyLoaded[c.FilePath] {
			continue
		}
		if len(entityTypes) > 0 && !entityTypes[c.Metadata.EntityType] {
			continue
		}
		if opts.BookID != "" && c.Metadata.BookID != opts.BookID {
			continue
		}

		results = append(results, Result{
			FilePath:       c.FilePath,
			SectionHeading: c.SectionHeading,
			Score:          embed.CosineSimilarity(queryVec, c.Embedding),
			Preview:        c.Preview,
			TokenCount:     c.TokenCount,
			Metadata:       c.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results, nil
}
