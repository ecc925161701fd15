package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached wraps a Client with an LRU cache over query embeddings.
// Repeated queries (common when the assistant refines a prompt) skip the
// provider round trip. Document batches are never cached: the indexer's
// hash diff already prevents redundant document embedding.
type Cached struct {
	inner Client
	cache *lru.Cache[string, []float32]
}

// Verify interface implementation at compile time
var _ Client = (*Cached)(nil)

// NewCached creates a caching decorator around inner.
func NewCached(inner Client, cacheSize int) *Cached {
	if cacheSize <= 0 {
		cacheSize = DefaultQueryCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &Cached{inner: inner, cache: cache}
}

// cacheKey builds a stable key from model and query text.
func (c *Cached) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// EmbedBatch passes document batches straight through.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

// EmbedQuery returns a cached query vector when available.
func (c *Cached) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, vec)
	return vec, nil
}

// Dimensions returns the wrapped client's dimensionality.
func (c *Cached) Dimensions() int { return c.inner.Dimensions() }

// CostPerMillionTokens returns the wrapped client's cost rate.
func (c *Cached) CostPerMillionTokens() float64 { return c.inner.CostPerMillionTokens() }

// ModelName returns the wrapped client's model identifier.
func (c *Cached) ModelName() string { return c.inner.ModelName() }
