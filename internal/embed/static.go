package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// StaticDimensions is the vector dimensionality of the static client.
const StaticDimensions = 256

// Weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// tokenRegex matches alphanumeric sequences.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// StaticClient generates deterministic hash-based embeddings with no
// network access and zero cost. It backs tests and credential-less
// operation; semantic quality is far below a real provider.
type StaticClient struct{}

// Verify interface implementation at compile time
var _ Client = (*StaticClient)(nil)

// NewStaticClient creates a static embedding client.
func NewStaticClient() *StaticClient {
	return &StaticClient{}
}

// EmbedBatch generates one vector per input text.
func (c *StaticClient) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = c.embedText(text)
	}
	return vectors, nil
}

// EmbedQuery generates a vector for a query. Queries and documents use
// the same shaping here; the static space is symmetric.
func (c *StaticClient) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return c.embedText(text), nil
}

// Dimensions returns the fixed vector dimensionality.
func (c *StaticClient) Dimensions() int { return StaticDimensions }

// CostPerMillionTokens returns 0; static embeddings are free.
func (c *StaticClient) CostPerMillionTokens() float64 { return 0 }

// ModelName returns the static model identifier.
func (c *StaticClient) ModelName() string { return "static-hash-256" }

func (c *StaticClient) embedText(text string) []float32 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions)
	}

	vector := make([]float32, StaticDimensions)

	for _, token := range tokenRegex.FindAllString(strings.ToLower(trimmed), -1) {
		vector[hashToIndex(token)] += tokenWeight
	}

	compact := strings.Join(strings.Fields(strings.ToLower(trimmed)), " ")
	for i := 0; i+ngramSize <= len(compact); i++ {
		vector[hashToIndex(compact[i:i+ngramSize])] += ngramWeight
	}

	return normalizeVector(vector)
}

func hashToIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % StaticDimensions)
}
