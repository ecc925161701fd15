package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	lierrors "github.com/loreindex/loreindex/internal/errors"
)

// Voyage provider constants.
const (
	// DefaultVoyageEndpoint is the Voyage AI embeddings endpoint.
	DefaultVoyageEndpoint = "https://api.voyageai.com/v1/embeddings"

	// VoyageDimensions is the embedding dimensionality of the Voyage models
	// this client targets.
	VoyageDimensions = 1024

	// VoyageCostPerMillionTokens is the ledger cost rate in USD.
	VoyageCostPerMillionTokens = 0.06
)

// Input types for asymmetric search embeddings.
const (
	inputTypeDocument = "document"
	inputTypeQuery    = "query"
)

// VoyageClient generates embeddings via the Voyage AI HTTP API.
type VoyageClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

// Verify interface implementation at compile time
var _ Client = (*VoyageClient)(nil)

// VoyageOption customizes a VoyageClient.
type VoyageOption func(*VoyageClient)

// WithEndpoint overrides the API endpoint (used by tests).
func WithEndpoint(endpoint string) VoyageOption {
	return func(c *VoyageClient) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) VoyageOption {
	return func(c *VoyageClient) { c.client = client }
}

// NewVoyageClient creates a Voyage embedding client for the given
// decoded API key and model.
func NewVoyageClient(apiKey, model string, opts ...VoyageOption) *VoyageClient {
	c := &VoyageClient{
		client:   &http.Client{Timeout: DefaultTimeout},
		endpoint: DefaultVoyageEndpoint,
		apiKey:   apiKey,
		model:    model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// embeddingRequest is the provider wire request.
type embeddingRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	InputType string   `json:"input_type"`
}

// embeddingResponse is the provider wire response.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedBatch embeds document texts. Returns one vector per input or an
// error; there is no partial success.
func (c *VoyageClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, texts, inputTypeDocument)
}

// EmbedQuery embeds a single query using the query input type.
func (c *VoyageClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the fixed vector dimensionality.
func (c *VoyageClient) Dimensions() int { return VoyageDimensions }

// CostPerMillionTokens returns the ledger cost rate.
func (c *VoyageClient) CostPerMillionTokens() float64 { return VoyageCostPerMillionTokens }

// ModelName returns the configured model identifier.
func (c *VoyageClient) ModelName() string { return c.model }

func (c *VoyageClient) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	payload, err := json.Marshal(embeddingRequest{
		Model:     c.model,
		Input:     texts,
		InputType: inputType,
	})
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeProviderRequest, "cannot encode embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeProviderRequest, "cannot build embedding request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeProviderRequest, "embedding request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, lierrors.New(lierrors.ErrCodeProviderResponse, "cannot read embedding response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, lierrors.Newf(lierrors.ErrCodeProviderResponse,
			"embedding provider returned %s: %s", resp.Status, truncate(string(body), 512)).
			WithDetail("status", resp.Status)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, lierrors.New(lierrors.ErrCodeProviderResponse, "cannot parse embedding response", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, lierrors.Newf(lierrors.ErrCodeProviderResponse,
			"embedding provider returned %d vectors for %d inputs", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(parsed.Data))
	for i, item := range parsed.Data {
		if len(item.Embedding) == 0 {
			return nil, lierrors.Newf(lierrors.ErrCodeProviderResponse, "empty embedding at position %d", i)
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:max], len(s))
}
