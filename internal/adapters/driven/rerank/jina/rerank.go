// Package jina provides a cross-encoder adapter using the Jina AI
// rerank API. The same request shape works against self-hosted
// rerankers exposing a compatible /rerank endpoint.
package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure CrossEncoder implements the interface.
var _ driven.CrossEncoder = (*CrossEncoder)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.jina.ai/v1"
	DefaultModel   = "jina-reranker-v2-base-multilingual"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the rerank service.
type Config struct {
	// APIKey is the API key (required for the hosted service).
	APIKey string

	// BaseURL is the API base URL (default: https://api.jina.ai/v1).
	BaseURL string

	// Model is the reranker model (default: jina-reranker-v2-base-multilingual).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// CrossEncoder scores query-document pairs via the rerank API.
type CrossEncoder struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// rerankRequest is the rerank API request format.
type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

// rerankResponse is the rerank API response format.
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Detail string `json:"detail,omitempty"`
}

// NewCrossEncoder creates a new rerank API client.
func NewCrossEncoder(cfg Config) (*CrossEncoder, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &CrossEncoder{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// ScorePairs scores the query against each text, preserving input
// order with exactly one score per text.
func (e *CrossEncoder) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Model:     e.model,
		Query:     query,
		Documents: texts,
		TopN:      len(texts),
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/rerank", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	var rerankResp rerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The API returns results sorted by relevance; map back to input order.
	scores := make([]float64, len(texts))
	for _, result := range rerankResp.Results {
		if result.Index < 0 || result.Index >= len(scores) {
			return nil, fmt.Errorf("rerank result index %d out of range", result.Index)
		}
		scores[result.Index] = result.RelevanceScore
	}
	return scores, nil
}

// ModelName returns the reranker model identifier.
func (e *CrossEncoder) ModelName() string {
	return e.model
}

// Ping validates the service is reachable with a single-document
// rerank request.
func (e *CrossEncoder) Ping(ctx context.Context) error {
	_, err := e.ScorePairs(ctx, "ping", []string{"ping"})
	return err
}

// Close releases resources.
func (e *CrossEncoder) Close() error {
	return nil
}
