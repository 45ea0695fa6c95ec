// Package config loads pipeline configuration from a TOML file with
// defaults for every knob, following the ~/.lectern directory
// convention.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable of the retrieval pipeline. All fields
// have working defaults; a missing config file is not an error.
// Durations are expressed in whole seconds in the TOML file.
type Config struct {
	// Retrieval controls the hybrid retriever.
	Retrieval RetrievalConfig `toml:"retrieval"`

	// Rerank controls cross-encoder reranking.
	Rerank RerankConfig `toml:"rerank"`

	// Assembly controls context assembly.
	Assembly AssemblyConfig `toml:"assembly"`

	// Cache controls the two cache tiers.
	Cache CacheConfig `toml:"cache"`

	// Router controls the collection fan-out.
	Router RouterConfig `toml:"router"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `toml:"embedding"`
}

// RetrievalConfig mirrors services.RetrieverOptions plus the pipeline
// candidate caps.
type RetrievalConfig struct {
	LexicalTopN   int     `toml:"lexical_top_n"`
	DenseTopN     int     `toml:"dense_top_n"`
	LexicalWeight float64 `toml:"lexical_weight"`
	DenseWeight   float64 `toml:"dense_weight"`
	TopK          int     `toml:"top_k"`
	SynthesisTopK int     `toml:"synthesis_top_k"`
}

// RerankConfig configures the cross-encoder integration.
type RerankConfig struct {
	Enabled   bool   `toml:"enabled"`
	BatchSize int    `toml:"batch_size"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
}

// AssemblyConfig configures context assembly.
type AssemblyConfig struct {
	CharBudget       int `toml:"char_budget"`
	MinUniqueSources int `toml:"min_unique_sources"`
}

// CacheConfig configures the cache layer. Backend is one of "memory",
// "sqlite", or "redis".
type CacheConfig struct {
	Backend             string  `toml:"backend"`
	ExactTTLSeconds     int     `toml:"exact_ttl_seconds"`
	SemanticTTLSeconds  int     `toml:"semantic_ttl_seconds"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	SemanticCapacity    int     `toml:"semantic_capacity"`
	RedisAddr           string  `toml:"redis_addr"`
	RedisPassword       string  `toml:"redis_password"`
	RedisDB             int     `toml:"redis_db"`
	DataDir             string  `toml:"data_dir"`
}

// ExactTTL returns the exact-tier TTL as a duration.
func (c CacheConfig) ExactTTL() time.Duration {
	return time.Duration(c.ExactTTLSeconds) * time.Second
}

// SemanticTTL returns the semantic-tier TTL as a duration.
func (c CacheConfig) SemanticTTL() time.Duration {
	return time.Duration(c.SemanticTTLSeconds) * time.Second
}

// RouterConfig configures the collection fan-out.
type RouterConfig struct {
	PoolSize                 int `toml:"pool_size"`
	CollectionTimeoutSeconds int `toml:"collection_timeout_seconds"`
}

// CollectionTimeout returns the per-collection timeout as a duration.
func (c RouterConfig) CollectionTimeout() time.Duration {
	return time.Duration(c.CollectionTimeoutSeconds) * time.Second
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Retrieval: RetrievalConfig{
			LexicalTopN:   20,
			DenseTopN:     20,
			LexicalWeight: 0.3,
			DenseWeight:   0.7,
			TopK:          20,
			SynthesisTopK: 30,
		},
		Rerank: RerankConfig{
			Enabled:   false,
			BatchSize: 16,
		},
		Assembly: AssemblyConfig{
			CharBudget:       8000,
			MinUniqueSources: 3,
		},
		Cache: CacheConfig{
			Backend:             "sqlite",
			ExactTTLSeconds:     15 * 60,
			SemanticTTLSeconds:  15 * 60,
			SimilarityThreshold: 0.90,
			SemanticCapacity:    2048,
		},
		Router: RouterConfig{
			PoolSize:                 5,
			CollectionTimeoutSeconds: 4,
		},
		Embedding: EmbeddingConfig{
			Enabled: false,
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lectern", "config.toml"), nil
}

// Load reads a config file, layering it over the defaults. A missing
// file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
