package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Cache defaults.
const (
	// DefaultExactTTL is the exact-tier entry lifetime.
	DefaultExactTTL = 15 * time.Minute

	// DefaultSemanticTTL is the semantic-tier entry lifetime.
	DefaultSemanticTTL = 15 * time.Minute

	// DefaultSimilarityThreshold is the cosine similarity floor for a
	// semantic hit.
	DefaultSimilarityThreshold = 0.90

	// localCacheMaxEntries bounds the in-process degradation tier.
	localCacheMaxEntries = 1024
)

// CacheOptions configures the two-tier query cache. Zero values fall
// back to package defaults.
type CacheOptions struct {
	ExactTTL            time.Duration
	SemanticTTL         time.Duration
	SimilarityThreshold float64
}

func (o CacheOptions) withDefaults() CacheOptions {
	if o.ExactTTL <= 0 {
		o.ExactTTL = DefaultExactTTL
	}
	if o.SemanticTTL <= 0 {
		o.SemanticTTL = DefaultSemanticTTL
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return o
}

// localEntry is one in-process exact-tier entry.
type localEntry struct {
	payload   []byte
	expiresAt time.Time
}

// QueryCache is the two-tier (exact + semantic) query result cache.
//
// The exact tier hashes the normalized query plus sorted collection
// scope; it prefers the injected persistent store and degrades silently
// to process memory when the store is nil or erroring. The semantic tier
// matches by query-embedding cosine similarity through the SemanticStore
// port. Both stores are injected so tests can substitute isolated
// in-memory instances; there is no module-level cache state.
type QueryCache struct {
	store    driven.CacheStore
	semantic driven.SemanticStore
	opts     CacheOptions

	mu       sync.Mutex
	local    map[string]localEntry
	localAge []string
}

// NewQueryCache creates the cache layer. Both stores are optional: a
// nil CacheStore keeps the exact tier in process memory only, a nil
// SemanticStore disables the semantic tier.
func NewQueryCache(store driven.CacheStore, semantic driven.SemanticStore, opts CacheOptions) *QueryCache {
	return &QueryCache{
		store:    store,
		semantic: semantic,
		opts:     opts.withDefaults(),
		local:    make(map[string]localEntry),
	}
}

// GetExact looks up the exact tier.
func (c *QueryCache) GetExact(ctx context.Context, key string) (*domain.Answer, bool) {
	if c.store != nil {
		data, err := c.store.Get(ctx, key)
		if err == nil {
			if answer := decodeAnswer(data); answer != nil {
				return answer, true
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("Exact cache store read failed, checking local tier: %v", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.local[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	answer := decodeAnswer(entry.payload)
	return answer, answer != nil
}

// PutExact stores an answer in the exact tier. Entries land in the
// persistent store when available; store failures degrade silently to
// the local tier.
func (c *QueryCache) PutExact(ctx context.Context, key string, answer *domain.Answer) {
	payload, err := json.Marshal(answer)
	if err != nil {
		logger.Warn("Exact cache encode failed: %v", err)
		return
	}

	if c.store != nil {
		err := c.store.Set(ctx, key, payload, c.opts.ExactTTL)
		if err == nil {
			return
		}
		logger.Warn("Exact cache store write failed, keeping local copy: %v", err)
	}
	c.putLocal(key, payload)
}

// GetSemantic looks up the semantic tier by query embedding. A hit
// returns the stored answer together with its cosine similarity.
func (c *QueryCache) GetSemantic(ctx context.Context, queryVec []float32) (*domain.Answer, float64, bool) {
	if c.semantic == nil || len(queryVec) == 0 {
		return nil, 0, false
	}
	entry, similarity, err := c.semantic.Nearest(ctx, queryVec)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("Semantic cache lookup failed: %v", err)
		}
		return nil, 0, false
	}
	if similarity < c.opts.SimilarityThreshold {
		logger.Debug("Semantic cache best similarity %.3f below threshold %.2f", similarity, c.opts.SimilarityThreshold)
		return nil, 0, false
	}
	answer := decodeAnswer(entry.Payload)
	if answer == nil {
		return nil, 0, false
	}
	logger.Debug("Semantic cache hit: similarity=%.3f stored_query=%q", similarity, entry.Query)
	return answer, similarity, true
}

// PutSemantic stores an answer in the semantic tier.
func (c *QueryCache) PutSemantic(ctx context.Context, queryVec []float32, queryText string, answer *domain.Answer) {
	if c.semantic == nil || len(queryVec) == 0 {
		return
	}
	payload, err := json.Marshal(answer)
	if err != nil {
		logger.Warn("Semantic cache encode failed: %v", err)
		return
	}
	entry := driven.SemanticEntry{
		Embedding: queryVec,
		Query:     queryText,
		Payload:   payload,
		CreatedAt: time.Now(),
		TTL:       c.opts.SemanticTTL,
	}
	if err := c.semantic.Put(ctx, entry); err != nil {
		logger.Warn("Semantic cache write failed: %v", err)
	}
}

// Clear empties both tiers.
func (c *QueryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.local = make(map[string]localEntry)
	c.localAge = nil
	c.mu.Unlock()

	var firstErr error
	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			firstErr = err
		}
	}
	if c.semantic != nil {
		if err := c.semantic.Clear(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// putLocal stores a payload in the bounded in-process tier,
// dropping the oldest entries when full.
func (c *QueryCache) putLocal(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.local[key]; !exists {
		c.localAge = append(c.localAge, key)
	}
	c.local[key] = localEntry{
		payload:   payload,
		expiresAt: time.Now().Add(c.opts.ExactTTL),
	}

	for len(c.local) > localCacheMaxEntries && len(c.localAge) > 0 {
		oldest := c.localAge[0]
		c.localAge = c.localAge[1:]
		delete(c.local, oldest)
	}
}

// decodeAnswer unmarshals a cached payload, returning nil on corrupt
// data rather than failing the request.
func decodeAnswer(payload []byte) *domain.Answer {
	var answer domain.Answer
	if err := json.Unmarshal(payload, &answer); err != nil {
		logger.Warn("Discarding corrupt cache payload: %v", err)
		return nil
	}
	return &answer
}
