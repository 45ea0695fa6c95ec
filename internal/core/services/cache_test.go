package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// mockCacheStore implements driven.CacheStore for testing.
type mockCacheStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{data: make(map[string][]byte)}
}

func (m *mockCacheStore) Get(_ context.Context, key string) ([]byte, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (m *mockCacheStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockCacheStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCacheStore) Clear(_ context.Context) error {
	m.data = make(map[string][]byte)
	return nil
}

func (m *mockCacheStore) Close() error {
	return nil
}

// mockSemanticStore implements driven.SemanticStore for testing.
type mockSemanticStore struct {
	entries    []driven.SemanticEntry
	nearestErr error
	puts       int
}

func (m *mockSemanticStore) Put(_ context.Context, entry driven.SemanticEntry) error {
	m.puts++
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockSemanticStore) Nearest(_ context.Context, query []float32) (driven.SemanticEntry, float64, error) {
	if m.nearestErr != nil {
		return driven.SemanticEntry{}, 0, m.nearestErr
	}
	if len(m.entries) == 0 {
		return driven.SemanticEntry{}, 0, domain.ErrCacheMiss
	}
	best := m.entries[0]
	bestSim := domain.CosineSimilarity(query, best.Embedding)
	for _, entry := range m.entries[1:] {
		if sim := domain.CosineSimilarity(query, entry.Embedding); sim > bestSim {
			best, bestSim = entry, sim
		}
	}
	return best, bestSim, nil
}

func (m *mockSemanticStore) Clear(_ context.Context) error {
	m.entries = nil
	return nil
}

func testAnswer(text string) *domain.Answer {
	return &domain.Answer{
		ContextText: text,
		Sources: []domain.SourceRef{
			{SourceFileID: "a.md", CollectionID: "col-1", ChunkIDs: []string{"c1"}},
		},
	}
}

func TestQueryCache_ExactRoundtrip(t *testing.T) {
	store := newMockCacheStore()
	cache := NewQueryCache(store, nil, CacheOptions{})
	ctx := context.Background()

	cache.PutExact(ctx, "key-1", testAnswer("cached evidence"))
	answer, ok := cache.GetExact(ctx, "key-1")

	require.True(t, ok)
	assert.Equal(t, "cached evidence", answer.ContextText)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "a.md", answer.Sources[0].SourceFileID)
}

func TestQueryCache_ExactMiss(t *testing.T) {
	cache := NewQueryCache(newMockCacheStore(), nil, CacheOptions{})

	_, ok := cache.GetExact(context.Background(), "absent")

	assert.False(t, ok)
}

func TestQueryCache_StoreFailure_DegradesToLocal(t *testing.T) {
	store := newMockCacheStore()
	store.setErr = errors.New("backend down")
	store.getErr = errors.New("backend down")
	cache := NewQueryCache(store, nil, CacheOptions{})
	ctx := context.Background()

	// Writes and reads both fail against the store; the local tier
	// keeps the query path working with no error surfaced.
	cache.PutExact(ctx, "key-1", testAnswer("survived"))
	answer, ok := cache.GetExact(ctx, "key-1")

	require.True(t, ok)
	assert.Equal(t, "survived", answer.ContextText)
}

func TestQueryCache_NilStore_LocalOnly(t *testing.T) {
	cache := NewQueryCache(nil, nil, CacheOptions{})
	ctx := context.Background()

	cache.PutExact(ctx, "key-1", testAnswer("local"))
	answer, ok := cache.GetExact(ctx, "key-1")

	require.True(t, ok)
	assert.Equal(t, "local", answer.ContextText)
}

func TestQueryCache_LocalTTLExpiry(t *testing.T) {
	cache := NewQueryCache(nil, nil, CacheOptions{ExactTTL: 10 * time.Millisecond})
	ctx := context.Background()

	cache.PutExact(ctx, "key-1", testAnswer("short lived"))
	time.Sleep(30 * time.Millisecond)
	_, ok := cache.GetExact(ctx, "key-1")

	assert.False(t, ok)
}

func TestQueryCache_CorruptPayload_TreatedAsMiss(t *testing.T) {
	store := newMockCacheStore()
	store.data["key-1"] = []byte("{not valid json")
	cache := NewQueryCache(store, nil, CacheOptions{})

	_, ok := cache.GetExact(context.Background(), "key-1")

	assert.False(t, ok)
}

func TestQueryCache_SemanticHitAboveThreshold(t *testing.T) {
	semantic := &mockSemanticStore{}
	cache := NewQueryCache(nil, semantic, CacheOptions{})
	ctx := context.Background()

	stored := []float32{1, 0}
	cache.PutSemantic(ctx, stored, "original phrasing", testAnswer("semantic evidence"))

	// Cosine similarity against the stored vector is ~0.93.
	query := []float32{0.93, 0.3676}
	answer, similarity, ok := cache.GetSemantic(ctx, query)

	require.True(t, ok)
	assert.Equal(t, "semantic evidence", answer.ContextText)
	assert.InDelta(t, 0.93, similarity, 0.01)
}

func TestQueryCache_SemanticMissBelowThreshold(t *testing.T) {
	semantic := &mockSemanticStore{}
	cache := NewQueryCache(nil, semantic, CacheOptions{})
	ctx := context.Background()

	cache.PutSemantic(ctx, []float32{1, 0}, "original phrasing", testAnswer("evidence"))

	// Cosine similarity ~0.80, below the 0.90 default threshold.
	_, _, ok := cache.GetSemantic(ctx, []float32{0.8, 0.6})

	assert.False(t, ok)
}

func TestQueryCache_SemanticThresholdConfigurable(t *testing.T) {
	semantic := &mockSemanticStore{}
	cache := NewQueryCache(nil, semantic, CacheOptions{SimilarityThreshold: 0.75})
	ctx := context.Background()

	cache.PutSemantic(ctx, []float32{1, 0}, "q", testAnswer("evidence"))
	_, similarity, ok := cache.GetSemantic(ctx, []float32{0.8, 0.6})

	require.True(t, ok)
	assert.InDelta(t, 0.80, similarity, 0.01)
}

func TestQueryCache_SemanticNilStore(t *testing.T) {
	cache := NewQueryCache(nil, nil, CacheOptions{})

	_, _, ok := cache.GetSemantic(context.Background(), []float32{1, 0})

	assert.False(t, ok)
}

func TestQueryCache_SemanticEmptyVector(t *testing.T) {
	semantic := &mockSemanticStore{}
	cache := NewQueryCache(nil, semantic, CacheOptions{})

	_, _, ok := cache.GetSemantic(context.Background(), nil)

	assert.False(t, ok)
	cache.PutSemantic(context.Background(), nil, "q", testAnswer("x"))
	assert.Zero(t, semantic.puts)
}

func TestQueryCache_SemanticLookupError_Degrades(t *testing.T) {
	semantic := &mockSemanticStore{nearestErr: errors.New("store broken")}
	cache := NewQueryCache(nil, semantic, CacheOptions{})

	_, _, ok := cache.GetSemantic(context.Background(), []float32{1, 0})

	assert.False(t, ok)
}

func TestQueryCache_ClearEmptiesBothTiers(t *testing.T) {
	store := newMockCacheStore()
	semantic := &mockSemanticStore{}
	cache := NewQueryCache(store, semantic, CacheOptions{})
	ctx := context.Background()

	cache.PutExact(ctx, "key-1", testAnswer("exact"))
	cache.PutSemantic(ctx, []float32{1, 0}, "q", testAnswer("semantic"))

	require.NoError(t, cache.Clear(ctx))

	_, ok := cache.GetExact(ctx, "key-1")
	assert.False(t, ok)
	_, _, ok = cache.GetSemantic(ctx, []float32{1, 0})
	assert.False(t, ok)
}
