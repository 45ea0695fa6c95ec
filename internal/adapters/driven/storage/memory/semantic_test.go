package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

func semanticEntry(query string, embedding []float32, ttl time.Duration) driven.SemanticEntry {
	return driven.SemanticEntry{
		Embedding: embedding,
		Query:     query,
		Payload:   []byte(`{"context_text":"` + query + `"}`),
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
}

func TestSemanticStore_Nearest(t *testing.T) {
	store := NewSemanticStore(0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, semanticEntry("about cats", []float32{1, 0, 0}, time.Minute)))
	require.NoError(t, store.Put(ctx, semanticEntry("about dogs", []float32{0, 1, 0}, time.Minute)))

	entry, similarity, err := store.Nearest(ctx, []float32{0.9, 0.1, 0})

	require.NoError(t, err)
	assert.Equal(t, "about cats", entry.Query)
	assert.Greater(t, similarity, 0.9)
}

func TestSemanticStore_EmptyMiss(t *testing.T) {
	store := NewSemanticStore(0)

	_, _, err := store.Nearest(context.Background(), []float32{1, 0, 0})

	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSemanticStore_ExpiredEntriesPruned(t *testing.T) {
	store := NewSemanticStore(0)
	ctx := context.Background()

	expired := semanticEntry("stale", []float32{1, 0, 0}, time.Minute)
	expired.CreatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Put(ctx, expired))

	_, _, err := store.Nearest(ctx, []float32{1, 0, 0})

	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.Zero(t, store.Len())
}

func TestSemanticStore_CapacityDropsOldest(t *testing.T) {
	store := NewSemanticStore(2)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, semanticEntry("first", []float32{1, 0, 0}, time.Minute)))
	require.NoError(t, store.Put(ctx, semanticEntry("second", []float32{0, 1, 0}, time.Minute)))
	require.NoError(t, store.Put(ctx, semanticEntry("third", []float32{0, 0, 1}, time.Minute)))

	assert.Equal(t, 2, store.Len())

	// The oldest entry is gone; its exact vector now matches "second"
	// and "third" only at zero similarity, so the best hit is whichever
	// survived, never "first".
	entry, _, err := store.Nearest(ctx, []float32{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "second", entry.Query)
}

func TestSemanticStore_Clear(t *testing.T) {
	store := NewSemanticStore(0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, semanticEntry("entry", []float32{1, 0, 0}, time.Minute)))
	require.NoError(t, store.Clear(ctx))

	assert.Zero(t, store.Len())
	_, _, err := store.Nearest(ctx, []float32{1, 0, 0})
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSemanticEntry_Expired(t *testing.T) {
	now := time.Now()

	live := driven.SemanticEntry{CreatedAt: now, TTL: time.Minute}
	assert.False(t, live.Expired(now.Add(30*time.Second)))
	assert.True(t, live.Expired(now.Add(2*time.Minute)))

	// Zero TTL never expires.
	forever := driven.SemanticEntry{CreatedAt: now}
	assert.False(t, forever.Expired(now.Add(24*time.Hour)))
}
