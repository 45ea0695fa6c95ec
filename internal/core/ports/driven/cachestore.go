package driven

import (
	"context"
	"time"
)

// CacheStore is a persistent backend for the exact cache tier.
// This is an optional service - when nil or unreachable, the exact tier
// degrades silently to process memory.
//
// Implementations may include Redis or a local SQLite file. Concurrent
// writers to the same key race with last-writer-wins semantics.
type CacheStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries owned by this store.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SemanticEntry is one stored semantic-cache record.
type SemanticEntry struct {
	// Embedding is the query embedding the entry is keyed by.
	Embedding []float32

	// Query is the original query text, kept for audit logs.
	Query string

	// Payload is the serialized answer.
	Payload []byte

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time

	// TTL is the entry lifetime.
	TTL time.Duration
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *SemanticEntry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.After(e.CreatedAt.Add(e.TTL))
}

// SemanticStore holds semantic cache entries keyed by query embedding.
// The default implementation is a linear scan, acceptable at a scale of
// thousands of entries; this interface is the swap-in point for an
// indexed nearest-neighbour structure.
type SemanticStore interface {
	// Put stores an entry. Stores may bound capacity by evicting the
	// oldest entries.
	Put(ctx context.Context, entry SemanticEntry) error

	// Nearest returns the live entry most similar to the query vector
	// along with its cosine similarity. Returns domain.ErrCacheMiss when
	// the store holds no live entries.
	Nearest(ctx context.Context, query []float32) (SemanticEntry, float64, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
