package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidQuery indicates an empty or whitespace-only query. It is
	// raised before any collaborator call.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrievalFailed indicates every retrieval path across every
	// targeted collection failed or returned nothing. The chat layer maps
	// this to a "no relevant information found" message.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrNoCollections indicates no collections are available to search.
	ErrNoCollections = errors.New("no collections available")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates a cache lookup found no live entry.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable indicates the persistent cache backend is
	// unreachable. The cache layer degrades to process memory.
	ErrCacheUnavailable = errors.New("cache store unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Dense retrieval and the semantic cache tier are
	// disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrCrossEncoderUnavailable indicates the cross-encoder is not
	// configured. Ranking falls back to fused-score order.
	ErrCrossEncoderUnavailable = errors.New("cross-encoder unavailable")
)
