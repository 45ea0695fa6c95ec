package driven

import "context"

// LexicalIndex provides keyword search over indexed chunks.
// Indexing is owned by the out-of-scope ingestion subsystem; the
// retrieval core only reads.
type LexicalIndex interface {
	// Search performs a BM25-style keyword search within one collection
	// and returns matching chunk IDs with raw relevance scores.
	Search(ctx context.Context, collectionID, query string, topN int) ([]LexicalHit, error)

	// Close releases resources.
	Close() error
}

// LexicalHit is a keyword search result.
type LexicalHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the raw relevance score (e.g., BM25). Not comparable
	// across collections or engines; callers normalize per result list.
	Score float64
}
