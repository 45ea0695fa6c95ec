package domain

// Candidate is a retrieval candidate accumulated during hybrid search.
// Candidates are deduplicated by chunk ID; when the same chunk surfaces
// under several query variants the max fused score is retained.
type Candidate struct {
	// ChunkID identifies the candidate chunk.
	ChunkID string

	// Chunk is the hydrated chunk. Populated before reranking.
	Chunk Chunk

	// CollectionID is the collection the candidate was retrieved from.
	CollectionID string

	// LexicalScore is the normalized keyword relevance (0 when the chunk
	// was absent from the lexical pass).
	LexicalScore float64

	// DenseScore is the normalized embedding similarity (0 when the chunk
	// was absent from the dense pass).
	DenseScore float64

	// FusedScore is the weighted combination of lexical and dense scores.
	FusedScore float64

	// RerankScore is the cross-encoder score against the original query.
	// Only meaningful when Reranked is true.
	RerankScore float64

	// Reranked is true once a cross-encoder score has been applied.
	Reranked bool

	// Variants holds the indices of the query variants that surfaced this
	// candidate, in ascending order.
	Variants []int
}

// FirstVariant returns the earliest contributing variant index, used as
// the first tie-breaker when fused scores are equal.
func (c *Candidate) FirstVariant() int {
	if len(c.Variants) == 0 {
		return 0
	}
	return c.Variants[0]
}
