package domain

// CacheHit identifies which cache tier, if any, served a result.
type CacheHit string

// Cache hit kinds.
const (
	// CacheHitNone means the full pipeline ran.
	CacheHitNone CacheHit = "none"

	// CacheHitExact means the exact tier matched the normalized query
	// and collection scope.
	CacheHitExact CacheHit = "exact"

	// CacheHitSemantic means the semantic tier matched by embedding
	// similarity.
	CacheHitSemantic CacheHit = "semantic"
)

// SourceRef describes one source file contributing to an answer context.
type SourceRef struct {
	// SourceFileID identifies the contributing file.
	SourceFileID string `json:"source_file_id"`

	// CollectionID is the collection the file belongs to.
	CollectionID string `json:"collection_id"`

	// ChunkIDs are the chunks from this file included in the context,
	// in inclusion order.
	ChunkIDs []string `json:"chunk_ids"`

	// Highlights are short snippets containing matched query terms.
	Highlights []string `json:"highlights,omitempty"`
}

// Answer is the assembled evidence payload returned to the chat layer.
// The core stops here; natural-language generation is external.
type Answer struct {
	// ContextText is the assembled evidence, ready for an LLM prompt.
	ContextText string `json:"context_text"`

	// Sources is the manifest of files the context was drawn from.
	Sources []SourceRef `json:"sources"`

	// CacheHit records which cache tier served the answer.
	CacheHit CacheHit `json:"cache_hit"`

	// CacheSimilarity is the cosine similarity of a semantic cache hit.
	// Zero unless CacheHit is CacheHitSemantic.
	CacheSimilarity float64 `json:"cache_similarity,omitempty"`

	// Warnings carries non-fatal pipeline notices such as skipped
	// collections or insufficient synthesis coverage.
	Warnings []string `json:"warnings,omitempty"`
}

// UniqueSourceCount returns the number of distinct source files in the
// manifest.
func (a *Answer) UniqueSourceCount() int {
	return len(a.Sources)
}
