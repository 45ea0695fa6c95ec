package domain

import "time"

// Chunk is a searchable unit of an indexed document. Chunks are produced
// by the ingestion subsystem and are read-only to the retrieval core.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// SourceFileID identifies the file the chunk was extracted from.
	SourceFileID string `json:"source_file_id"`

	// CollectionID is the collection the chunk is indexed under.
	CollectionID string `json:"collection_id"`

	// Text is the chunk content.
	Text string `json:"text"`

	// TokenCount is the token length of Text as measured at index time.
	TokenCount int `json:"token_count"`

	// Position is the ordinal position of the chunk within its file.
	Position int `json:"position"`

	// TotalChunks is the number of chunks the file was split into.
	TotalChunks int `json:"total_chunks"`

	// Metadata contains arbitrary key-value pairs set at index time.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Collection is an independently searchable group of indexed chunks.
// Collections are owned by the indexing subsystem.
type Collection struct {
	// ID is the unique collection identifier.
	ID string `json:"id"`

	// ChunkCount is the number of chunks indexed in the collection.
	ChunkCount int `json:"chunk_count"`

	// LastIndexedAt is when the collection was last updated.
	LastIndexedAt time.Time `json:"last_indexed_at"`
}
