package driven

import "context"

// CrossEncoder scores query-document pairs with full cross-attention.
// More accurate than first-pass retrieval but costlier, so it is only
// applied to a small candidate set.
//
// This is an optional service - when nil or failing, ranking falls back
// to fused-score order.
type CrossEncoder interface {
	// ScorePairs scores the query against each text. The result
	// preserves input order and has exactly one score per text.
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName returns the model identifier for logging.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
