package driving

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// QueryOptions configures a single answer request.
type QueryOptions struct {
	// Collections restricts the search scope. Empty means all known
	// collections.
	Collections []string

	// SynthesisOverride forces synthesis handling on or off, bypassing
	// the classifier. Nil means classify normally.
	SynthesisOverride *bool
}

// QueryService answers a query with assembled, deduplicated evidence.
// The core stops at context assembly; the final natural-language
// generation call is an external responsibility.
type QueryService interface {
	// AnswerQuery runs the retrieval pipeline for one query.
	//
	// Returns domain.ErrInvalidQuery for empty/whitespace input and
	// domain.ErrRetrievalFailed when every retrieval path across every
	// targeted collection failed or produced nothing. Partial failures
	// surface as warnings on a successful answer, never as errors.
	AnswerQuery(ctx context.Context, query string, opts QueryOptions) (*domain.Answer, error)
}

// CacheAdmin exposes cache maintenance hooks to operator tooling.
type CacheAdmin interface {
	// ClearCaches empties both the exact and semantic tiers.
	ClearCaches(ctx context.Context) error
}
