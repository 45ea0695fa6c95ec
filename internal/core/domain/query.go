package domain

import "strings"

// QueryRecord carries the per-request state of a query through the
// retrieval pipeline. It is ephemeral and never persisted.
type QueryRecord struct {
	// Raw is the query exactly as received.
	Raw string

	// Normalized is the lowercased, whitespace-collapsed form used for
	// cache keys and classification.
	Normalized string

	// IsSynthesis is true when the query needs evidence from multiple
	// distinct source documents.
	IsSynthesis bool

	// Variants are the generated query variants. Variants[0] is always
	// the verbatim original query.
	Variants []string

	// TargetCollections are the collections the query will run against.
	TargetCollections []string
}

// Classification is the result of synthesis-query detection.
type Classification struct {
	// IsSynthesis is true when any synthesis signal fired.
	IsSynthesis bool

	// Signals names the heuristics that matched, for audit logs.
	Signals []string
}

// NormalizeQuery lowercases a query and collapses runs of whitespace.
// The normalized form is what cache keys and classification operate on.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
