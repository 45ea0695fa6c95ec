package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// Keyword groups that mark a query as needing multi-document synthesis.
var (
	summarizationKeywords = []string{"summarize", "summary", "overview"}
	comparisonKeywords    = []string{"compare", "versus", " vs ", "difference"}
	aggregationKeywords   = []string{" list all ", " all ", " each ", " every "}
)

// andEntitiesPattern matches " and " joining two proper-noun-like tokens,
// e.g. "Alpha and Beta".
var andEntitiesPattern = regexp.MustCompile(`\b[A-Z][\w-]*\s+and\s+[A-Z][\w-]*`)

// Classify detects whether a query needs evidence aggregated from
// multiple distinct source documents. It is a pure function: the result
// depends only on the query text, and the matched signal names are
// returned for audit logging.
func Classify(query string) domain.Classification {
	var signals []string
	lower := " " + domain.NormalizeQuery(query) + " "

	for _, kw := range summarizationKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, "summarization:"+strings.TrimSpace(kw))
		}
	}
	for _, kw := range comparisonKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, "comparison:"+strings.TrimSpace(kw))
		}
	}
	for _, kw := range aggregationKeywords {
		if strings.Contains(lower, kw) {
			signals = append(signals, "aggregation:"+strings.TrimSpace(kw))
		}
	}

	if commaSeparatedItems(query) >= 2 {
		signals = append(signals, "multi-entity:comma")
	}
	if andEntitiesPattern.MatchString(query) {
		signals = append(signals, "multi-entity:and")
	}
	if distinctCapitalizedTokens(query) >= 3 {
		signals = append(signals, "multi-entity:capitalized")
	}

	return domain.Classification{
		IsSynthesis: len(signals) > 0,
		Signals:     signals,
	}
}

// commaSeparatedItems counts non-empty comma-separated parts.
func commaSeparatedItems(query string) int {
	if !strings.Contains(query, ",") {
		return 0
	}
	count := 0
	for _, part := range strings.Split(query, ",") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// distinctCapitalizedTokens counts distinct tokens starting with an
// uppercase letter.
func distinctCapitalizedTokens(query string) int {
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(query) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if tok == "" {
			continue
		}
		if r := []rune(tok)[0]; unicode.IsUpper(r) {
			seen[tok] = struct{}{}
		}
	}
	return len(seen)
}
