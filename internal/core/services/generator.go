package services

import (
	"regexp"
	"strings"
)

// maxVariants is the hard cap on generated query variants, the original
// query included.
const maxVariants = 4

// versusPattern splits a comparison query into its two sides.
var versusPattern = regexp.MustCompile(`(?i)\s+(?:vs\.?|versus)\s+`)

// Filler words stripped from the front of extracted entities and
// subjects. Keeps variants focused on the entity itself.
var fillerWords = map[string]struct{}{
	"summarize": {}, "summary": {}, "overview": {}, "compare": {},
	"list": {}, "all": {}, "the": {}, "a": {}, "an": {}, "of": {},
	"give": {}, "me": {}, "please": {}, "show": {}, "what": {}, "is": {},
	"are": {},
}

// GenerateVariants produces up to maxVariants query variants for hybrid
// retrieval. Element 0 is always the verbatim original query. Variant
// generation only activates for synthesis queries; the result is
// case-insensitively deduplicated.
func GenerateVariants(query string, isSynthesis bool) []string {
	variants := []string{query}
	if !isSynthesis {
		return variants
	}

	lower := " " + strings.ToLower(query) + " "

	switch {
	case isComparison(lower):
		if e1, e2, ok := comparisonEntities(query); ok {
			variants = append(variants,
				e1+" characteristics features",
				e2+" characteristics features",
				e1+" versus "+e2+" differences",
			)
			break
		}
		fallthrough

	default:
		if entities := splitEntities(query); len(entities) >= 2 {
			// Decomposition: one focused variant per entity.
			for _, entity := range entities {
				variants = append(variants, entity+" summary overview")
			}
		} else if subject, ok := aggregationSubject(query); ok {
			variants = append(variants,
				subject+" list examples",
				subject+" types categories",
			)
		} else if subject := querySubject(query); subject != "" {
			// Single-subject summary fallback.
			variants = append(variants, subject+" overview")
		}
	}

	return dedupeVariants(variants)
}

func isComparison(lowerPadded string) bool {
	for _, kw := range comparisonKeywords {
		if strings.Contains(lowerPadded, kw) {
			return true
		}
	}
	return false
}

// comparisonEntities extracts the two sides of a comparison query.
func comparisonEntities(query string) (string, string, bool) {
	if sides := versusPattern.Split(query, 2); len(sides) == 2 {
		e1 := cleanEntity(sides[0])
		e2 := cleanEntity(sides[1])
		if e1 != "" && e2 != "" {
			return e1, e2, true
		}
	}
	// "compare X and Y" form.
	entities := splitEntities(query)
	if len(entities) == 2 {
		return entities[0], entities[1], true
	}
	return "", "", false
}

// splitEntities breaks a query on commas and " and " joins, cleaning
// each part. Used for decomposition.
func splitEntities(query string) []string {
	replaced := regexp.MustCompile(`(?i)\s+and\s+`).ReplaceAllString(query, ",")
	if !strings.Contains(replaced, ",") {
		return nil
	}
	var entities []string
	for _, part := range strings.Split(replaced, ",") {
		if entity := cleanEntity(part); entity != "" {
			entities = append(entities, entity)
		}
	}
	return entities
}

// aggregationSubject extracts X from "list all X" / "all X" / "list X".
// Prefixes match at word boundaries only, so "overall" never counts as
// "all".
func aggregationSubject(query string) (string, bool) {
	padded := " " + strings.ToLower(query) + " "
	for _, prefix := range []string{" list all ", " all ", " list ", " every ", " each "} {
		idx := strings.Index(padded, prefix)
		if idx < 0 {
			continue
		}
		// Map back from padded to query offsets; a prefix closed by the
		// trailing pad space leaves no subject text at all.
		rest := idx + len(prefix) - 1
		if rest > len(query) {
			continue
		}
		if subject := cleanEntity(query[rest:]); subject != "" {
			return subject, true
		}
	}
	return "", false
}

// querySubject strips filler words and returns what remains, for the
// single-subject summary fallback.
func querySubject(query string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.Trim(query, " ?.!")) {
		if _, filler := fillerWords[strings.ToLower(tok)]; !filler {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// cleanEntity trims punctuation and leading filler words from an
// extracted entity.
func cleanEntity(s string) string {
	s = strings.Trim(strings.TrimSpace(s), " ,?.!:;")
	tokens := strings.Fields(s)
	for len(tokens) > 0 {
		if _, filler := fillerWords[strings.ToLower(tokens[0])]; !filler {
			break
		}
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// dedupeVariants removes case-insensitive duplicates preserving order
// and enforces the variant cap.
func dedupeVariants(variants []string) []string {
	seen := make(map[string]struct{}, len(variants))
	result := make([]string, 0, maxVariants)
	for _, v := range variants {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, v)
		if len(result) == maxVariants {
			break
		}
	}
	return result
}
