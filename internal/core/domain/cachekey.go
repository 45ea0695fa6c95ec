package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// ExactCacheKey derives the exact-tier cache key for a normalized query
// and collection scope. The scope is sorted so that key derivation is
// independent of the order collections were requested in. An empty scope
// (search everything) hashes a "*" sentinel.
func ExactCacheKey(normalizedQuery string, collectionIDs []string) string {
	scope := "*"
	if len(collectionIDs) > 0 {
		sorted := make([]string, len(collectionIDs))
		copy(sorted, collectionIDs)
		sort.Strings(sorted)
		scope = strings.Join(sorted, ",")
	}
	sum := sha256.Sum256([]byte(normalizedQuery + "\x00" + scope))
	return hex.EncodeToString(sum[:])
}
