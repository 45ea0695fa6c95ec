package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVariants_NonSynthesis(t *testing.T) {
	variants := GenerateVariants("what is the refund policy", false)

	assert.Equal(t, []string{"what is the refund policy"}, variants)
}

func TestGenerateVariants_OriginalAlwaysFirst(t *testing.T) {
	queries := []string{
		"compare Redis versus Postgres",
		"summarize Q1, Q2, Q3",
		"list all supported formats",
		"summarize the incident report",
	}
	for _, q := range queries {
		variants := GenerateVariants(q, true)
		require.NotEmpty(t, variants, q)
		assert.Equal(t, q, variants[0], q)
	}
}

func TestGenerateVariants_Comparison(t *testing.T) {
	variants := GenerateVariants("Redis versus Postgres", true)

	require.Len(t, variants, 4)
	assert.Equal(t, "Redis versus Postgres", variants[0])
	assert.Equal(t, "Redis characteristics features", variants[1])
	assert.Equal(t, "Postgres characteristics features", variants[2])
	assert.Equal(t, "Redis versus Postgres differences", variants[3])
}

func TestGenerateVariants_ComparisonVsToken(t *testing.T) {
	variants := GenerateVariants("Redis vs Postgres", true)

	require.Len(t, variants, 4)
	assert.Equal(t, "Redis characteristics features", variants[1])
	assert.Equal(t, "Postgres characteristics features", variants[2])
}

func TestGenerateVariants_CompareAndForm(t *testing.T) {
	variants := GenerateVariants("compare Redis and Postgres", true)

	require.Len(t, variants, 4)
	assert.Equal(t, "Redis characteristics features", variants[1])
	assert.Equal(t, "Postgres characteristics features", variants[2])
	assert.Equal(t, "Redis versus Postgres differences", variants[3])
}

func TestGenerateVariants_Decomposition(t *testing.T) {
	variants := GenerateVariants("summarize Q1, Q2, Q3", true)

	require.Len(t, variants, 4)
	assert.Equal(t, "Q1 summary overview", variants[1])
	assert.Equal(t, "Q2 summary overview", variants[2])
	assert.Equal(t, "Q3 summary overview", variants[3])
}

func TestGenerateVariants_Aggregation(t *testing.T) {
	variants := GenerateVariants("list all supported formats", true)

	require.Len(t, variants, 3)
	assert.Equal(t, "supported formats list examples", variants[1])
	assert.Equal(t, "supported formats types categories", variants[2])
}

func TestGenerateVariants_SingleSubjectFallback(t *testing.T) {
	variants := GenerateVariants("summarize the incident report", true)

	require.Len(t, variants, 2)
	assert.Equal(t, "incident report overview", variants[1])
}

func TestGenerateVariants_CapAtFour(t *testing.T) {
	variants := GenerateVariants("summarize A, B, C, D, E, F", true)

	assert.Len(t, variants, maxVariants)
}

func TestGenerateVariants_Deduplicated(t *testing.T) {
	variants := GenerateVariants("compare Redis and redis", true)

	seen := make(map[string]bool)
	for _, v := range variants {
		key := strings.ToLower(strings.TrimSpace(v))
		assert.False(t, seen[key], "duplicate variant %q", v)
		seen[key] = true
	}
}

func TestGenerateVariants_Deterministic(t *testing.T) {
	query := "compare Redis and Postgres"
	first := GenerateVariants(query, true)
	second := GenerateVariants(query, true)

	assert.Equal(t, first, second)
}

func TestCleanEntity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Redis  ", "Redis"},
		{"compare Redis", "Redis"},
		{"the quick fox?", "quick fox"},
		{"summarize the, ", ""},
		{"Postgres,", "Postgres"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, cleanEntity(tt.input), tt.input)
	}
}

func TestAggregationSubject(t *testing.T) {
	subject, ok := aggregationSubject("list all supported formats")
	require.True(t, ok)
	assert.Equal(t, "supported formats", subject)

	_, ok = aggregationSubject("what is the refund policy")
	assert.False(t, ok)

	// Word-embedded matches are not aggregation prefixes.
	_, ok = aggregationSubject("summarize overall system health")
	assert.False(t, ok)
}

func TestSplitEntities(t *testing.T) {
	assert.Equal(t, []string{"Redis", "Postgres"}, splitEntities("Redis and Postgres"))
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, splitEntities("Q1, Q2, Q3"))
	assert.Nil(t, splitEntities("just one subject"))
}
