package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		isSynthesis bool
	}{
		{
			name:        "plain factual question",
			query:       "what is the refund policy",
			isSynthesis: false,
		},
		{
			name:        "summarize keyword",
			query:       "summarize the onboarding process",
			isSynthesis: true,
		},
		{
			name:        "summary keyword",
			query:       "give me a summary of the incident",
			isSynthesis: true,
		},
		{
			name:        "overview keyword",
			query:       "overview of deployment options",
			isSynthesis: true,
		},
		{
			name:        "compare keyword",
			query:       "compare the two storage backends",
			isSynthesis: true,
		},
		{
			name:        "vs token",
			query:       "postgres vs sqlite for small installs",
			isSynthesis: true,
		},
		{
			name:        "difference keyword",
			query:       "what is the difference between the plans",
			isSynthesis: true,
		},
		{
			name:        "list all aggregation",
			query:       "list all supported file formats",
			isSynthesis: true,
		},
		{
			name:        "each aggregation",
			query:       "what does each tier cost",
			isSynthesis: true,
		},
		{
			name:        "comma separated entities",
			query:       "revenue for Q1, Q2, Q3",
			isSynthesis: true,
		},
		{
			name:        "capitalized and join",
			query:       "how do Redis and Postgres handle persistence",
			isSynthesis: true,
		},
		{
			name:        "lowercase and join is not a signal",
			query:       "error handling and logging setup",
			isSynthesis: false,
		},
		{
			name:        "three capitalized tokens",
			query:       "deadlines for Apollo Borealis Cascade",
			isSynthesis: true,
		},
		{
			name:        "all embedded in a word is not a signal",
			query:       "overall performance this year",
			isSynthesis: false,
		},
		{
			name:        "each embedded in a word is not a signal",
			query:       "breach of contract details",
			isSynthesis: false,
		},
		{
			name:        "single trailing comma",
			query:       "what changed in the release,",
			isSynthesis: false,
		},
		{
			name:        "case insensitive keywords",
			query:       "SUMMARIZE the quarterly report",
			isSynthesis: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.query)
			assert.Equal(t, tt.isSynthesis, result.IsSynthesis)
			if tt.isSynthesis {
				assert.NotEmpty(t, result.Signals)
			} else {
				assert.Empty(t, result.Signals)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	query := "compare Redis and Postgres, then summarize"
	first := Classify(query)
	second := Classify(query)

	assert.Equal(t, first, second)
}

func TestClassify_SignalNames(t *testing.T) {
	result := Classify("summarize Q1, Q2, Q3 results")

	assert.True(t, result.IsSynthesis)
	assert.Contains(t, result.Signals, "summarization:summarize")
	assert.Contains(t, result.Signals, "multi-entity:comma")
}

func TestCommaSeparatedItems(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"no commas here", 0},
		{"one, two", 2},
		{"one, two, three", 3},
		{"trailing,", 1},
		{",,", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, commaSeparatedItems(tt.query), tt.query)
	}
}

func TestDistinctCapitalizedTokens(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"all lowercase words", 0},
		{"Alpha and beta", 1},
		{"Alpha Beta Gamma", 3},
		{"Alpha Alpha Alpha", 1},
		{"(Alpha) Beta!", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, distinctCapitalizedTokens(tt.query), tt.query)
	}
}
