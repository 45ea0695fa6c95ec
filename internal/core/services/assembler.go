package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Assembly defaults.
const (
	// DefaultCharBudget bounds the assembled context size.
	DefaultCharBudget = 8000

	// DefaultMinUniqueSources is the synthesis coverage floor.
	DefaultMinUniqueSources = 3

	// minTruncatedChars is the smallest truncated fragment worth
	// including over leaving budget unused.
	minTruncatedChars = 120

	// maxHighlightsPerSource caps manifest snippets per source file.
	maxHighlightsPerSource = 3
)

// AssembleOptions configures context assembly.
type AssembleOptions struct {
	// CharBudget is the maximum context length in characters.
	CharBudget int

	// MinUniqueSources is the coverage floor for synthesis queries.
	MinUniqueSources int

	// IsSynthesis enables the coverage warning.
	IsSynthesis bool

	// Query is the original query, used for highlight extraction.
	Query string
}

func (o AssembleOptions) withDefaults() AssembleOptions {
	if o.CharBudget <= 0 {
		o.CharBudget = DefaultCharBudget
	}
	if o.MinUniqueSources <= 0 {
		o.MinUniqueSources = DefaultMinUniqueSources
	}
	return o
}

// AssembleContext builds the evidence payload from ranked candidates.
//
// Chunks are appended in rank order under a source+position header until
// the budget is reached. A chunk that does not fit whole is passed over
// in favour of later candidates that do; only when no whole candidate
// fits is the best passed-over chunk truncated into the remaining
// budget, so at most the final included chunk is cut. A synthesis answer
// drawing on fewer than MinUniqueSources distinct files gets a non-fatal
// coverage warning.
func AssembleContext(candidates []domain.Candidate, opts AssembleOptions) domain.Answer {
	opts = opts.withDefaults()

	var (
		context   strings.Builder
		manifest  []domain.SourceRef
		bySource  = make(map[string]int)
		used      int
		truncated *domain.Candidate
	)

	appendChunk := func(c *domain.Candidate, text string) {
		block := chunkHeader(c.Chunk) + text + "\n\n"
		context.WriteString(block)
		used += len(block)

		idx, ok := bySource[c.Chunk.SourceFileID]
		if !ok {
			manifest = append(manifest, domain.SourceRef{
				SourceFileID: c.Chunk.SourceFileID,
				CollectionID: c.CollectionID,
			})
			idx = len(manifest) - 1
			bySource[c.Chunk.SourceFileID] = idx
		}
		ref := &manifest[idx]
		ref.ChunkIDs = append(ref.ChunkIDs, c.ChunkID)
		for _, h := range extractHighlights(text, opts.Query) {
			if len(ref.Highlights) >= maxHighlightsPerSource {
				break
			}
			ref.Highlights = append(ref.Highlights, h)
		}
	}

	for i := range candidates {
		c := &candidates[i]
		if c.Chunk.Text == "" {
			continue
		}
		cost := len(chunkHeader(c.Chunk)) + len(c.Chunk.Text) + 2
		if used+cost <= opts.CharBudget {
			appendChunk(c, c.Chunk.Text)
			continue
		}
		if truncated == nil {
			truncated = c
		}
	}

	// No remaining candidate fits whole; cut the best passed-over chunk
	// into what budget is left.
	if truncated != nil {
		remaining := opts.CharBudget - used - len(chunkHeader(truncated.Chunk)) - 2
		if remaining >= minTruncatedChars {
			appendChunk(truncated, truncateText(truncated.Chunk.Text, remaining))
		}
	}

	answer := domain.Answer{
		ContextText: strings.TrimRight(context.String(), "\n"),
		Sources:     manifest,
		CacheHit:    domain.CacheHitNone,
	}

	if opts.IsSynthesis && len(manifest) < opts.MinUniqueSources {
		warning := fmt.Sprintf("synthesis coverage: evidence drawn from %d unique source(s), below the minimum of %d",
			len(manifest), opts.MinUniqueSources)
		answer.Warnings = append(answer.Warnings, warning)
		logger.Warn("%s", warning)
	}

	logger.Debug("Assembled context: %d chars from %d sources", len(answer.ContextText), len(manifest))
	return answer
}

// truncateText cuts s to at most n bytes, backing up so a multibyte
// rune is never split.
func truncateText(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// chunkHeader renders the source+position header preceding chunk text.
func chunkHeader(chunk domain.Chunk) string {
	return fmt.Sprintf("[source: %s | chunk %d/%d]\n", chunk.SourceFileID, chunk.Position+1, chunk.TotalChunks)
}

// extractHighlights creates short snippets containing query terms.
func extractHighlights(content, query string) []string {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceLower := strings.ToLower(sentence)
		for _, term := range queryTerms {
			if strings.Contains(sentenceLower, term) {
				if len(sentence) > 200 {
					sentence = truncateText(sentence, 200) + "..."
				}
				highlights = append(highlights, sentence)
				break
			}
		}
		if len(highlights) >= 2 {
			break
		}
	}
	return highlights
}

// splitSentences splits content on common sentence terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
