package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/meridian-scm/docrag/docstore"
	"github.com/meridian-scm/docrag/embed"
)

const (
	// Synthesis uses at most this many unique excerpts, each truncated for
	// readability. All retrieved results are still returned as sources.
	maxExcerpts  = 3
	excerptChars = 300

	noResultsAnswer = "I don't have enough information to answer that question."
	noContextAnswer = "I couldn't find any relevant information in the uploaded documents."
)

// Answer is a synthesized response plus the retrieval hits it was built from.
type Answer struct {
	Answer  string
	Sources []docstore.SearchResult
}

// QueryEngine embeds a query, retrieves the most similar chunks and renders a
// templated answer from the evidence. Synthesis is deterministic and
// traceable, not generative.
type QueryEngine struct {
	log      *slog.Logger
	embedder embed.Embedder
	index    docstore.Index
	topK     int
}

func (qe *QueryEngine) Answer(ctx context.Context, query string, topK int) (Answer, error) {
	if topK <= 0 {
		topK = qe.topK
	}

	vec, err := qe.embedder.Embed(query)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := qe.index.Query(ctx, vec, topK)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to search index: %w", err)
	}
	qe.log.Debug("retrieved chunks", "query", query, "count", len(results))

	if len(results) == 0 {
		return Answer{Answer: noResultsAnswer, Sources: []docstore.SearchResult{}}, nil
	}

	return Answer{Answer: qe.synthesize(query, results), Sources: results}, nil
}

func (qe *QueryEngine) synthesize(query string, results []docstore.SearchResult) string {
	seen := make(map[string]struct{})
	var excerpts []string
	for _, r := range results {
		text, _ := r.Metadata[docstore.KeyText].(string)
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}

		seen[text] = struct{}{}
		excerpts = append(excerpts, truncate(text, excerptChars))
		if len(excerpts) == maxExcerpts {
			break
		}
	}

	if len(excerpts) == 0 {
		return noContextAnswer
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the uploaded documents, here's information about '%s':\n\n", query)
	for i, ex := range excerpts {
		fmt.Fprintf(&sb, "Document %d: %s\n\n", i+1, ex)
	}

	return sb.String()
}

// truncate shortens text to at most n bytes plus an ellipsis, backing the cut
// up to a rune boundary so a multi-byte character is never split.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}

	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}

	return text[:n] + "..."
}
