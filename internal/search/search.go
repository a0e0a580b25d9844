// Package search finds guide sections by keyword or, when an embedding
// model is configured, by meaning.
package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ziadkadry99/cyanguide/internal/guide"
)

// Searcher answers queries over one guide. It uses the semantic index when
// one is attached and falls back to keyword ranking otherwise, or when the
// index fails or is empty.
type Searcher struct {
	guide *guide.Guide
	index *Index
}

// New returns a keyword-only searcher. Attach an index with WithIndex.
func New(g *guide.Guide) *Searcher {
	return &Searcher{guide: g}
}

// WithIndex attaches a semantic index.
func (s *Searcher) WithIndex(x *Index) *Searcher {
	s.index = x
	return s
}

// Semantic reports whether a semantic index is attached.
func (s *Searcher) Semantic() bool { return s.index != nil }

// Search returns up to limit results for query. Blank queries return nothing.
func (s *Searcher) Search(ctx context.Context, query string, limit int) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if s.index != nil {
		results, err := s.index.Search(ctx, query, limit)
		if err != nil {
			log.Printf("search: semantic query failed, using keywords: %v", err)
		} else if len(results) > 0 {
			return results
		}
	}
	return Keyword(s.guide, query, limit)
}

// FormatResults renders search results as human-readable text.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (score: %.4f) ---\n", i+1, r.Score))
		sb.WriteString(fmt.Sprintf("Section: %s (#%s)\n", r.Title, r.ID))
		if r.Path != "" && r.Path != r.ID {
			sb.WriteString(fmt.Sprintf("Path: %s\n", r.Path))
		}
		if r.Snippet != "" {
			sb.WriteString("\n")
			sb.WriteString(r.Snippet)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
