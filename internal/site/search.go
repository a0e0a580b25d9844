package site

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/search"
)

// SearchEntry represents a single searchable section of the guide. The page
// script filters these client-side when no search endpoint is available.
type SearchEntry struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

const maxIndexedContent = 2000

// BuildSearchIndex builds one entry per section, in document order.
func BuildSearchIndex(g *guide.Guide) []SearchEntry {
	var entries []SearchEntry
	g.Walk(func(s *guide.Section, _ int) bool {
		var b strings.Builder
		b.WriteString(s.Body)
		for _, c := range s.CodeSamples {
			b.WriteString(" ")
			b.WriteString(c.Description)
			b.WriteString(" ")
			b.WriteString(c.Code)
		}
		content := strings.Join(strings.Fields(b.String()), " ")
		if len(content) > maxIndexedContent {
			content = content[:maxIndexedContent]
		}
		entries = append(entries, SearchEntry{
			ID:      s.ID,
			Path:    g.Path(s.ID),
			Title:   s.Title,
			Summary: search.Snippet(s.Body, nil),
			Content: content,
		})
		return true
	})
	return entries
}

// WriteSearchIndex writes the search index as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
