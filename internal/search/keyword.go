package search

import (
	"sort"
	"strings"

	"github.com/ziadkadry99/cyanguide/internal/guide"
)

// Result is one matching guide section.
type Result struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Path    string  `json:"path"`
	Snippet string  `json:"snippet"`
	Score   float32 `json:"score"`
}

const snippetLen = 160

// Keyword ranks sections by how often the query's words appear. A title hit
// weighs three times a body hit and a code hit twice. Sections containing
// none of the words are omitted. Ties keep document order.
func Keyword(g *guide.Guide, query string, limit int) []Result {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	g.Walk(func(s *guide.Section, _ int) bool {
		title := strings.ToLower(s.Title)
		body := strings.ToLower(s.Body)
		code := strings.ToLower(codeText(s))

		var score float32
		for _, t := range terms {
			score += 3 * float32(strings.Count(title, t))
			score += float32(strings.Count(body, t))
			score += 2 * float32(strings.Count(code, t))
		}
		if score > 0 {
			results = append(results, Result{
				ID:      s.ID,
				Title:   s.Title,
				Path:    g.Path(s.ID),
				Snippet: Snippet(s.Body, terms),
				Score:   score,
			})
		}
		return true
	})

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Snippet returns a short single-line excerpt of body around the first
// occurrence of any term, or its opening when none occurs.
func Snippet(body string, terms []string) string {
	flat := strings.Join(strings.Fields(body), " ")
	if len(flat) <= snippetLen {
		return flat
	}
	lower := strings.ToLower(flat)
	start := 0
	for _, t := range terms {
		if i := strings.Index(lower, t); i >= 0 {
			start = max(0, i-snippetLen/4)
			break
		}
	}
	// Snap to word boundaries.
	if start > 0 {
		if sp := strings.IndexByte(flat[start:], ' '); sp >= 0 {
			start += sp + 1
		}
	}
	end := min(len(flat), start+snippetLen)
	if end < len(flat) {
		if sp := strings.LastIndexByte(flat[start:end], ' '); sp > 0 {
			end = start + sp
		}
	}
	out := flat[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(flat) {
		out += "..."
	}
	return out
}

func codeText(s *guide.Section) string {
	var b strings.Builder
	for _, c := range s.CodeSamples {
		b.WriteString(c.Description)
		b.WriteByte('\n')
		b.WriteString(c.Code)
		b.WriteByte('\n')
	}
	return b.String()
}

// sectionText is the text embedded for a section.
func sectionText(s *guide.Section) string {
	return s.Title + "\n\n" + s.Body + "\n\n" + codeText(s)
}
