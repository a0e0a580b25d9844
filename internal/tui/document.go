package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/nav"
)

// sampleRef locates a code sample in the rendered document.
type sampleRef struct {
	Section string
	Line    int
	Label   string
	Code    string
}

// document is the guide rendered for one terminal width. Every section
// covers the lines of its own title, body and code; children follow as
// their own blocks.
type document struct {
	content string
	lines   int
	rects   map[string]nav.Rect
	samples []sampleRef
}

func glamourStyle(style string) glamour.TermRendererOption {
	if style == "" || style == "auto" {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(style)
}

// renderDocument renders every section of g with glamour at width columns.
func renderDocument(g *guide.Guide, width int, style string) (*document, error) {
	r, err := glamour.NewTermRenderer(
		glamourStyle(style),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}

	doc := &document{rects: make(map[string]nav.Rect)}
	var lines []string
	var renderErr error
	appendMarkdown := func(md string) {
		out, err := r.Render(md)
		if err != nil {
			renderErr = err
			return
		}
		lines = append(lines, strings.Split(strings.TrimRight(out, "\n"), "\n")...)
	}

	g.Walk(func(s *guide.Section, depth int) bool {
		top := len(lines)

		var md strings.Builder
		fmt.Fprintf(&md, "%s %s\n\n", strings.Repeat("#", min(depth, 5)), s.Title)
		md.WriteString(s.Body)
		appendMarkdown(md.String())

		for _, c := range s.CodeSamples {
			doc.samples = append(doc.samples, sampleRef{Section: s.ID, Line: len(lines), Label: c.Label(), Code: c.Code})
			lines = append(lines, "  ["+c.Label()+"]")
			appendMarkdown(fence(c))
		}

		doc.rects[s.ID] = nav.Rect{Top: float64(top), Height: float64(len(lines) - top)}
		return renderErr == nil
	})
	if renderErr != nil {
		return nil, fmt.Errorf("rendering guide: %w", renderErr)
	}

	doc.content = strings.Join(lines, "\n")
	doc.lines = len(lines)
	return doc, nil
}

func fence(c guide.CodeSample) string {
	ticks := "```"
	for strings.Contains(c.Code, ticks) {
		ticks += "`"
	}
	return ticks + c.Language + "\n" + strings.TrimRight(c.Code, "\n") + "\n" + ticks + "\n"
}

// sampleInView returns the first code sample whose label line lies in
// [top, top+height).
func (d *document) sampleInView(top, height int) (int, bool) {
	for i, s := range d.samples {
		if s.Line >= top && s.Line < top+height {
			return i, true
		}
	}
	return 0, false
}
