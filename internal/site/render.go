package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/cyanguide/internal/chat"
	"github.com/ziadkadry99/cyanguide/internal/clipboard"
	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/nav"
)

// Options controls the page chrome around the guide.
type Options struct {
	// ChatEndpoint is the URL the assistant posts to. Empty hides the widget.
	ChatEndpoint string
	// SearchEndpoint is queried as ?q=...; empty falls back to search-index.json.
	SearchEndpoint string
	// BasePath prefixes asset URLs.
	BasePath string
	// Version is shown in the sidebar footer.
	Version string
}

// Renderer turns a guide into a single HTML page.
type Renderer struct {
	guide *guide.Guide
	md    goldmark.Markdown
	tmpl  *template.Template
}

// pageData holds the data passed to the page template.
type pageData struct {
	Title          string
	Brand          string
	Footer         string
	Greeting       string
	ErrorText      string
	Version        string
	BasePath       string
	ChatEndpoint   string
	SearchEndpoint string
	Offset         int
	RootMargin     string
	CopyWindowMS   int64
	Nav            []*NavItem
	Sections       []*sectionView
}

type sectionView struct {
	ID       string
	Title    string
	Depth    int
	Body     template.HTML
	Code     []codeView
	Children []*sectionView
}

type codeView struct {
	Label       string
	Code        string
	Highlighted template.HTML
}

// NewRenderer parses the page template and prepares a goldmark converter
// with GFM and syntax highlighting.
func NewRenderer(g *guide.Guide) (*Renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &Renderer{guide: g, md: md, tmpl: tmpl}, nil
}

// Page writes the full guide page to w.
func (r *Renderer) Page(w io.Writer, opts Options) error {
	sections, err := r.sections(r.guide.Sections(), 1)
	if err != nil {
		return err
	}

	var first string
	if anchors := r.guide.Anchors(); len(anchors) > 0 {
		first = anchors[0]
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	data := pageData{
		Title:          r.guide.Title(),
		Brand:          strings.TrimSuffix(r.guide.Title(), " Guide"),
		Footer:         r.guide.Footer(),
		Greeting:       r.guide.Greeting(),
		ErrorText:      chat.ErrorText,
		Version:        version,
		BasePath:       opts.BasePath,
		ChatEndpoint:   opts.ChatEndpoint,
		SearchEndpoint: opts.SearchEndpoint,
		Offset:         nav.DefaultOffset,
		RootMargin:     rootMargin(nav.DefaultMargin),
		CopyWindowMS:   clipboard.DefaultWindow.Milliseconds(),
		Nav:            BuildNav(r.guide, first),
		Sections:       sections,
	}
	return r.tmpl.Execute(w, data)
}

// Markdown converts Markdown source to HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// sections renders a level of the tree; depth drives heading level and
// indentation classes.
func (r *Renderer) sections(secs []*guide.Section, depth int) ([]*sectionView, error) {
	views := make([]*sectionView, 0, len(secs))
	for _, s := range secs {
		body, err := r.Markdown(s.Body)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.ID, err)
		}
		v := &sectionView{ID: s.ID, Title: s.Title, Depth: depth, Body: body}
		for _, c := range s.CodeSamples {
			hl, err := r.Markdown(fence(c))
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", s.ID, err)
			}
			v.Code = append(v.Code, codeView{Label: c.Label(), Code: c.Code, Highlighted: hl})
		}
		if v.Children, err = r.sections(s.Children, depth+1); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// fence wraps a code sample in a Markdown fence long enough that backticks
// inside the code cannot close it.
func fence(c guide.CodeSample) string {
	ticks := "```"
	for strings.Contains(c.Code, ticks) {
		ticks += "`"
	}
	return ticks + c.Language + "\n" + strings.TrimRight(c.Code, "\n") + "\n" + ticks + "\n"
}

// rootMargin formats m as an IntersectionObserver rootMargin.
func rootMargin(m nav.Margin) string {
	pct := func(f float64) float64 { return math.Round(f*1000) / 10 }
	return fmt.Sprintf("-%g%% 0px -%g%% 0px", pct(m.Top), pct(m.Bottom))
}
