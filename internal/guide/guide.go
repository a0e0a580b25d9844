// Package guide holds the static content model of the build guide: a tree of
// sections with Markdown bodies and code samples. A Guide is immutable once
// loaded; every accessor returns data that callers must treat as read-only.
package guide

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

var (
	// ErrDuplicateID is returned when two sections share an anchor id.
	ErrDuplicateID = errors.New("guide: duplicate section id")
	// ErrNotFound is returned by lookups for an id that is not in the tree.
	ErrNotFound = errors.New("guide: section not found")
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Guide is a validated, indexed Document.
type Guide struct {
	doc     Document
	byID    map[string]*Section
	parents map[string]string
	order   []string
}

// Default returns the guide compiled into the binary.
func Default() (*Guide, error) {
	return Parse(defaultContent)
}

// LoadFile reads a guide document from a YAML file.
func LoadFile(path string) (*Guide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading guide %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("guide %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes and validates a YAML guide document.
func Parse(data []byte) (*Guide, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing guide: %w", err)
	}
	return New(doc)
}

// New validates doc and builds the id index.
func New(doc Document) (*Guide, error) {
	if len(doc.Sections) == 0 {
		return nil, errors.New("guide: no sections")
	}

	g := &Guide{
		doc:     doc,
		byID:    make(map[string]*Section),
		parents: make(map[string]string),
	}

	var walkErr error
	var index func(secs []*Section, parent string)
	index = func(secs []*Section, parent string) {
		for _, s := range secs {
			if walkErr != nil {
				return
			}
			if err := validateSection(s); err != nil {
				walkErr = err
				return
			}
			if _, dup := g.byID[s.ID]; dup {
				walkErr = fmt.Errorf("%w: %q", ErrDuplicateID, s.ID)
				return
			}
			g.byID[s.ID] = s
			g.parents[s.ID] = parent
			g.order = append(g.order, s.ID)
			index(s.Children, s.ID)
		}
	}
	index(doc.Sections, "")
	if walkErr != nil {
		return nil, walkErr
	}
	return g, nil
}

func validateSection(s *Section) error {
	if s == nil {
		return errors.New("guide: nil section")
	}
	if s.ID == "" {
		return fmt.Errorf("guide: section %q has no id", s.Title)
	}
	if !idPattern.MatchString(s.ID) {
		return fmt.Errorf("guide: invalid section id %q (lowercase letters, digits and dashes only)", s.ID)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("guide: section %q has no title", s.ID)
	}
	return nil
}

// Title is the guide's display name.
func (g *Guide) Title() string { return g.doc.Title }

// Footer is the closing line rendered under the last section.
func (g *Guide) Footer() string { return g.doc.Footer }

// Greeting is the assistant's opening message in the chat transcript.
func (g *Guide) Greeting() string { return g.doc.Greeting }

// SystemPrompt is the fixed instruction the chat session is created with.
func (g *Guide) SystemPrompt() string { return g.doc.SystemPrompt }

// Sections returns the top-level sections in document order.
func (g *Guide) Sections() []*Section { return g.doc.Sections }

// Walk visits every section in document (pre-)order. Top-level sections have
// depth 1. Returning false from fn skips that section's children.
func (g *Guide) Walk(fn func(s *Section, depth int) bool) {
	var visit func(secs []*Section, depth int)
	visit = func(secs []*Section, depth int) {
		for _, s := range secs {
			if fn(s, depth) {
				visit(s.Children, depth+1)
			}
		}
	}
	visit(g.doc.Sections, 1)
}

// Anchors returns every section id in document order.
func (g *Guide) Anchors() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Find returns the section with the given id.
func (g *Guide) Find(id string) (*Section, error) {
	s, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Has reports whether id names a section.
func (g *Guide) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Parent returns the id of the section's parent, or "" for top-level sections.
func (g *Guide) Parent(id string) string { return g.parents[id] }

// Path returns the slash-joined chain of ids from the root to id,
// e.g. "prerequisites/host-system".
func (g *Guide) Path(id string) string {
	if !g.Has(id) {
		return ""
	}
	parts := []string{id}
	for p := g.parents[id]; p != ""; p = g.parents[p] {
		parts = append([]string{p}, parts...)
	}
	return strings.Join(parts, "/")
}

// Depth returns the nesting depth of id (1 for top-level), or 0 if unknown.
func (g *Guide) Depth(id string) int {
	if !g.Has(id) {
		return 0
	}
	return strings.Count(g.Path(id), "/") + 1
}

// Match returns the sections whose path matches the doublestar glob pattern,
// in document order. "**" matches every section.
func (g *Guide) Match(pattern string) ([]*Section, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("guide: invalid pattern %q", pattern)
	}
	var out []*Section
	for _, id := range g.order {
		ok, err := doublestar.Match(pattern, g.Path(id))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, g.byID[id])
		}
	}
	return out, nil
}

// Outline renders the section tree as an indented plain-text list. Used as
// the assistant's reference to the guide and by the sections command.
func (g *Guide) Outline() string {
	var b strings.Builder
	g.Walk(func(s *Section, depth int) bool {
		fmt.Fprintf(&b, "%s- %s (#%s)\n", strings.Repeat("  ", depth-1), s.Title, s.ID)
		return true
	})
	return b.String()
}

// Context renders the full guide as Markdown: titles, bodies and code
// samples. It is appended to the system prompt so the assistant can refer to
// the steps the reader is looking at.
func (g *Guide) Context() string {
	var b strings.Builder
	g.Walk(func(s *Section, depth int) bool {
		fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", depth+1), s.Title)
		if body := strings.TrimSpace(s.Body); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
		for _, c := range s.CodeSamples {
			if c.Description != "" {
				fmt.Fprintf(&b, "%s:\n", c.Description)
			}
			fmt.Fprintf(&b, "```%s\n%s\n```\n\n", c.Language, strings.TrimRight(c.Code, "\n"))
		}
		return true
	})
	return b.String()
}
