package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/progress"
)

// Generator exports the guide as a static site: index.html, the stylesheet,
// the page script and search-index.json.
type Generator struct {
	Guide     *guide.Guide
	OutputDir string
	Options   Options
	Reporter  progress.Reporter
}

// NewGenerator creates a Generator writing into outputDir.
func NewGenerator(g *guide.Guide, outputDir string, opts Options) *Generator {
	return &Generator{
		Guide:     g,
		OutputDir: outputDir,
		Options:   opts,
		Reporter:  progress.Nop{},
	}
}

// Generate writes the site. Returns the number of sections rendered.
func (g *Generator) Generate() (int, error) {
	anchors := g.Guide.Anchors()
	steps := len(anchors) + 1

	g.Reporter.Start(steps)
	defer g.Reporter.Finish()

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return 0, err
	}

	// Build and write search index.
	entries := BuildSearchIndex(g.Guide)
	if err := WriteSearchIndex(entries, filepath.Join(g.OutputDir, "search-index.json")); err != nil {
		return 0, fmt.Errorf("writing search index: %w", err)
	}
	for i, e := range entries {
		g.Reporter.Update(i+1, e.Title)
	}

	// Write static assets.
	if err := WriteAssets(g.OutputDir); err != nil {
		return 0, err
	}

	r, err := NewRenderer(g.Guide)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(filepath.Join(g.OutputDir, "index.html"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := r.Page(f, g.Options); err != nil {
		return 0, fmt.Errorf("rendering index.html: %w", err)
	}
	g.Reporter.Update(steps, "index.html")

	return len(anchors), nil
}

// WriteAssets writes style.css and script.js into dir.
func WriteAssets(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, "style.css"), []byte(cssContent), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "script.js"), []byte(jsContent), 0o644)
}

// CSS returns the page stylesheet.
func CSS() string { return cssContent }

// JS returns the page script.
func JS() string { return jsContent }
