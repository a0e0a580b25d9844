package guide

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultGuideLoads(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if g.Title() != "Cyan Builder Guide" {
		t.Errorf("title = %q", g.Title())
	}
	if !strings.Contains(g.SystemPrompt(), "board name: 'cyan'") {
		t.Error("system prompt should mention the cyan board")
	}
	if g.Greeting() == "" {
		t.Error("greeting should not be empty")
	}

	anchors := g.Anchors()
	if anchors[0] != "overview" {
		t.Errorf("first anchor = %q, want overview", anchors[0])
	}
	for _, id := range []string{"host-system", "dependencies", "manual-config", "common-tweaks", "write-protection", "dev-mode", "firmware", "gemini-integration", "android-arc"} {
		if !g.Has(id) {
			t.Errorf("missing subsection %q", id)
		}
	}
}

func TestAnchorsAreDocumentOrder(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	anchors := g.Anchors()
	pos := make(map[string]int)
	for i, a := range anchors {
		pos[a] = i
	}
	if !(pos["prerequisites"] < pos["host-system"] && pos["host-system"] < pos["dependencies"] && pos["dependencies"] < pos["env-setup"]) {
		t.Errorf("subsections should follow their parent: %v", anchors[:6])
	}
}

func TestPathAndDepth(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id    string
		path  string
		depth int
	}{
		{"overview", "overview", 1},
		{"host-system", "prerequisites/host-system", 2},
		{"firmware", "device-prep/firmware", 2},
		{"missing", "", 0},
	}
	for _, tt := range tests {
		if got := g.Path(tt.id); got != tt.path {
			t.Errorf("Path(%q) = %q, want %q", tt.id, got, tt.path)
		}
		if got := g.Depth(tt.id); got != tt.depth {
			t.Errorf("Depth(%q) = %d, want %d", tt.id, got, tt.depth)
		}
	}
}

func TestFind(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	s, err := g.Find("compilation")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(s.CodeSamples) != 1 || !strings.Contains(s.CodeSamples[0].Code, "build_packages") {
		t.Errorf("unexpected compilation samples: %+v", s.CodeSamples)
	}

	if _, err := g.Find("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		pattern string
		want    []string
	}{
		{"device-prep/*", []string{"write-protection", "dev-mode", "firmware"}},
		{"kernel-build", []string{"kernel-build"}},
		{"*/android-*", []string{"android-arc"}},
	}
	for _, tt := range tests {
		got, err := g.Match(tt.pattern)
		if err != nil {
			t.Fatalf("Match(%q): %v", tt.pattern, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Match(%q) = %d sections, want %d", tt.pattern, len(got), len(tt.want))
		}
		for i, s := range got {
			if s.ID != tt.want[i] {
				t.Errorf("Match(%q)[%d] = %q, want %q", tt.pattern, i, s.ID, tt.want[i])
			}
		}
	}

	all, err := g.Match("**")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(g.Anchors()) {
		t.Errorf("** matched %d, want %d", len(all), len(g.Anchors()))
	}

	if _, err := g.Match("[unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestWalkDepthAndSkip(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	var visited []string
	g.Walk(func(s *Section, depth int) bool {
		visited = append(visited, s.ID)
		if s.ID == "kernel-build" && depth != 1 {
			t.Errorf("kernel-build depth = %d", depth)
		}
		if s.ID == "manual-config" && depth != 2 {
			t.Errorf("manual-config depth = %d", depth)
		}
		return s.ID != "prerequisites"
	})
	for _, id := range visited {
		if id == "host-system" {
			t.Error("children of prerequisites should have been skipped")
		}
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	doc := `
sections:
  - id: a
    title: A
    children:
      - id: b
        title: B
  - id: b
    title: Another B
`
	_, err := Parse([]byte(doc))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "title: x\n"},
		{"missing id", "sections:\n  - title: A\n"},
		{"bad id", "sections:\n  - id: Has Space\n    title: A\n"},
		{"missing title", "sections:\n  - id: a\n"},
		{"bad yaml", "sections: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.yaml")
	doc := "title: Mini\nsections:\n  - id: only\n    title: Only\n    body: hello\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if g.Title() != "Mini" || len(g.Anchors()) != 1 {
		t.Errorf("unexpected guide: %q %v", g.Title(), g.Anchors())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOutlineAndContext(t *testing.T) {
	g, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	outline := g.Outline()
	if !strings.Contains(outline, "- Overview (#overview)") {
		t.Errorf("outline missing overview:\n%s", outline)
	}
	if !strings.Contains(outline, "  - Host System (#host-system)") {
		t.Errorf("outline should indent subsections:\n%s", outline)
	}

	ctx := g.Context()
	if !strings.Contains(ctx, "## 4. Compilation") {
		t.Error("context should use h2 for top-level sections")
	}
	if !strings.Contains(ctx, "### Host System") {
		t.Error("context should use h3 for subsections")
	}
	if !strings.Contains(ctx, "```bash\n./build_packages --board=cyan --usepkg --withdev\n```") {
		t.Error("context should include code samples")
	}
}

func TestCodeSampleLabel(t *testing.T) {
	if got := (CodeSample{Language: "bash"}).Label(); got != "bash" {
		t.Errorf("Label = %q", got)
	}
	if got := (CodeSample{Language: "bash", Description: "Build"}).Label(); got != "Build" {
		t.Errorf("Label = %q", got)
	}
}
