package site

import (
	"regexp"

	"github.com/ziadkadry99/cyanguide/internal/guide"
)

// NavItem is one entry of the sidebar navigation.
type NavItem struct {
	ID       string
	Title    string
	Depth    int
	Active   bool
	Children []*NavItem
}

var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// NavTitle is the sidebar label for a section. Nested entries drop a leading
// step number ("2. Foo" becomes "Foo"); top-level entries keep it.
func NavTitle(title string, depth int) string {
	if depth > 1 {
		return numberPrefix.ReplaceAllString(title, "")
	}
	return title
}

// BuildNav mirrors the guide tree as navigation entries, marking activeID.
func BuildNav(g *guide.Guide, activeID string) []*NavItem {
	var build func(secs []*guide.Section, depth int) []*NavItem
	build = func(secs []*guide.Section, depth int) []*NavItem {
		items := make([]*NavItem, 0, len(secs))
		for _, s := range secs {
			items = append(items, &NavItem{
				ID:       s.ID,
				Title:    NavTitle(s.Title, depth),
				Depth:    depth,
				Active:   s.ID == activeID,
				Children: build(s.Children, depth+1),
			})
		}
		return items
	}
	return build(g.Sections(), 1)
}
