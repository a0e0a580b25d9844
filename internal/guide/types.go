package guide

// CodeSample is a single copyable code snippet attached to a section.
type CodeSample struct {
	Language    string `yaml:"language" json:"language"`
	Code        string `yaml:"code" json:"code"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Label is the header text shown above a code sample: its description, or
// the language when no description is set.
func (c CodeSample) Label() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Language
}

// Section is one node of the guide outline. The ID doubles as the document
// anchor and navigation key, so it must be unique across the whole tree.
type Section struct {
	ID          string       `yaml:"id" json:"id"`
	Title       string       `yaml:"title" json:"title"`
	Body        string       `yaml:"body" json:"body"` // Markdown.
	CodeSamples []CodeSample `yaml:"code_samples,omitempty" json:"code_samples,omitempty"`
	Children    []*Section   `yaml:"children,omitempty" json:"children,omitempty"`
}

// Document is the whole authored guide: its sections plus the page-level
// strings the renderer and the chat assistant need.
type Document struct {
	Title        string     `yaml:"title" json:"title"`
	Footer       string     `yaml:"footer" json:"footer"`
	Greeting     string     `yaml:"greeting" json:"greeting"`
	SystemPrompt string     `yaml:"system_prompt" json:"system_prompt"`
	Sections     []*Section `yaml:"sections" json:"sections"`
}
