package llm

import "iter"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    Role
	Content string
}

// DefaultModel and DefaultTemperature match the hosted assistant the guide
// was written against: a fast model with low randomness for factual,
// technical answers.
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.3
)

// SessionConfig configures a conversation when it is created. It is fixed for
// the lifetime of the session.
type SessionConfig struct {
	Model        string
	SystemPrompt string
	Temperature  float32
}

// withDefaults fills in the model when none was configured.
func (c SessionConfig) withDefaults() SessionConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return c
}

// Stream is a lazy, finite sequence of reply fragments. Concatenating every
// fragment yields the full reply. A failure is delivered as the final pair
// with a non-nil error. Streams can be ranged over only once.
type Stream = iter.Seq2[string, error]
