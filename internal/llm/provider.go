package llm

import "context"

// Provider creates conversations against a hosted language-model service.
type Provider interface {
	// NewSession opens a stateful conversation configured with cfg.
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
	// Name returns the name of this provider.
	Name() string
}

// Session is a handle to one ongoing conversation. Prior turns are kept by
// the session (server-side where the API supports it), so each send carries
// the full context. At most one send may be in flight per session.
type Session interface {
	SendStreaming(ctx context.Context, message string) Stream
}
