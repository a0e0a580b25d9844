package llm

import (
	"context"
	"sync"
)

// Client owns the single conversation handle for one reader. The session is
// created lazily on first use with the configured system prompt and
// temperature, then reused for every later turn until Reset.
//
// Construct one Client per conversation and pass it to whatever drives the
// chat; there is no package-level session.
type Client struct {
	provider Provider
	cfg      SessionConfig

	mu      sync.Mutex
	session Session
}

// NewClient returns a client that will open sessions on provider with cfg.
func NewClient(provider Provider, cfg SessionConfig) *Client {
	return &Client{provider: provider, cfg: cfg.withDefaults()}
}

// Config returns the session configuration.
func (c *Client) Config() SessionConfig { return c.cfg }

// Provider returns the provider the client opens sessions on.
func (c *Client) Provider() Provider { return c.provider }

// Session returns the cached conversation, creating it on first call.
// Concurrent first callers share a single creation. A failed creation is not
// cached, so the next call tries again.
func (c *Client) Session(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}
	s, err := c.provider.NewSession(ctx, c.cfg)
	if err != nil {
		if !IsRemoteServiceError(err) {
			err = &RemoteServiceError{Provider: c.provider.Name(), Op: "create chat", Err: err}
		}
		return nil, err
	}
	c.session = s
	return s, nil
}

// Started reports whether the conversation has been created.
func (c *Client) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Reset forgets the current conversation; the next send starts a new one.
func (c *Client) Reset() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// SendStreaming sends message on the conversation and streams the reply.
// Nothing touches the network until the returned Stream is ranged over.
// Every yielded error is a *RemoteServiceError, including a rate limit wait
// cut short by ctx and a send overlapping another on the same session.
func (c *Client) SendStreaming(ctx context.Context, message string) Stream {
	return once(func(yield func(string, error) bool) {
		s, err := c.Session(ctx)
		if err != nil {
			yield("", err)
			return
		}
		for fragment, err := range s.SendStreaming(ctx, message) {
			if err != nil && !IsRemoteServiceError(err) {
				err = &RemoteServiceError{Provider: c.provider.Name(), Op: "send message", Err: err}
			}
			if !yield(fragment, err) || err != nil {
				return
			}
		}
	})
}
