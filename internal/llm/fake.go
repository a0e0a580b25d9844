package llm

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeProvider is a scripted, network-free Provider. Tests use it to drive
// streaming scenarios; the CLI exposes it as provider "fake" for demos.
type FakeProvider struct {
	// Script returns the fragments to stream for a message and an optional
	// error delivered after them. Nil means echo the message back.
	Script func(message string) ([]string, error)
	// OpenErr makes NewSession fail.
	OpenErr error
	// Delay is slept before each fragment.
	Delay time.Duration

	mu       sync.Mutex
	sessions []*FakeSession
}

// NewFakeProvider returns an echoing fake provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

// NewScriptedProvider streams the same fragments (and error) for every message.
func NewScriptedProvider(fragments []string, err error) *FakeProvider {
	return &FakeProvider{
		Script: func(string) ([]string, error) { return fragments, err },
	}
}

func (p *FakeProvider) Name() string { return "fake" }

func (p *FakeProvider) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	if p.OpenErr != nil {
		return nil, &RemoteServiceError{Provider: p.Name(), Op: "create chat", Err: p.OpenErr}
	}
	s := &FakeSession{provider: p, Config: cfg.withDefaults()}
	p.mu.Lock()
	p.sessions = append(p.sessions, s)
	p.mu.Unlock()
	return s, nil
}

// Sessions returns every session created so far.
func (p *FakeProvider) Sessions() []*FakeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*FakeSession, len(p.sessions))
	copy(out, p.sessions)
	return out
}

// FakeSession records the messages it was sent.
type FakeSession struct {
	Config SessionConfig

	provider *FakeProvider
	guard    busyGuard
	mu       sync.Mutex
	messages []string
}

// Messages returns every message sent on this session.
func (s *FakeSession) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *FakeSession) SendStreaming(ctx context.Context, message string) Stream {
	return once(func(yield func(string, error) bool) {
		if !s.guard.acquire() {
			yield("", ErrSessionBusy)
			return
		}
		defer s.guard.release()

		s.mu.Lock()
		s.messages = append(s.messages, message)
		s.mu.Unlock()

		fragments, err := s.script(message)
		for _, f := range fragments {
			if s.provider.Delay > 0 {
				select {
				case <-ctx.Done():
					yield("", &RemoteServiceError{Provider: "fake", Op: "stream", Err: ctx.Err()})
					return
				case <-time.After(s.provider.Delay):
				}
			}
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield("", &RemoteServiceError{Provider: "fake", Op: "stream", Err: err})
		}
	})
}

func (s *FakeSession) script(message string) ([]string, error) {
	if s.provider.Script != nil {
		return s.provider.Script(message)
	}
	words := strings.SplitAfter("You asked: "+message, " ")
	return words, nil
}
