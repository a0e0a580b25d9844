package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a Provider with a token bucket shared by every
// session it creates. Each send consumes one token; opening a session is free
// since no provider makes a request for it.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute. rpm <= 0 disables limiting.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	s, err := r.provider.NewSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &rateLimitedSession{session: s, limiter: r.limiter}, nil
}

type rateLimitedSession struct {
	session Session
	limiter *rate.Limiter
}

func (s *rateLimitedSession) SendStreaming(ctx context.Context, message string) Stream {
	return once(func(yield func(string, error) bool) {
		if err := s.limiter.Wait(ctx); err != nil {
			yield("", err)
			return
		}
		for fragment, err := range s.session.SendStreaming(ctx, message) {
			if !yield(fragment, err) || err != nil {
				return
			}
		}
	})
}
