package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/verigen/internal/ai"
)

// ProviderRateLimiter enforces a minimum delay between requests to the same LLM provider.
type ProviderRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: provider name
	delayFor func(provider string) time.Duration
}

// NewProviderRateLimiter creates a rate limiter that enforces minDelay between
// consecutive requests to the same provider.
func NewProviderRateLimiter(minDelay time.Duration) *ProviderRateLimiter {
	return NewPerProviderRateLimiter(func(string) time.Duration { return minDelay })
}

// NewPerProviderRateLimiter creates a rate limiter whose delay is looked up
// per provider on every call.
func NewPerProviderRateLimiter(delayFor func(provider string) time.Duration) *ProviderRateLimiter {
	return &ProviderRateLimiter{
		lastCall: make(map[string]time.Time),
		delayFor: delayFor,
	}
}

// Wait blocks until enough time has passed since the last request to provider.
// Returns an error if the context is cancelled while waiting.
func (r *ProviderRateLimiter) Wait(ctx context.Context, provider string) error {
	r.mu.Lock()
	last, ok := r.lastCall[provider]
	now := time.Now()
	minDelay := r.delayFor(provider)

	if !ok || now.Sub(last) >= minDelay {
		r.lastCall[provider] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot before releasing the lock so concurrent callers queue
	// behind each other instead of all waking at once.
	next := last.Add(minDelay)
	r.lastCall[provider] = next
	r.mu.Unlock()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		// Give the slot back unless a later caller has already queued behind it.
		r.mu.Lock()
		if r.lastCall[provider].Equal(next) {
			r.lastCall[provider] = last
		}
		r.mu.Unlock()
		return fmt.Errorf("rate limiter wait for %s: %w", provider, ctx.Err())
	case <-timer.C:
	}
	return nil
}

// RateLimitedProvider is a decorator that enforces provider-level rate limiting
// before delegating to the wrapped LLMProvider.
type RateLimitedProvider struct {
	inner    ai.LLMProvider
	limiter  *ProviderRateLimiter
	provider string
}

// NewRateLimitedProvider wraps an LLMProvider with provider-level rate limiting.
// All wrappers targeting the same provider should share the same limiter instance.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *ProviderRateLimiter, provider string) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:    inner,
		limiter:  limiter,
		provider: provider,
	}
}

// Complete waits for the rate limiter to allow a request, then delegates.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx, p.provider); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt)
}
