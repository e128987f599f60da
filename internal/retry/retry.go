package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/model"
)

// RetryProvider is a decorator that retries transient failures with exponential
// backoff and jitter before giving up on the wrapped LLMProvider.
type RetryProvider struct {
	inner      ai.LLMProvider
	provider   string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryProvider wraps the LLMProvider for the named provider with retry logic.
// maxRetries is the number of additional attempts after the first failure (default: 2).
// baseDelay is the delay before the first retry (default: 2s), doubled on each subsequent retry.
func NewRetryProvider(inner ai.LLMProvider, provider string, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryProvider {
	return &RetryProvider{
		inner:      inner,
		provider:   provider,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Complete sends prompt, retrying on transient errors.
func (p *RetryProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.inner.Complete(ctx, prompt)
	if err == nil {
		return resp, nil
	}

	if !isRetryable(err) {
		return "", err
	}

	lastErr := err
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		// A generation has one deadline for all attempts. Waiting past it would
		// replace the provider's error with a timeout.
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= delay {
			p.logger.Warn("not retrying, delay exceeds generation deadline",
				"provider", p.provider,
				"delay", delay,
				"error", lastErr,
			)
			return "", lastErr
		}

		p.logger.Warn("retrying after transient error",
			"provider", p.provider,
			"attempt", attempt,
			"max_retries", p.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		resp, err = p.inner.Complete(ctx, prompt)
		if err == nil {
			return resp, nil
		}

		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (p *RetryProvider) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// An empty answer is a successful call; asking again rarely helps.
	if errors.Is(err, ai.ErrEmptyResponse) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 408: the provider gave up on a slow generation.
		if httpErr.StatusCode == 429 || httpErr.StatusCode == 408 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		// 4xx (not 429): bad key, bad model, bad input.
		return false
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}
