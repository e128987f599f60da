package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// FallbackProvider tries primary first and, on any error other than
// cancellation or an empty answer, retries the same prompt on secondary.
type FallbackProvider struct {
	primary   LLMProvider
	secondary LLMProvider
	logger    *slog.Logger
}

// NewFallbackProvider returns a provider that falls back from primary to secondary.
func NewFallbackProvider(primary, secondary LLMProvider, logger *slog.Logger) *FallbackProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FallbackProvider{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := f.primary.Complete(ctx, prompt)
	if err == nil {
		return resp, nil
	}
	// An empty answer means primary was reachable; it is not a failure.
	if ctx.Err() != nil || errors.Is(err, ErrEmptyResponse) {
		return "", err
	}

	f.logger.Warn("direct provider failed, falling back to gateway", "error", err)
	resp, fbErr := f.secondary.Complete(ctx, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("fallback after %v: %w", err, fbErr)
	}
	return resp, nil
}
