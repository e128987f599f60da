package ai

import (
	"context"
	"errors"
)

// LLMProvider sends a prompt to an LLM and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when a provider answers successfully but with
// no generated content.
var ErrEmptyResponse = errors.New("provider returned no content")

// Options are the sampling settings sent with every completion.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions favours deterministic, long-form code output.
func DefaultOptions() Options {
	return Options{Temperature: 0.1, MaxTokens: 4000}
}
