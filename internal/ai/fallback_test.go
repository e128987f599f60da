package ai

import (
	"context"
	"errors"
	"testing"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response string
	err      error
	calls    int
}

func (m *mockProvider) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.response, m.err
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := &mockProvider{response: "direct"}
	secondary := &mockProvider{response: "gateway"}

	got, err := NewFallbackProvider(primary, secondary, nil).Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "direct" {
		t.Errorf("got %q, want direct", got)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestFallback_PrimaryFails(t *testing.T) {
	primary := &mockProvider{err: errors.New("connection refused")}
	secondary := &mockProvider{response: "gateway"}

	got, err := NewFallbackProvider(primary, secondary, nil).Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "gateway" {
		t.Errorf("got %q, want gateway", got)
	}
}

func TestFallback_BothFail(t *testing.T) {
	primary := &mockProvider{err: errors.New("boom")}
	secondary := &mockProvider{err: ErrEmptyResponse}

	_, err := NewFallbackProvider(primary, secondary, nil).Complete(context.Background(), "p")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want wrapped ErrEmptyResponse", err)
	}
}

func TestFallback_CancelledContextSkipsSecondary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &mockProvider{err: context.Canceled}
	secondary := &mockProvider{response: "gateway"}

	_, err := NewFallbackProvider(primary, secondary, nil).Complete(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestFallback_EmptyPrimaryAnswerSkipsSecondary(t *testing.T) {
	primary := &mockProvider{err: ErrEmptyResponse}
	secondary := &mockProvider{response: "gateway"}

	_, err := NewFallbackProvider(primary, secondary, nil).Complete(context.Background(), "p")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestReplayProvider(t *testing.T) {
	got, err := NewReplayProvider("saved reply").Complete(context.Background(), "ignored")
	if err != nil || got != "saved reply" {
		t.Errorf("Complete() = %q, %v", got, err)
	}
}
