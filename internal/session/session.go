// Package session keeps per-user state (API keys, the in-progress form and a
// pointer to the last result) in an injected key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/amishk599/verigen/internal/model"
)

// Storage keys. The names match what earlier browser builds wrote to local
// storage so imported state keeps working.
const (
	apiKeyPrefix    = "apiKey_"
	draftKey        = "verilogFormData"
	latestResultKey = "verilogResult"
)

// ErrBlankKey is returned when an API key is empty after trimming.
var ErrBlankKey = errors.New("api key is blank")

// Draft is the saved state of the generation form.
type Draft struct {
	Request     model.GenerationRequest `json:"request" yaml:"request"`
	Provider    string                  `json:"provider" yaml:"provider"`
	Model       string                  `json:"model" yaml:"model"`
	CustomModel string                  `json:"custom_model,omitempty" yaml:"custom_model,omitempty"`
}

// Target returns the provider/model selection stored in the draft.
func (d Draft) Target() model.Target {
	return model.Target{Provider: d.Provider, Model: d.Model, CustomModel: d.CustomModel}
}

// Session reads and writes user state through a KeyValueStore.
type Session struct {
	kv     model.KeyValueStore
	getenv func(string) string
}

// New returns a Session over kv. API key lookups fall back to the process
// environment.
func New(kv model.KeyValueStore) *Session {
	return &Session{kv: kv, getenv: os.Getenv}
}

// APIKey returns the key for provider. A stored key wins; otherwise
// VERIGEN_<PROVIDER>_API_KEY and then <PROVIDER>_API_KEY are consulted.
// ok is false when no key is found anywhere.
func (s *Session) APIKey(ctx context.Context, provider string) (string, bool, error) {
	v, ok, err := s.kv.Get(ctx, apiKeyPrefix+provider)
	if err != nil {
		return "", false, fmt.Errorf("read api key for %s: %w", provider, err)
	}
	if ok && strings.TrimSpace(v) != "" {
		return v, true, nil
	}

	upper := strings.ToUpper(provider)
	for _, name := range []string{"VERIGEN_" + upper + "_API_KEY", upper + "_API_KEY"} {
		if v := strings.TrimSpace(s.getenv(name)); v != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}

// SetAPIKey stores key for provider.
func (s *Session) SetAPIKey(ctx context.Context, provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankKey
	}
	if err := s.kv.Set(ctx, apiKeyPrefix+provider, key); err != nil {
		return fmt.Errorf("save api key for %s: %w", provider, err)
	}
	return nil
}

// DeleteAPIKey removes the stored key for provider. Environment keys are untouched.
func (s *Session) DeleteAPIKey(ctx context.Context, provider string) error {
	if err := s.kv.Delete(ctx, apiKeyPrefix+provider); err != nil {
		return fmt.Errorf("delete api key for %s: %w", provider, err)
	}
	return nil
}

// Providers lists the providers that have a stored key, sorted.
func (s *Session) Providers(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, apiKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, apiKeyPrefix))
	}
	sort.Strings(names)
	return names, nil
}

// SaveDraft stores the current form state.
func (s *Session) SaveDraft(ctx context.Context, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.kv.Set(ctx, draftKey, string(data)); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved form state. ok is false when nothing is saved.
func (s *Session) LoadDraft(ctx context.Context) (Draft, bool, error) {
	v, ok, err := s.kv.Get(ctx, draftKey)
	if err != nil {
		return Draft{}, false, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return Draft{}, false, nil
	}
	var d Draft
	if err := json.Unmarshal([]byte(v), &d); err != nil {
		return Draft{}, false, fmt.Errorf("decode draft: %w", err)
	}
	return d, true, nil
}

// ClearDraft forgets the saved form state.
func (s *Session) ClearDraft(ctx context.Context) error {
	if err := s.kv.Delete(ctx, draftKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// SetLatestResult records id as the result to show by default.
func (s *Session) SetLatestResult(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, latestResultKey, id); err != nil {
		return fmt.Errorf("save latest result: %w", err)
	}
	return nil
}

// LatestResultID returns the id recorded by SetLatestResult.
func (s *Session) LatestResultID(ctx context.Context) (string, bool, error) {
	v, ok, err := s.kv.Get(ctx, latestResultKey)
	if err != nil {
		return "", false, fmt.Errorf("read latest result: %w", err)
	}
	return v, ok && v != "", nil
}
