package ai

import (
	"context"
	"testing"

	"github.com/amishk599/verigen/internal/model"
)

func TestNewProvider_Routing(t *testing.T) {
	gw := ProviderConfig{GatewayURL: "http://gateway.test/generate", Direct: []string{"groq"}, Options: DefaultOptions()}

	tests := []struct {
		name   string
		target model.Target
		cfg    ProviderConfig
		check  func(t *testing.T, p LLMProvider)
	}{
		{
			name:   "gateway only",
			target: model.Target{Provider: "openai", Model: "gpt-4o"},
			cfg:    gw,
			check: func(t *testing.T, p LLMProvider) {
				g, ok := p.(*GatewayProvider)
				if !ok {
					t.Fatalf("got %T, want *GatewayProvider", p)
				}
				if g.model != "gpt-4o" || g.provider != "openai" {
					t.Errorf("gateway target = %s/%s", g.provider, g.model)
				}
			},
		},
		{
			name:   "direct with gateway fallback",
			target: model.Target{Provider: "groq", Model: "llama-3.3-70b-versatile"},
			cfg:    gw,
			check: func(t *testing.T, p LLMProvider) {
				f, ok := p.(*FallbackProvider)
				if !ok {
					t.Fatalf("got %T, want *FallbackProvider", p)
				}
				direct, ok := f.primary.(*OpenAIProvider)
				if !ok {
					t.Fatalf("primary = %T, want *OpenAIProvider", f.primary)
				}
				if direct.baseURL != "https://api.groq.com/openai/v1" {
					t.Errorf("baseURL = %q", direct.baseURL)
				}
				if _, ok := f.secondary.(*GatewayProvider); !ok {
					t.Errorf("secondary = %T, want *GatewayProvider", f.secondary)
				}
			},
		},
		{
			name:   "no gateway uses direct with base url override",
			target: model.Target{Provider: "openrouter", Model: model.CustomModelID, CustomModel: "meta/llama-4"},
			cfg:    ProviderConfig{BaseURLs: map[string]string{"openrouter": "http://proxy.test/v1"}},
			check: func(t *testing.T, p LLMProvider) {
				direct, ok := p.(*OpenAIProvider)
				if !ok {
					t.Fatalf("got %T, want *OpenAIProvider", p)
				}
				if direct.baseURL != "http://proxy.test/v1" {
					t.Errorf("baseURL = %q", direct.baseURL)
				}
				if direct.model != "meta/llama-4" {
					t.Errorf("model = %q, want custom model name", direct.model)
				}
			},
		},
		{
			name:   "google goes through genai",
			target: model.Target{Provider: "google", Model: "gemini-2.0-flash"},
			cfg:    ProviderConfig{Direct: []string{"google"}, Options: DefaultOptions()},
			check: func(t *testing.T, p LLMProvider) {
				if _, ok := p.(*GeminiProvider); !ok {
					t.Fatalf("got %T, want *GeminiProvider", p)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.target, "key", tt.cfg, nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), model.Target{Provider: "acme", Model: "x"}, "key", ProviderConfig{}, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
