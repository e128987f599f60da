package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/model"
)

// ProviderConfig controls how NewProvider routes a target.
type ProviderConfig struct {
	// GatewayURL is the generation gateway. Empty disables the gateway and
	// every provider is called directly.
	GatewayURL string
	// Direct lists providers that are called directly first, with the gateway
	// as fallback.
	Direct []string
	// BaseURLs overrides catalog base URLs for OpenAI-compatible providers.
	BaseURLs map[string]string
	Options  Options
}

func (c ProviderConfig) isDirect(provider string) bool {
	for _, d := range c.Direct {
		if d == provider {
			return true
		}
	}
	return false
}

// NewProvider builds the LLMProvider for target.
//
// Providers listed in cfg.Direct are called directly and fall back to the
// gateway; all other providers go through the gateway only. With no gateway
// configured every provider is called directly.
func NewProvider(ctx context.Context, target model.Target, apiKey string, cfg ProviderConfig, httpClient *http.Client, logger *slog.Logger) (LLMProvider, error) {
	if _, ok := catalog.LookupProvider(target.Provider); !ok {
		return nil, fmt.Errorf("unknown provider %q", target.Provider)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	modelName := target.ModelName()

	if cfg.GatewayURL == "" {
		return newDirectProvider(ctx, target.Provider, modelName, apiKey, cfg, httpClient)
	}

	gateway := NewGatewayProvider(cfg.GatewayURL, target.Provider, modelName, apiKey, httpClient)
	if !cfg.isDirect(target.Provider) {
		return gateway, nil
	}

	direct, err := newDirectProvider(ctx, target.Provider, modelName, apiKey, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	return NewFallbackProvider(direct, gateway, logger), nil
}

func newDirectProvider(ctx context.Context, provider, modelName, apiKey string, cfg ProviderConfig, httpClient *http.Client) (LLMProvider, error) {
	if provider == catalog.ProviderGoogle {
		return NewGeminiProvider(ctx, apiKey, modelName, cfg.Options, httpClient)
	}

	baseURL := cfg.BaseURLs[provider]
	if baseURL == "" {
		p, _ := catalog.LookupProvider(provider)
		baseURL = p.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no base URL for provider %q", provider)
	}
	return NewOpenAIProvider(provider, baseURL, apiKey, modelName, cfg.Options, httpClient), nil
}
