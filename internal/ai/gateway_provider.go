package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amishk599/verigen/internal/model"
)

// DefaultGatewayURL is the hosted generation gateway that proxies every provider.
const DefaultGatewayURL = "https://fastwrite-api.onrender.com/generate"

// GatewayProvider sends prompts through the generation gateway, which forwards
// them to the named provider using the caller's API key.
type GatewayProvider struct {
	url        string
	provider   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewGatewayProvider creates a gateway client for provider/model.
func NewGatewayProvider(url, provider, model, apiKey string, httpClient *http.Client) *GatewayProvider {
	if url == "" {
		url = DefaultGatewayURL
	}
	return &GatewayProvider{
		url:        url,
		provider:   provider,
		model:      model,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// gatewayRequest is the gateway's request body. The repository fields are
// unused for code generation and always carry the literal "NULL".
type gatewayRequest struct {
	GithubURL   string `json:"github_url"`
	ZipFile     string `json:"zip_file"`
	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	APIKey      string `json:"api_key"`
	Prompt      string `json:"prompt"`
}

type gatewayResponse struct {
	TextContent   string `json:"text_content"`
	Documentation string `json:"documentation"`
}

// gatewayError covers both error shapes the gateway returns.
type gatewayError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Complete posts prompt to the gateway and returns the generated text.
func (p *GatewayProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(gatewayRequest{
		GithubURL:   "NULL",
		ZipFile:     "NULL",
		LLMProvider: p.provider,
		LLMModel:    p.model,
		APIKey:      p.apiKey,
		Prompt:      prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        p.statusError(resp.StatusCode, respBytes),
		}
	}

	var out gatewayResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("parse gateway response: %w", err)
	}

	switch {
	case out.TextContent != "":
		return out.TextContent, nil
	case out.Documentation != "":
		return out.Documentation, nil
	default:
		return "", ErrEmptyResponse
	}
}

// statusError turns a non-200 gateway reply into a message a user can act on.
func (p *GatewayProvider) statusError(status int, body []byte) error {
	var ge gatewayError
	_ = json.Unmarshal(body, &ge)
	msg := ge.Message
	if msg == "" {
		msg = ge.Error
	}

	switch status {
	case http.StatusTooManyRequests:
		return errors.New("rate limit exceeded, please try again later")
	case http.StatusBadRequest:
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "model"):
			return fmt.Errorf("invalid model %q for provider %q, please check the model name", p.model, p.provider)
		case strings.Contains(lower, "api key"), strings.Contains(lower, "authentication"):
			return fmt.Errorf("invalid API key for %s, please check your API key", p.provider)
		default:
			return fmt.Errorf("bad request (400): %s, please check your inputs", msg)
		}
	}

	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("gateway error: %s", msg)
}
