package catalog

import "github.com/amishk599/verigen/internal/model"

// Provider names.
const (
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
)

// Model is one selectable model of a provider.
type Model struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Provider describes an LLM vendor the generator can talk to.
type Provider struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	KeyURL      string  `json:"key_url"`  // where users create an API key
	BaseURL     string  `json:"base_url"` // OpenAI-compatible endpoint; empty for google
	Models      []Model `json:"models"`
}

// Providers is the provider/model table in menu order. The first model of
// each provider is its default.
var Providers = []Provider{
	{
		Name:        ProviderOpenAI,
		DisplayName: "OpenAI",
		KeyURL:      "https://platform.openai.com/api-keys",
		BaseURL:     "https://api.openai.com/v1",
		Models: []Model{
			{ID: "gpt-4o", DisplayName: "GPT-4o"},
			{ID: "gpt-4o-mini", DisplayName: "GPT-4o Mini"},
			{ID: "gpt-4-turbo", DisplayName: "GPT-4 Turbo"},
		},
	},
	{
		Name:        ProviderGoogle,
		DisplayName: "Google",
		KeyURL:      "https://aistudio.google.com/app/apikey",
		Models: []Model{
			{ID: "gemini-2.0-flash", DisplayName: "Gemini 2.0 Flash"},
			{ID: "gemini-2.5-pro-preview-03-25", DisplayName: "Gemini 2.5 Pro Preview"},
			{ID: "gemini-2.0-flash-thinking-exp-01-21", DisplayName: "Gemini 2.0 Flash Thinking"},
			{ID: "gemma-3-27b-it", DisplayName: "Gemma 3 (27B)"},
		},
	},
	{
		Name:        ProviderGroq,
		DisplayName: "Groq",
		KeyURL:      "https://console.groq.com/keys",
		BaseURL:     "https://api.groq.com/openai/v1",
		Models: []Model{
			{ID: "llama3-8b-8192", DisplayName: "Llama 3 (8B) - 8K Context"},
			{ID: "llama3-70b-8192", DisplayName: "Llama 3 (70B) - 8K Context"},
			{ID: "mixtral-8x7b-32768", DisplayName: "Mixtral 8x7B - 32K Context"},
		},
	},
	{
		Name:        ProviderOpenRouter,
		DisplayName: "OpenRouter",
		KeyURL:      "https://openrouter.ai/settings/keys",
		BaseURL:     "https://openrouter.ai/api/v1",
		Models: []Model{
			{ID: "openrouter/optimus-alpha", DisplayName: "Optimus Alpha"},
			{ID: "meta-llama/llama-4-maverick:free", DisplayName: "Llama 4 Maverick"},
			{ID: "deepseek/deepseek-chat-v3-0324:free", DisplayName: "DeepSeek Chat v3"},
		},
	},
}

// LookupProvider returns the provider with the given name.
func LookupProvider(name string) (Provider, bool) {
	for _, p := range Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// HasModel reports whether id is listed for the provider or is the custom pseudo-model.
func (p Provider) HasModel(id string) bool {
	if id == model.CustomModelID {
		return true
	}
	for _, m := range p.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DefaultModel returns the first listed model id.
func (p Provider) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0].ID
}

// ModelDisplayName returns the friendly name for a model id, or the id itself.
func ModelDisplayName(id string) string {
	for _, p := range Providers {
		for _, m := range p.Models {
			if m.ID == id {
				return m.DisplayName
			}
		}
	}
	return id
}
