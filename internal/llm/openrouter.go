package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific defaults.
// OpenRouter exposes an OpenAI-compatible API, so the underlying SDK is reused.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Model ids are passed through as-is ("vendor/model").
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	if config.BaseURL == "" {
		config.BaseURL = defaultOpenRouterBaseURL
	}
	config.HTTPClient = &http.Client{Transport: attributionTransport{base: http.DefaultTransport}}

	return &OpenRouterProvider{OpenAIProvider: newOpenAIProviderRaw(config, cfg.Model, false)}, nil
}

// attributionTransport sets the headers OpenRouter uses to attribute
// traffic to an application.
type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", "https://github.com/abhisek/quizdeck")
	r.Header.Set("X-Title", "quizdeck")
	return t.base.RoundTrip(r)
}
