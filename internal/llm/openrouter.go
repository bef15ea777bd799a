package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterTitle   = "toeic-assessment"
)

// OpenRouterProvider sends requests through OpenRouter's OpenAI-compatible
// API. Model IDs such as "google/gemini-2.0-flash-exp" are passed through.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider builds the provider and tags every request with
// the app attribution headers OpenRouter uses for its rankings.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}, openRouterHeaders(cfg))
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

func openRouterHeaders(cfg OpenRouterConfig) http.Header {
	h := http.Header{}
	title := cfg.AppTitle
	if title == "" {
		title = defaultOpenRouterTitle
	}
	h.Set("X-Title", title)
	if cfg.AppURL != "" {
		h.Set("HTTP-Referer", cfg.AppURL)
	}
	return h
}
