package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chaspy/toeic-assessment-poc/internal/telemetry"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → rate limit → logging → base.
// The mock provider is returned bare so tests can script it.
func NewProvider(ctx context.Context, cfg Config, sink telemetry.Sink, logger *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, sink, logger)
	p = WithRateLimit(p, cfg.RateLimit)
	p = WithRetry(p, cfg.Retry, logger)
	p = WithTimeout(p, cfg.Timeout)
	return p, nil
}
