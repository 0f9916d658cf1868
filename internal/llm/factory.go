package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/quizdeck/internal/cache"
	"github.com/abhisek/quizdeck/internal/store"
)

// Options carries the optional collaborators of NewProvider.
type Options struct {
	// EventRepo records every request. Nil skips persistence.
	EventRepo store.EventRepo

	// Cache serves repeated requests. Nil disables response caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// NewProvider creates a Provider from configuration, wrapped as
// caller -> retry -> logging -> cache -> base, so cache hits are still
// recorded in the event log.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "ollama":
		base, err = NewOllamaProvider(cfg.Ollama)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if opts.Cache != nil {
		p = WithCache(p, opts.Cache, opts.CacheTTL)
	}
	p = WithLogging(p, cfg.Provider, opts.EventRepo)
	return WithRetry(p, cfg.Retry), nil
}
