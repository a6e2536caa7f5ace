package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/hrdesk/internal/config"
)

// NewProvider creates the generation provider described by cfg, wrapped in
// a rate limiter when cfg.RequestsPerMinute is positive.
func NewProvider(cfg config.GenerationConfig) (Provider, error) {
	var p Provider
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL)

	case config.ProviderOllama:
		p = NewOllamaProvider(cfg.BaseURL, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, cfg.RequestsPerMinute)
	}
	return p, nil
}
