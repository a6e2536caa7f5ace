package embeddings

import (
	"context"
	"fmt"
	"os"

	"github.com/ziadkadry99/hrdesk/internal/config"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model. The index
	// manifest records it so a query embedder can be matched to the index.
	Name() string
}

// New creates the embedder described by cfg.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("%s is not set", config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(cfg.Model), cfg.BaseURL, cfg.Dimensions), nil
	case config.ProviderOllama:
		dims := cfg.Dimensions
		if dims == 0 {
			dims = 768
		}
		return NewOllamaEmbedder(cfg.Model, dims, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
}
