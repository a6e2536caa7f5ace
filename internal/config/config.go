package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides. Nested keys are
// separated by a double underscore: HRDESK_RETRIEVAL__K -> retrieval.k.
const EnvPrefix = "HRDESK_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (HRDESK_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Domain.Keywords = normalizeKeywords(cfg.Domain.Keywords)
	return cfg, nil
}

// envKey maps HRDESK_GENERATION__TIMEOUT_SECS to generation.timeout_secs.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

var validBackends = map[IndexBackend]bool{
	BackendChromem:  true,
	BackendPgvector: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validBackends[c.Index.Backend] {
		return fmt.Errorf("invalid index.backend %q: must be one of chromem, pgvector", c.Index.Backend)
	}
	if c.Index.Backend == BackendChromem && c.Index.Dir == "" {
		return fmt.Errorf("index.dir is required")
	}
	if c.Index.Backend == BackendPgvector && c.Index.Table == "" {
		return fmt.Errorf("index.table is required for the pgvector backend")
	}

	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of openai, ollama", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}

	if c.Retrieval.K < 1 {
		return fmt.Errorf("retrieval.k must be at least 1")
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		return fmt.Errorf("retrieval.threshold must be within [-1, 1], got %v", c.Retrieval.Threshold)
	}
	if c.Retrieval.Gate != GateAny && c.Retrieval.Gate != GateAll {
		return fmt.Errorf("invalid retrieval.gate %q: must be one of any, all", c.Retrieval.Gate)
	}
	if c.Retrieval.ContextBudget <= 0 {
		return fmt.Errorf("retrieval.context_budget must be positive")
	}

	if !validProviders[c.Generation.Provider] {
		return fmt.Errorf("invalid generation.provider %q: must be one of openai, ollama", c.Generation.Provider)
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.Generation.TimeoutSecs < 0 {
		return fmt.Errorf("generation.timeout_secs must be non-negative")
	}
	if c.Generation.RequestsPerMinute < 0 {
		return fmt.Errorf("generation.requests_per_minute must be non-negative")
	}

	if len(normalizeKeywords(c.Domain.Keywords)) == 0 {
		return fmt.Errorf("domain.keywords must contain at least one keyword")
	}
	if c.Domain.RefusalMessage == "" || c.Domain.ErrorMessage == "" {
		return fmt.Errorf("domain.refusal_message and domain.error_message are required")
	}
	if c.Domain.RefusalMessage == c.Domain.ErrorMessage {
		return fmt.Errorf("domain.error_message must differ from domain.refusal_message")
	}

	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive")
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be within [0, chunk_size)")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// normalizeKeywords lower-cases and trims keywords, dropping empty entries.
func normalizeKeywords(in []string) []string {
	var out []string
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
