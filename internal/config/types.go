package config

// ProviderType identifies an embedding or generation provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// IndexBackend identifies the vector index implementation.
type IndexBackend string

const (
	BackendChromem  IndexBackend = "chromem"
	BackendPgvector IndexBackend = "pgvector"
)

// GateMode controls how the retrieval confidence gate judges a result set.
type GateMode string

const (
	// GateAny keeps the set when at least one chunk meets the threshold.
	GateAny GateMode = "any"
	// GateAll keeps the set only when every chunk meets the threshold.
	GateAll GateMode = "all"
)

// Config is the top-level hrdesk configuration, corresponding to .hrdesk.yml.
type Config struct {
	Index      IndexConfig      `yaml:"index" koanf:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding" koanf:"embedding"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Domain     DomainConfig     `yaml:"domain" koanf:"domain"`
	Ingest     IngestConfig     `yaml:"ingest" koanf:"ingest"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Ledger     LedgerConfig     `yaml:"ledger" koanf:"ledger"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// IndexConfig locates the pre-built vector index.
type IndexConfig struct {
	Backend    IndexBackend `yaml:"backend" koanf:"backend"`
	Dir        string       `yaml:"dir" koanf:"dir"`
	Collection string       `yaml:"collection" koanf:"collection"`
	// PostgresURLEnv names the environment variable holding the pgvector DSN.
	PostgresURLEnv string `yaml:"postgres_url_env" koanf:"postgres_url_env"`
	Table          string `yaml:"table" koanf:"table"`
}

// EmbeddingConfig selects the embedding model. It must match the model the
// index was built with.
type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	BaseURL    string       `yaml:"base_url" koanf:"base_url"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
}

// RetrievalConfig holds the retriever and context assembler settings.
type RetrievalConfig struct {
	K             int      `yaml:"k" koanf:"k"`
	Threshold     float64  `yaml:"threshold" koanf:"threshold"`
	Gate          GateMode `yaml:"gate" koanf:"gate"`
	ContextBudget int      `yaml:"context_budget" koanf:"context_budget"`
}

// GenerationConfig selects the completion model.
type GenerationConfig struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	BaseURL           string       `yaml:"base_url" koanf:"base_url"`
	TimeoutSecs       int          `yaml:"timeout_secs" koanf:"timeout_secs"`
	MaxTokens         int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature       float64      `yaml:"temperature" koanf:"temperature"`
	RequestsPerMinute int          `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// DomainConfig holds the admission keywords and the fixed user-facing texts.
type DomainConfig struct {
	Keywords       []string `yaml:"keywords" koanf:"keywords"`
	SystemPrompt   string   `yaml:"system_prompt" koanf:"system_prompt"`
	RefusalMessage string   `yaml:"refusal_message" koanf:"refusal_message"`
	ErrorMessage   string   `yaml:"error_message" koanf:"error_message"`
}

// IngestConfig controls the offline index builder.
type IngestConfig struct {
	SourceDir    string   `yaml:"source_dir" koanf:"source_dir"`
	Include      []string `yaml:"include" koanf:"include"`
	Exclude      []string `yaml:"exclude" koanf:"exclude"`
	ChunkSize    int      `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap" koanf:"chunk_overlap"`
}

// ServerConfig holds HTTP adapter settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LedgerConfig enables the SQLite outcome ledger when Path is set.
type LedgerConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
