package config

// DefaultKeywords is the HR keyword set used by the admission filter.
var DefaultKeywords = []string{
	"rh", "ressources humaines", "télétravail", "congé", "conges",
	"absence", "salaire", "contrat", "formation", "recrutement",
	"onboarding", "employé", "collaborateur", "procédure", "politique",
}

// DefaultRefusal is returned for rejected questions and for questions the
// documents cannot answer.
const DefaultRefusal = "Je ne peux répondre qu’aux questions liées aux documents internes RH."

// DefaultErrorMessage is returned when retrieval or generation infrastructure fails.
const DefaultErrorMessage = "Une erreur interne est survenue. Merci de réessayer plus tard."

// DefaultSystemPrompt constrains the model to the retrieved HR documents.
const DefaultSystemPrompt = `Tu es un assistant RH interne.
Tu dois répondre uniquement à partir des documents fournis.
Si la question n'est pas liée aux documents RH ou à la politique interne,
réponds exactement :
"` + DefaultRefusal + `"`

// DefaultExcludes are glob patterns skipped by the index builder.
var DefaultExcludes = []string{
	".git/**",
	"**/.DS_Store",
	"**/~$*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Backend:        BackendChromem,
			Dir:            "embeddings/index",
			Collection:     "hr-documents",
			PostgresURLEnv: "HRDESK_POSTGRES_URL",
			Table:          "hr_chunks",
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Retrieval: RetrievalConfig{
			K:             3,
			Threshold:     0.35,
			Gate:          GateAny,
			ContextBudget: 12000,
		},
		Generation: GenerationConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			TimeoutSecs: 60,
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		Domain: DomainConfig{
			Keywords:       append([]string(nil), DefaultKeywords...),
			SystemPrompt:   DefaultSystemPrompt,
			RefusalMessage: DefaultRefusal,
			ErrorMessage:   DefaultErrorMessage,
		},
		Ingest: IngestConfig{
			SourceDir:    "Donnees",
			Include:      []string{"**/*.txt", "**/*.md"},
			Exclude:      append([]string(nil), DefaultExcludes...),
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
