package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultConfigFile is the configuration file read by every command.
const DefaultConfigFile = ".hrdesk.yml"

// providerPreset holds the default models for a provider.
type providerPreset struct {
	ChatModel      string
	EmbeddingModel string
	BaseURL        string
}

var presets = map[ProviderType]providerPreset{
	ProviderOpenAI: {ChatModel: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {ChatModel: "llama3.1", EmbeddingModel: "nomic-embed-text", BaseURL: "http://localhost:11434"},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config, saved to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to hrdesk! Let's configure the HR assistant.")
	fmt.Println()

	providerPrompt := promptui.Select{
		Label: "Select model provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	preset := presets[provider]

	backendPrompt := promptui.Select{
		Label: "Select index backend",
		Items: []string{"chromem", "pgvector"},
	}
	_, backendStr, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}

	sourcePrompt := promptui.Prompt{
		Label:   "Directory holding the HR documents",
		Default: "Donnees",
	}
	sourceDir, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("source dir: %w", err)
	}

	thresholdPrompt := promptui.Prompt{
		Label:    "Minimum similarity score to answer",
		Default:  "0.35",
		Validate: validateThreshold,
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	threshold, _ := strconv.ParseFloat(thresholdStr, 64)

	keywordsPrompt := promptui.Prompt{
		Label:   "Extra admission keywords (comma-separated, leave blank for defaults)",
		Default: "",
	}
	keywordsStr, err := keywordsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Index.Backend = IndexBackend(backendStr)
	cfg.Embedding.Provider = provider
	cfg.Embedding.Model = preset.EmbeddingModel
	cfg.Embedding.BaseURL = preset.BaseURL
	cfg.Generation.Provider = provider
	cfg.Generation.Model = preset.ChatModel
	cfg.Generation.BaseURL = preset.BaseURL
	cfg.Retrieval.Threshold = threshold
	cfg.Ingest.SourceDir = sourceDir
	cfg.Domain.Keywords = append(cfg.Domain.Keywords, splitAndTrim(keywordsStr)...)

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment or .env before running hrdesk.\n", envVar)
	}
	if cfg.Index.Backend == BackendPgvector && os.Getenv(cfg.Index.PostgresURLEnv) == "" {
		fmt.Printf("Note: Set %s to the PostgreSQL connection string.\n", cfg.Index.PostgresURLEnv)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateThreshold(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v < -1 || v > 1 {
		return fmt.Errorf("must be within [-1, 1]")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
