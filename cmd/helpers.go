package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ziadkadry99/hrdesk/internal/admission"
	"github.com/ziadkadry99/hrdesk/internal/config"
	"github.com/ziadkadry99/hrdesk/internal/embeddings"
	"github.com/ziadkadry99/hrdesk/internal/ledger"
	"github.com/ziadkadry99/hrdesk/internal/llm"
	"github.com/ziadkadry99/hrdesk/internal/logging"
	"github.com/ziadkadry99/hrdesk/internal/pipeline"
	"github.com/ziadkadry99/hrdesk/internal/retriever"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `hrdesk init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays clean for answers and MCP.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log, verbose)
}

// app is the assembled answer pipeline plus the resources it owns.
type app struct {
	pipeline  *pipeline.Pipeline
	retriever *retriever.Retriever
	ledger    *ledger.Ledger
}

// buildApp wires the pipeline from config. The vector index is opened
// lazily by the retriever on the first in-domain question.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	embedder, err := embeddings.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	generator, err := llm.NewProvider(cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	indexCfg := cfg.Index
	r := retriever.New(embedder, func(ctx context.Context) (vectordb.Index, error) {
		return vectordb.Open(ctx, indexCfg, embedder.Name())
	}, retriever.Options{
		K:         cfg.Retrieval.K,
		Threshold: cfg.Retrieval.Threshold,
		Gate:      cfg.Retrieval.Gate,
		Logger:    logger,
	})

	opts := pipeline.Options{
		SystemPrompt:   cfg.Domain.SystemPrompt,
		RefusalMessage: cfg.Domain.RefusalMessage,
		ErrorMessage:   cfg.Domain.ErrorMessage,
		ContextBudget:  cfg.Retrieval.ContextBudget,
		Model:          cfg.Generation.Model,
		MaxTokens:      cfg.Generation.MaxTokens,
		Temperature:    cfg.Generation.Temperature,
		Timeout:        time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
		Logger:         logger,
	}

	a := &app{retriever: r}
	if cfg.Ledger.Path != "" {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("opening ledger: %w", err)
		}
		a.ledger = l
		opts.Observer = l
	}

	filter := admission.New(cfg.Domain.Keywords)
	logger.Debug("pipeline ready",
		"keywords", len(filter.Keywords()),
		"k", cfg.Retrieval.K,
		"threshold", cfg.Retrieval.Threshold,
		"gate", cfg.Retrieval.Gate,
		"generator", generator.Name(),
	)

	a.pipeline = pipeline.New(filter, r, generator, opts)
	return a, nil
}

func (a *app) Close() error {
	err := a.retriever.Close()
	if a.ledger != nil {
		err = errors.Join(err, a.ledger.Close())
	}
	return err
}
