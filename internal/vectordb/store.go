package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ziadkadry99/hrdesk/internal/config"
)

var (
	// ErrIndexLoad reports a missing, unreadable or corrupt index.
	ErrIndexLoad = errors.New("index load failed")
	// ErrIndexEmpty reports an index that holds no chunks.
	ErrIndexEmpty = errors.New("index is empty")
	// ErrEmbeddingMismatch reports a query embedder that differs from the
	// one the index was built with.
	ErrEmbeddingMismatch = errors.New("embedding model does not match index")
)

// Index is a read-only nearest-neighbour index over HR document chunks.
type Index interface {
	// Search returns up to k chunks ordered by descending similarity to vector.
	Search(ctx context.Context, vector []float32, k int) ([]Chunk, error)

	// Count returns the number of chunks in the index.
	Count() int

	// Manifest returns the build description of the index.
	Manifest() Manifest

	Close() error
}

// Writer replaces the contents of an index. It is used by the offline
// index builder only.
type Writer interface {
	// Add appends records to the pending index.
	Add(ctx context.Context, records []Record) error

	// Commit makes the pending index durable together with its manifest.
	Commit(ctx context.Context, m Manifest) error

	Close() error
}

// Open loads the index described by cfg and checks that it was built with
// the embedding model named embeddingModel.
func Open(ctx context.Context, cfg config.IndexConfig, embeddingModel string) (Index, error) {
	var (
		idx Index
		err error
	)
	switch cfg.Backend {
	case config.BackendChromem:
		idx, err = LoadChromemIndex(ctx, cfg.Dir, cfg.Collection)
	case config.BackendPgvector:
		idx, err = OpenPgvectorIndex(ctx, os.Getenv(cfg.PostgresURLEnv), cfg.Table)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrIndexLoad, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := checkIndex(idx, embeddingModel); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

// NewWriter creates a writer for the backend described by cfg.
func NewWriter(ctx context.Context, cfg config.IndexConfig) (Writer, error) {
	switch cfg.Backend {
	case config.BackendChromem:
		return NewChromemWriter(cfg.Dir, cfg.Collection)
	case config.BackendPgvector:
		return NewPgvectorWriter(ctx, os.Getenv(cfg.PostgresURLEnv), cfg.Table)
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Backend)
	}
}

func checkIndex(idx Index, embeddingModel string) error {
	m := idx.Manifest()
	if embeddingModel != "" && m.EmbeddingModel != embeddingModel {
		return fmt.Errorf("%w: index built with %q, configured %q", ErrEmbeddingMismatch, m.EmbeddingModel, embeddingModel)
	}
	if idx.Count() == 0 {
		return ErrIndexEmpty
	}
	return nil
}
