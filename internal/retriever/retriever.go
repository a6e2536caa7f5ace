// Package retriever fetches the top-k HR chunks for a question and applies
// the confidence gate.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/hrdesk/internal/config"
	"github.com/ziadkadry99/hrdesk/internal/embeddings"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

// ErrRetrieval marks an infrastructure failure during retrieval, as opposed
// to a search that found nothing usable.
var ErrRetrieval = errors.New("retrieval failed")

// Opener loads the vector index. It is called lazily on first use and again
// after a failed attempt.
type Opener func(ctx context.Context) (vectordb.Index, error)

// Options configures a Retriever.
type Options struct {
	K         int
	Threshold float64
	Gate      config.GateMode
	Logger    *slog.Logger
}

// Retriever embeds a question, queries the index for the top K chunks and
// downgrades low-confidence result sets to empty.
type Retriever struct {
	embedder embeddings.Embedder
	open     Opener
	opts     Options
	logger   *slog.Logger

	mu    sync.Mutex
	index vectordb.Index
}

// New creates a Retriever. The index is not opened until the first Retrieve.
func New(embedder embeddings.Embedder, open Opener, opts Options) *Retriever {
	if opts.K < 1 {
		opts.K = 1
	}
	if opts.Gate == "" {
		opts.Gate = config.GateAny
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, open: open, opts: opts, logger: logger}
}

// Retrieve returns up to K chunks in rank order. A nil slice with a nil
// error means nothing passed the confidence gate. Any returned error wraps
// ErrRetrieval.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vectordb.Chunk, error) {
	idx, err := r.loadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	vecs, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %w", ErrRetrieval, err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", ErrRetrieval)
	}

	chunks, err := idx.Search(ctx, vecs[0], r.opts.K)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	if !Passes(chunks, r.opts.Threshold, r.opts.Gate) {
		r.logger.Debug("retrieval below confidence threshold",
			"k", r.opts.K, "chunks", len(chunks), "best_score", BestScore(chunks), "threshold", r.opts.Threshold)
		return nil, nil
	}
	r.logger.Debug("retrieved", "k", r.opts.K, "chunks", len(chunks), "best_score", BestScore(chunks))
	return chunks, nil
}

// loadIndex opens the index once. Concurrent callers wait on the same
// attempt; a failure is not cached.
func (r *Retriever) loadIndex(ctx context.Context) (vectordb.Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil {
		return r.index, nil
	}
	idx, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("vector index loaded", "chunks", idx.Count(), "embedding_model", idx.Manifest().EmbeddingModel)
	r.index = idx
	return idx, nil
}

// Close releases the index if it was opened.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == nil {
		return nil
	}
	err := r.index.Close()
	r.index = nil
	return err
}

// Passes applies the confidence gate. An empty set never passes.
func Passes(chunks []vectordb.Chunk, threshold float64, mode config.GateMode) bool {
	if len(chunks) == 0 {
		return false
	}
	if mode == config.GateAll {
		for _, c := range chunks {
			if c.Score < threshold {
				return false
			}
		}
		return true
	}
	return BestScore(chunks) >= threshold
}

// BestScore returns the highest score in chunks, or 0 for an empty set.
func BestScore(chunks []vectordb.Chunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	best := chunks[0].Score
	for _, c := range chunks[1:] {
		best = max(best, c.Score)
	}
	return best
}
