// Package ingest builds the HR vector index from a directory of documents.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/hrdesk/internal/embeddings"
	"github.com/ziadkadry99/hrdesk/internal/progress"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

const defaultBatchSize = 64

// chunkNamespace scopes the deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("hrdesk/chunk"))

// Options controls Build.
type Options struct {
	Walk         WalkOptions
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	Reporter     progress.Reporter
	Logger       *slog.Logger
}

// Result summarises a build.
type Result struct {
	Documents int
	Chunks    int
	Skipped   []string
	Duration  time.Duration
}

// Build walks the source directory, splits every document, embeds the
// chunks and writes them through w. The previous index is replaced only
// when w.Commit succeeds.
func Build(ctx context.Context, opts Options, emb embeddings.Embedder, w vectordb.Writer) (*Result, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Nop{}
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	splitter, err := NewSplitter(opts.ChunkSize, opts.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	files, err := Walk(opts.Walk)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported documents found in %s", opts.Walk.RootDir)
	}

	res := &Result{}
	var pending []vectordb.Record
	for _, f := range files {
		pages, err := Load(f.Path)
		if err != nil {
			logger.Warn("skipping document", "path", f.RelPath, "error", err)
			res.Skipped = append(res.Skipped, f.RelPath)
			continue
		}

		before := len(pending)
		for _, page := range pages {
			for i, chunk := range splitter.Split(page.Text) {
				pending = append(pending, vectordb.Record{
					ID:       chunkID(f.RelPath, page.Number, i),
					Content:  chunk,
					SourceID: f.RelPath,
					Page:     page.Number,
				})
			}
		}
		if len(pending) == before {
			logger.Warn("document has no text", "path", f.RelPath)
			res.Skipped = append(res.Skipped, f.RelPath)
			continue
		}
		res.Documents++
		logger.Debug("document split", "path", f.RelPath, "pages", len(pages), "chunks", len(pending)-before)
	}

	rep.Start(len(pending), "Embedding chunks")
	for i := 0; i < len(pending); i += batchSize {
		end := min(i+batchSize, len(pending))
		batch := pending[i:end]

		texts := make([]string, len(batch))
		for j, r := range batch {
			texts[j] = r.Content
		}
		vecs, err := emb.Embed(ctx, texts)
		if err != nil {
			rep.Finish()
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", i, end, err)
		}
		if len(vecs) != len(batch) {
			rep.Finish()
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
		}
		for j := range batch {
			batch[j].Embedding = vecs[j]
		}

		if err := w.Add(ctx, batch); err != nil {
			rep.Finish()
			return nil, fmt.Errorf("writing chunks: %w", err)
		}
		rep.Update(end, batch[len(batch)-1].SourceID)
	}
	rep.Finish()

	res.Chunks = len(pending)
	m := vectordb.Manifest{
		EmbeddingModel: emb.Name(),
		Dimensions:     emb.Dimensions(),
		ChunkSize:      opts.ChunkSize,
		ChunkOverlap:   opts.ChunkOverlap,
		Documents:      res.Documents,
		Chunks:         res.Chunks,
		BuiltAt:        time.Now().UTC(),
	}
	if err := w.Commit(ctx, m); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	return res, nil
}

// chunkID is stable across rebuilds of the same document layout.
func chunkID(relPath string, page, index int) string {
	key := relPath + "#" + strconv.Itoa(page) + "#" + strconv.Itoa(index)
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}
