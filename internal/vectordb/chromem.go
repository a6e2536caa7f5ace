package vectordb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const (
	indexFile         = "chromem.gob.gz"
	DefaultCollection = "hr-documents"
	metaSource        = "source"
	metaPage          = "page"
)

// errNoEmbeddingFunc is returned if chromem ever tries to embed on its own.
// All vectors are computed by the caller.
var errNoEmbeddingFunc = errors.New("chromem embedding func called without a precomputed vector")

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// ChromemIndex is an Index backed by a chromem-go export on disk.
type ChromemIndex struct {
	collection *chromem.Collection
	manifest   Manifest
}

// LoadChromemIndex imports <dir>/chromem.gob.gz and <dir>/manifest.yaml.
func LoadChromemIndex(ctx context.Context, dir, collection string) (*ChromemIndex, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	path := filepath.Join(dir, indexFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexLoad, err)
	}

	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("%w: import %s: %v", ErrIndexLoad, path, err)
	}

	col := db.GetCollection(collection, noEmbed)
	if col == nil {
		return nil, fmt.Errorf("%w: collection %q not found in %s", ErrIndexLoad, collection, path)
	}

	return &ChromemIndex{collection: col, manifest: m}, nil
}

func (s *ChromemIndex) Search(ctx context.Context, vector []float32, k int) ([]Chunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, ErrIndexEmpty
	}
	if k <= 0 {
		return nil, nil
	}
	// chromem-go requires nResults <= collection size.
	k = min(k, count)

	results, err := s.collection.QueryEmbedding(ctx, normalize(vector), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	chunks := make([]Chunk, len(results))
	for i, r := range results {
		page, _ := strconv.Atoi(r.Metadata[metaPage])
		chunks[i] = Chunk{
			ID:       r.ID,
			Content:  r.Content,
			SourceID: sourceOrUnknown(r.Metadata[metaSource]),
			Page:     page,
			Score:    float64(r.Similarity),
			Rank:     i + 1,
		}
	}
	return chunks, nil
}

func (s *ChromemIndex) Count() int {
	return s.collection.Count()
}

func (s *ChromemIndex) Manifest() Manifest {
	return s.manifest
}

func (s *ChromemIndex) Close() error {
	return nil
}

// ChromemWriter builds a fresh chromem-go index in memory and exports it.
type ChromemWriter struct {
	dir        string
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemWriter prepares an empty collection that Commit exports to dir.
func NewChromemWriter(dir, collection string) (*ChromemWriter, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemWriter{dir: dir, db: db, collection: col}, nil
}

func (w *ChromemWriter) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s has no embedding", r.ID)
		}
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata: map[string]string{
				metaSource: sourceOrUnknown(r.SourceID),
				metaPage:   strconv.Itoa(r.Page),
			},
		}
	}

	return w.collection.AddDocuments(ctx, docs, runtime.NumCPU())
}

// Commit writes the export and then the manifest, replacing any previous index.
func (w *ChromemWriter) Commit(ctx context.Context, m Manifest) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}
	m.Chunks = w.collection.Count()

	tmp := filepath.Join(w.dir, "tmp-"+indexFile)
	if err := w.db.ExportToFile(tmp, true, ""); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(w.dir, indexFile)); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return WriteManifest(w.dir, m)
}

func (w *ChromemWriter) Close() error {
	return nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
