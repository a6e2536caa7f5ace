package vectordb

import "time"

// UnknownSource is the SourceID of chunks whose metadata lacks a source.
const UnknownSource = "unknown"

// Chunk is one passage of an HR document as returned by a similarity search.
// Score is cosine similarity, higher is better. Rank is the 1-based position
// in the result set.
type Chunk struct {
	ID       string
	Content  string
	SourceID string
	Page     int
	Score    float64
	Rank     int
}

// Record is a chunk together with its embedding, written by the index builder.
type Record struct {
	ID        string
	Content   string
	SourceID  string
	Page      int
	Embedding []float32
}

// Manifest describes how an index was built. It is stored next to the index
// so a query-time embedder can be checked against the build-time one.
type Manifest struct {
	EmbeddingModel string    `yaml:"embedding_model"`
	Dimensions     int       `yaml:"dimensions"`
	ChunkSize      int       `yaml:"chunk_size"`
	ChunkOverlap   int       `yaml:"chunk_overlap"`
	Documents      int       `yaml:"documents"`
	Chunks         int       `yaml:"chunks"`
	BuiltAt        time.Time `yaml:"built_at"`
}

func sourceOrUnknown(s string) string {
	if s == "" {
		return UnknownSource
	}
	return s
}
