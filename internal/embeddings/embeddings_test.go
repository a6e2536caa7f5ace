package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/hrdesk/internal/config"
)

func TestOllamaEmbedBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls++
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		resp := ollamaEmbedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 1})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL)
	texts := make([]string, maxBatchSize+5)
	for i := range texts {
		texts[i] = "texte"
	}
	got, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(got), len(texts))
	}
	if calls != 2 {
		t.Errorf("expected 2 batched calls, got %d", calls)
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("Name() = %q", e.Name())
	}
}

func TestOllamaEmbedErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("missing", 2, srv.URL)
	_, err := e.Embed(context.Background(), []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestOllamaEmbedEmpty(t *testing.T) {
	e := NewOllamaEmbedder("m", 2, "http://127.0.0.1:1")
	got, err := e.Embed(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for empty input; got %v, %v", got, err)
	}
}

func TestOpenAIEmbedOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", ModelTextEmbedding3Small, srv.URL+"/v1", 2)
	got, err := e.Embed(context.Background(), []string{"congé", "salaire"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("vectors not ordered by index: %v", got)
	}
	if e.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d, want 2", e.Dimensions())
	}
}

func TestOpenAIDefaultDimensions(t *testing.T) {
	if d := NewOpenAIEmbedder("k", ModelTextEmbedding3Large, "", 0).Dimensions(); d != 3072 {
		t.Errorf("large dims = %d", d)
	}
	if d := NewOpenAIEmbedder("k", ModelTextEmbedding3Small, "", 0).Dimensions(); d != 1536 {
		t.Errorf("small dims = %d", d)
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "text-embedding-3-small"}); err == nil {
		t.Error("expected error when OPENAI_API_KEY is unset")
	}

	e, err := New(config.EmbeddingConfig{Provider: config.ProviderOllama, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("New ollama: %v", err)
	}
	if e.Dimensions() != 768 {
		t.Errorf("default ollama dims = %d", e.Dimensions())
	}

	if _, err := New(config.EmbeddingConfig{Provider: "cohere"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
