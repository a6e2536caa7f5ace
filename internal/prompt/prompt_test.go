package prompt

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/hrdesk/internal/llm"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

func chunk(rank int, content string) vectordb.Chunk {
	return vectordb.Chunk{ID: content, Content: content, Rank: rank, SourceID: "doc.pdf"}
}

func TestAssemblePreservesRankOrder(t *testing.T) {
	chunks := []vectordb.Chunk{chunk(1, "premier"), chunk(2, "deuxième"), chunk(3, "troisième")}
	text, kept := Assemble(chunks, 1000)

	want := "premier\n\ndeuxième\n\ntroisième"
	if text != want {
		t.Errorf("Assemble = %q, want %q", text, want)
	}
	if len(kept) != 3 {
		t.Errorf("kept %d chunks, want 3", len(kept))
	}
}

func TestAssembleEmpty(t *testing.T) {
	text, kept := Assemble(nil, 100)
	if text != "" || kept != nil {
		t.Errorf("expected empty context, got %q, %v", text, kept)
	}
}

func TestAssembleDropsLowestRanked(t *testing.T) {
	chunks := []vectordb.Chunk{chunk(1, "aaaa"), chunk(2, "bbbb"), chunk(3, "cccc")}
	// "aaaa\n\nbbbb" is 10 characters; adding the third makes 16.
	text, kept := Assemble(chunks, 12)

	if text != "aaaa\n\nbbbb" {
		t.Errorf("Assemble = %q", text)
	}
	if len(kept) != 2 || kept[1].Rank != 2 {
		t.Errorf("expected ranks 1 and 2 kept, got %v", kept)
	}
}

func TestAssembleTruncatesTopChunk(t *testing.T) {
	chunks := []vectordb.Chunk{chunk(1, "télétravail autorisé"), chunk(2, "autre")}
	text, kept := Assemble(chunks, 5)

	if text != "télét" {
		t.Errorf("Assemble = %q, want %q", text, "télét")
	}
	if len(kept) != 1 || kept[0].Rank != 1 {
		t.Errorf("top chunk must always be kept, got %v", kept)
	}
}

func TestAssembleNoBudget(t *testing.T) {
	long := strings.Repeat("x", 10000)
	text, kept := Assemble([]vectordb.Chunk{chunk(1, long), chunk(2, long)}, 0)
	if len(kept) != 2 || len(text) != 20002 {
		t.Errorf("budget 0 should not limit; got %d chars, %d chunks", len(text), len(kept))
	}
}

func TestMessages(t *testing.T) {
	msgs := Messages("Tu es un assistant RH interne.", "ctx", "Combien de congés ?")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem || msgs[1].Role != llm.RoleUser {
		t.Errorf("unexpected roles %q, %q", msgs[0].Role, msgs[1].Role)
	}

	want := "Tu es un assistant RH interne.\n\nContexte:\nctx\n\nQuestion:\nCombien de congés ?"
	if got := Render(msgs); got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
