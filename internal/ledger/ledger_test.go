package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

func event(id string, outcome pipeline.Outcome, at time.Time, sources ...string) pipeline.Event {
	ev := pipeline.Event{
		RequestID:    id,
		Question:     "question " + id,
		Outcome:      outcome,
		Duration:     200 * time.Millisecond,
		Model:        "gpt-4o-mini",
		InputTokens:  100,
		OutputTokens: 20,
		CostUSD:      0.001,
		At:           at,
	}
	for i, s := range sources {
		ev.Sources = append(ev.Sources, vectordb.Chunk{SourceID: s, Rank: i + 1, Score: 0.8})
	}
	return ev
}

func TestOpenMemory(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer l.Close()

	for _, table := range []string{"answers", "answer_sources"} {
		var count int
		if err := l.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer l.Close()

	if err := l.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestObserveAndStats(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ctx := context.Background()
	now := time.Now()
	events := []pipeline.Event{
		event("a", pipeline.OutcomeAnswered, now, "teletravail.pdf", "conges.pdf"),
		event("b", pipeline.OutcomeAnswered, now, "teletravail.pdf"),
		event("c", pipeline.OutcomeRejected, now),
		event("d", pipeline.OutcomeNoContext, now),
		event("e", pipeline.OutcomeGenerateFailed, now, "conges.pdf"),
	}
	for _, ev := range events {
		if err := l.Observe(ctx, ev); err != nil {
			t.Fatalf("Observe(%s): %v", ev.RequestID, err)
		}
	}

	st, err := l.Stats(ctx, time.Time{}, 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 5 {
		t.Errorf("Total = %d, want 5", st.Total)
	}
	if st.ByOutcome[pipeline.OutcomeAnswered] != 2 || st.ByOutcome[pipeline.OutcomeRejected] != 1 {
		t.Errorf("ByOutcome = %v", st.ByOutcome)
	}
	if st.InputTokens != 500 || st.OutputTokens != 100 {
		t.Errorf("tokens = %d/%d", st.InputTokens, st.OutputTokens)
	}
	if st.AvgDuration != 200*time.Millisecond {
		t.Errorf("AvgDuration = %v", st.AvgDuration)
	}

	// Only answered questions count as citations.
	if len(st.TopSources) != 2 {
		t.Fatalf("TopSources = %v", st.TopSources)
	}
	if st.TopSources[0].Source != "teletravail.pdf" || st.TopSources[0].Count != 2 {
		t.Errorf("top source = %+v", st.TopSources[0])
	}
	if st.TopSources[1].Source != "conges.pdf" || st.TopSources[1].Count != 1 {
		t.Errorf("second source = %+v", st.TopSources[1])
	}
}

func TestStatsSince(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ctx := context.Background()
	now := time.Now()
	l.Observe(ctx, event("old", pipeline.OutcomeAnswered, now.Add(-48*time.Hour)))
	l.Observe(ctx, event("new", pipeline.OutcomeRejected, now))

	st, err := l.Stats(ctx, now.Add(-time.Hour), 0)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 1 || st.ByOutcome[pipeline.OutcomeRejected] != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.TopSources != nil {
		t.Errorf("topN 0 should skip sources, got %v", st.TopSources)
	}
}

func TestStatsEmpty(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	st, err := l.Stats(context.Background(), time.Time{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 0 || st.AvgDuration != 0 || st.CostUSD != 0 {
		t.Errorf("expected zero stats, got %+v", st)
	}
}

func TestObserveDuplicateID(t *testing.T) {
	l, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ctx := context.Background()
	ev := event("dup", pipeline.OutcomeAnswered, time.Now(), "a.pdf")
	if err := l.Observe(ctx, ev); err != nil {
		t.Fatal(err)
	}
	if err := l.Observe(ctx, ev); err == nil {
		t.Error("expected error for duplicate request id")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "ledger.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Observe(context.Background(), event("x", pipeline.OutcomeAnswered, time.Now())); err != nil {
		t.Fatal(err)
	}
	l.Close()

	l, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	st, err := l.Stats(context.Background(), time.Time{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 1 {
		t.Errorf("Total after reopen = %d", st.Total)
	}
}

var _ pipeline.Observer = (*Ledger)(nil)
