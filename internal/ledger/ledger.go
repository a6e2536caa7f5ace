package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
)

// Observe records ev. It implements pipeline.Observer.
func (l *Ledger) Observe(ctx context.Context, ev pipeline.Event) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO answers
		(id, asked_at, question, outcome, duration_ms, best_score, model, input_tokens, output_tokens, cost_usd, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RequestID, ev.At.UnixMilli(), ev.Question, string(ev.Outcome), ev.Duration.Milliseconds(),
		ev.BestScore, ev.Model, ev.InputTokens, ev.OutputTokens, ev.CostUSD, ev.Error)
	if err != nil {
		return fmt.Errorf("inserting answer: %w", err)
	}

	for _, s := range ev.Sources {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO answer_sources (answer_id, rank, source, page, score) VALUES (?, ?, ?, ?, ?)`,
			ev.RequestID, s.Rank, s.SourceID, s.Page, s.Score)
		if err != nil {
			return fmt.Errorf("inserting source: %w", err)
		}
	}
	return tx.Commit()
}

// Stats summarises the ledger.
type Stats struct {
	Total        int
	ByOutcome    map[pipeline.Outcome]int
	AvgDuration  time.Duration
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	TopSources   []SourceCount
}

// SourceCount is how often a document was cited in answered questions.
type SourceCount struct {
	Source string
	Count  int
}

// Stats returns outcome counts and usage totals for answers asked at or
// after since (stored as Unix milliseconds). A zero since covers the whole ledger.
func (l *Ledger) Stats(ctx context.Context, since time.Time, topN int) (*Stats, error) {
	st := &Stats{ByOutcome: make(map[pipeline.Outcome]int)}

	rows, err := l.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM answers WHERE asked_at >= ? GROUP BY outcome`, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("counting outcomes: %w", err)
	}
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.ByOutcome[pipeline.Outcome(outcome)] = n
		st.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avgMS sql.NullFloat64
	err = l.db.QueryRowContext(ctx,
		`SELECT AVG(duration_ms), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0), COALESCE(SUM(cost_usd), 0)
		 FROM answers WHERE asked_at >= ?`, since.UnixMilli(),
	).Scan(&avgMS, &st.InputTokens, &st.OutputTokens, &st.CostUSD)
	if err != nil {
		return nil, fmt.Errorf("summing usage: %w", err)
	}
	if avgMS.Valid {
		st.AvgDuration = time.Duration(avgMS.Float64 * float64(time.Millisecond))
	}

	if topN <= 0 {
		return st, nil
	}
	rows, err = l.db.QueryContext(ctx,
		`SELECT s.source, COUNT(*) AS n FROM answer_sources s
		 JOIN answers a ON a.id = s.answer_id
		 WHERE a.outcome = 'answered' AND a.asked_at >= ?
		 GROUP BY s.source ORDER BY n DESC, s.source LIMIT ?`, since.UnixMilli(), topN)
	if err != nil {
		return nil, fmt.Errorf("counting sources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, err
		}
		st.TopSources = append(st.TopSources, sc)
	}
	return st, rows.Err()
}
