// Package ledger records one row per answered question in SQLite and
// summarises the recorded outcomes.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Ledger wraps a sql.DB holding the answer log.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite ledger at the given path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging ledger: %w", err)
	}

	l := &Ledger{db: sqlDB, path: path}
	if err := l.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// OpenMemory creates an in-memory ledger (useful for testing).
func OpenMemory() (*Ledger, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory ledger: %w", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	l := &Ledger{db: sqlDB, path: ":memory:"}
	if err := l.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return l, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) migrate() error {
	_, err := l.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS answers (
    id TEXT PRIMARY KEY,
    asked_at INTEGER NOT NULL,
    question TEXT NOT NULL,
    outcome TEXT NOT NULL CHECK(outcome IN ('rejected','no_context','retrieve_failed','generate_failed','answered')),
    duration_ms INTEGER NOT NULL DEFAULT 0,
    best_score REAL NOT NULL DEFAULT 0,
    model TEXT NOT NULL DEFAULT '',
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd REAL NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_answers_asked_at ON answers(asked_at);
CREATE INDEX IF NOT EXISTS idx_answers_outcome ON answers(outcome);

CREATE TABLE IF NOT EXISTS answer_sources (
    answer_id TEXT NOT NULL REFERENCES answers(id) ON DELETE CASCADE,
    rank INTEGER NOT NULL,
    source TEXT NOT NULL,
    page INTEGER NOT NULL DEFAULT 0,
    score REAL NOT NULL DEFAULT 0,
    PRIMARY KEY(answer_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_answer_sources_source ON answer_sources(source);
`
