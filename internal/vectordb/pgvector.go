package vectordb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"gopkg.in/yaml.v3"
)

const manifestKey = "manifest"

// PgvectorIndex is an Index stored in a PostgreSQL table with a pgvector
// embedding column. Scores are 1 - cosine distance.
type PgvectorIndex struct {
	pool     *pgxpool.Pool
	table    string
	manifest Manifest
	count    int
}

// OpenPgvectorIndex connects to dsn and reads the manifest and row count of table.
func OpenPgvectorIndex(ctx context.Context, dsn, table string) (*PgvectorIndex, error) {
	pool, err := connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexLoad, err)
	}

	idx := &PgvectorIndex{pool: pool, table: table}
	if err := idx.readManifest(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := pool.QueryRow(ctx, "SELECT count(*) FROM "+quoteTable(table)).Scan(&idx.count); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: counting %s: %v", ErrIndexLoad, table, err)
	}
	return idx, nil
}

func (p *PgvectorIndex) readManifest(ctx context.Context) error {
	var raw string
	err := p.pool.QueryRow(ctx,
		"SELECT value FROM "+quoteTable(manifestTable(p.table))+" WHERE key = $1", manifestKey,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: no manifest for table %s", ErrIndexLoad, p.table)
	}
	if err != nil {
		return fmt.Errorf("%w: reading manifest: %v", ErrIndexLoad, err)
	}
	if err := yaml.Unmarshal([]byte(raw), &p.manifest); err != nil {
		return fmt.Errorf("%w: parsing manifest: %v", ErrIndexLoad, err)
	}
	return nil
}

func (p *PgvectorIndex) Search(ctx context.Context, vector []float32, k int) ([]Chunk, error) {
	if p.count == 0 {
		return nil, ErrIndexEmpty
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := p.pool.Query(ctx,
		"SELECT id, content, source, page, embedding <=> $1 AS distance FROM "+quoteTable(p.table)+
			" ORDER BY distance LIMIT $2",
		pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("pgvector query: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c        Chunk
			distance float64
		)
		if err := rows.Scan(&c.ID, &c.Content, &c.SourceID, &c.Page, &distance); err != nil {
			return nil, fmt.Errorf("pgvector scan: %w", err)
		}
		c.SourceID = sourceOrUnknown(c.SourceID)
		c.Score = 1 - distance
		c.Rank = len(chunks) + 1
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector rows: %w", err)
	}
	return chunks, nil
}

func (p *PgvectorIndex) Count() int {
	return p.count
}

func (p *PgvectorIndex) Manifest() Manifest {
	return p.manifest
}

func (p *PgvectorIndex) Close() error {
	p.pool.Close()
	return nil
}

// PgvectorWriter replaces the rows of a pgvector table inside one transaction.
type PgvectorWriter struct {
	pool    *pgxpool.Pool
	tx      pgx.Tx
	table   string
	created bool
	done    bool
}

// NewPgvectorWriter connects to dsn and opens the transaction that Commit
// finishes. Nothing is visible to readers until Commit.
func NewPgvectorWriter(ctx context.Context, dsn, table string) (*PgvectorWriter, error) {
	pool, err := connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &PgvectorWriter{pool: pool, tx: tx, table: table}, nil
}

// prepare creates the tables on first use, sized to the first embedding,
// and clears any previous contents.
func (w *PgvectorWriter) prepare(ctx context.Context, dims int) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, content text NOT NULL, source text NOT NULL, page integer NOT NULL DEFAULT 0, embedding vector(%d) NOT NULL)",
			quoteTable(w.table), dims),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key text PRIMARY KEY, value text NOT NULL)",
			quoteTable(manifestTable(w.table))),
		"TRUNCATE " + quoteTable(w.table),
	}
	for _, s := range stmts {
		if _, err := w.tx.Exec(ctx, s); err != nil {
			return fmt.Errorf("preparing %s: %w", w.table, err)
		}
	}
	w.created = true
	return nil
}

func (w *PgvectorWriter) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if !w.created {
		if err := w.prepare(ctx, len(records[0].Embedding)); err != nil {
			return err
		}
	}

	insert := "INSERT INTO " + quoteTable(w.table) + " (id, content, source, page, embedding) VALUES ($1, $2, $3, $4, $5)"
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insert, r.ID, r.Content, sourceOrUnknown(r.SourceID), r.Page, pgvector.NewVector(r.Embedding))
	}
	if err := w.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting chunks: %w", err)
	}
	return nil
}

func (w *PgvectorWriter) Commit(ctx context.Context, m Manifest) error {
	if !w.created {
		if err := w.prepare(ctx, m.Dimensions); err != nil {
			return err
		}
	}
	if err := w.tx.QueryRow(ctx, "SELECT count(*) FROM "+quoteTable(w.table)).Scan(&m.Chunks); err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	raw, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	_, err = w.tx.Exec(ctx,
		"INSERT INTO "+quoteTable(manifestTable(w.table))+" (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		manifestKey, string(raw))
	if err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := w.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.done = true
	return nil
}

// Close rolls back an uncommitted build and releases the connection pool.
func (w *PgvectorWriter) Close() error {
	var err error
	if !w.done {
		err = w.tx.Rollback(context.Background())
	}
	w.pool.Close()
	return err
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("postgres connection string is not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func manifestTable(table string) string {
	return table + "_manifest"
}

func quoteTable(table string) string {
	return pgx.Identifier{table}.Sanitize()
}
