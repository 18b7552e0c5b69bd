package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/auctiondraft/go/internal/sqlutil"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS draft_documents (
    name       TEXT PRIMARY KEY,
    body       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `
INSERT INTO draft_documents (name, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

const selectSQL = `SELECT body FROM draft_documents WHERE name = $1`

// EnsureSchema creates the documents table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create draft_documents table: %w", err)
	}
	return nil
}

// PostgresStore keeps one named document per row. The row is replaced inside a
// transaction only after the encoded bytes re-parse and validate.
type PostgresStore[T any] struct {
	pool      *pgxpool.Pool
	name      string
	validator Validator[T]
}

// NewPostgresStore returns a store for the document called name. Documents are always
// JSON encoded; a codec option is ignored.
func NewPostgresStore[T any](pool *pgxpool.Pool, name string, opts ...Option[T]) *PostgresStore[T] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return &PostgresStore[T]{pool: pool, name: name, validator: o.validator}
}

func (s *PostgresStore[T]) Load(ctx context.Context) (T, error) {
	var doc T
	var body []byte
	if err := s.pool.QueryRow(ctx, selectSQL, s.name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, ErrNotFound
		}
		return doc, fmt.Errorf("failed to load document %s: %w", s.name, err)
	}
	if err := (JSONCodec{}).Unmarshal(body, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse document %s: %w", s.name, err)
	}
	return doc, nil
}

func (s *PostgresStore[T]) Save(ctx context.Context, doc T) error {
	data, err := roundTrip(JSONCodec{}, doc, s.validator)
	if err != nil {
		return fmt.Errorf("document %s rejected: %w", s.name, err)
	}

	return sqlutil.Run(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertSQL, s.name, data); err != nil {
			return fmt.Errorf("failed to save document %s: %w", s.name, err)
		}
		return nil
	})
}
