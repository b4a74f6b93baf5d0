package results

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
)

const schema = `
CREATE TABLE IF NOT EXISTS retrieval_results (
	run_id     TEXT             NOT NULL,
	query_id   TEXT             NOT NULL,
	rank       INTEGER          NOT NULL,
	doc_id     BIGINT           NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	weighting  TEXT             NOT NULL,
	created_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, query_id, rank)
)`

const insertResult = `
INSERT INTO retrieval_results (run_id, query_id, rank, doc_id, score, weighting)
VALUES ($1, $2, $3, $4, $5, $6)`

// TxRunner is satisfied by *postgres.Client.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type PostgresStore struct {
	db     TxRunner
	logger *slog.Logger
}

func NewPostgresStore(db TxRunner) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: slog.Default().With("component", "results-store"),
	}
}

// EnsureSchema creates the results table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("creating retrieval_results: %w", err)
		}
		return nil
	})
}

// Save stores a whole run atomically. Ranks start at 1.
func (s *PostgresStore) Save(ctx context.Context, runID string, policy weighting.Policy, results []retrieval.Result) error {
	rows := 0
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertResult)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range results {
			for rank, d := range r.Docs {
				if _, err := stmt.ExecContext(ctx, runID, r.QueryID, rank+1, d.DocID, d.Score, policy.String()); err != nil {
					return fmt.Errorf("inserting query %s rank %d: %w", r.QueryID, rank+1, err)
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving run %s: %w", runID, err)
	}
	s.logger.Info("run stored", "run_id", runID, "queries", len(results), "rows", rows)
	return nil
}
