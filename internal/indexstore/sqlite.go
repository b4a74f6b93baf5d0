package indexstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

// postingsQuery walks the terms/frequencies tables of an indexer database in
// term order, then document order.
const postingsQuery = `
	SELECT t.term, f.doc_id, f.tf
	FROM frequencies f
	JOIN terms t ON t.term_id = f.term_id
	WHERE f.tf > 0
	ORDER BY t.term, f.doc_id`

// SQLiteSource reads an inverted index stored as
// terms(term_id, term) and frequencies(term_id, doc_id, tf).
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens an existing database read-only.
func OpenSQLite(path string) (*SQLiteSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index database %s: %w", path, apperrors.ErrIndexUnavailable)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite index: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Load materialises the whole index.
func (s *SQLiteSource) Load(ctx context.Context) (*index.Index, error) {
	rows, err := s.db.QueryContext(ctx, postingsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	entries := make([]index.TermEntry, 0)
	for rows.Next() {
		var (
			term  string
			docID int
			tf    int
		)
		if err := rows.Scan(&term, &docID, &tf); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		if n := len(entries); n == 0 || entries[n-1].Term != term {
			entries = append(entries, index.TermEntry{Term: term})
		}
		last := &entries[len(entries)-1]
		last.Postings = append(last.Postings, index.Posting{DocID: docID, Frequency: tf})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	return index.New(entries)
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
