// Package indexstore loads a precomputed inverted index into memory from the
// formats the upstream indexer produces: a JSON document or a SQLite database.
package indexstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

// DecodeJSON reads {"term": {"<doc id>": frequency, ...}, ...}. Terms and
// postings keep the order they have in the document, which is the order ties
// are broken in.
func DecodeJSON(r io.Reader) (*index.Index, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	entries := make([]index.TermEntry, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading term: %w", err)
		}
		term, _ := tok.(string)
		postings, err := decodePostings(dec, term)
		if err != nil {
			return nil, err
		}
		entries = append(entries, index.TermEntry{Term: term, Postings: postings})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return index.New(entries)
}

func decodePostings(dec *json.Decoder, term string) (index.PostingList, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("term %q: %w", term, err)
	}
	postings := make(index.PostingList, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("term %q: reading doc id: %w", term, err)
		}
		key, _ := tok.(string)
		docID, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("term %q: doc id %q is not an integer: %w", term, key, apperrors.ErrInvalidInput)
		}
		var freq int
		if err := dec.Decode(&freq); err != nil {
			return nil, fmt.Errorf("term %q, doc %d: reading frequency: %w", term, docID, err)
		}
		postings = append(postings, index.Posting{DocID: docID, Frequency: freq})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("term %q: %w", term, err)
	}
	return postings, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, found %v: %w", want, tok, apperrors.ErrInvalidInput)
	}
	return nil
}

// LoadJSON decodes the index file at path.
func LoadJSON(path string) (*index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()
	idx, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("decoding index file %s: %w", path, err)
	}
	return idx, nil
}

// Load reads the index described by cfg.
func Load(ctx context.Context, cfg config.IndexConfig) (*index.Index, error) {
	switch cfg.Format {
	case config.IndexFormatJSON:
		return LoadJSON(cfg.Path)
	case config.IndexFormatSQLite:
		src, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Load(ctx)
	default:
		return nil, fmt.Errorf("index format %q: %w", cfg.Format, apperrors.ErrInvalidInput)
	}
}
