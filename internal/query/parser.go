package query

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

// Query is one identified term sequence.
type Query struct {
	ID    string   `json:"id"`
	Terms []string `json:"terms"`
}

// Parse reads one query per non-blank line in the form "<id> <text>". A line
// holding only an id yields a query without terms.
func Parse(r io.Reader, opts Options) ([]Query, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	queries := make([]Query, 0)
	seen := make(map[string]int)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, text := line, ""
		if sep := strings.IndexFunc(line, unicode.IsSpace); sep >= 0 {
			id, text = line[:sep], line[sep+1:]
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: query id %q already used on line %d: %w", lineNo, id, prev, apperrors.ErrInvalidInput)
		}
		seen[id] = lineNo
		queries = append(queries, Query{
			ID:    id,
			Terms: Tokenize(text, opts),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return queries, nil
}

// Load parses the query file at path.
func Load(path string, opts Options) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()
	queries, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing query file %s: %w", path, err)
	}
	return queries, nil
}
