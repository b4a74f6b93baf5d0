// Package results writes ranked retrieval output: the plain results file
// consumed by evaluation scripts and a PostgreSQL run store.
package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
)

// Write emits one "<query id> <doc id>" line per returned document, queries
// in the given order and documents best first.
func Write(w io.Writer, results []retrieval.Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		for _, d := range r.Docs {
			if _, err := fmt.Fprintf(bw, "%s %d\n", r.QueryID, d.DocID); err != nil {
				return fmt.Errorf("writing result for query %s: %w", r.QueryID, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing results: %w", err)
	}
	return nil
}

// WriteFile writes results to path through a temporary file so readers never
// see a partial results file.
func WriteFile(path string, results []retrieval.Result) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp results file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := Write(tmp, results); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming results file: %w", err)
	}
	return nil
}
