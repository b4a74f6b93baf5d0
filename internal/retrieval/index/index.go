// Package index holds the immutable inverted index the retrieval engine ranks
// against. Term order and posting order are fixed at construction and define
// the traversal order used for tie-breaking during ranking.
package index

import (
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

// Index is a read-only term -> postings mapping. It is safe for concurrent
// use because nothing mutates it after New returns.
type Index struct {
	entries  []TermEntry
	position map[string]int
	postings int
}

// New builds an Index that keeps entries in the given order. The entries are
// copied so later changes by the caller are not observed.
func New(entries []TermEntry) (*Index, error) {
	idx := &Index{
		entries:  make([]TermEntry, 0, len(entries)),
		position: make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if _, dup := idx.position[entry.Term]; dup {
			return nil, fmt.Errorf("term %q listed twice: %w", entry.Term, apperrors.ErrInvalidInput)
		}
		seen := make(map[int]struct{}, len(entry.Postings))
		postings := make(PostingList, 0, len(entry.Postings))
		for _, p := range entry.Postings {
			if p.Frequency <= 0 {
				return nil, fmt.Errorf("term %q, doc %d: frequency %d must be positive: %w",
					entry.Term, p.DocID, p.Frequency, apperrors.ErrInvalidInput)
			}
			if _, dup := seen[p.DocID]; dup {
				return nil, fmt.Errorf("term %q: doc %d posted twice: %w", entry.Term, p.DocID, apperrors.ErrInvalidInput)
			}
			seen[p.DocID] = struct{}{}
			postings = append(postings, p)
		}
		idx.position[entry.Term] = len(idx.entries)
		idx.entries = append(idx.entries, TermEntry{Term: entry.Term, Postings: postings})
		idx.postings += len(postings)
	}
	return idx, nil
}

// FromMap builds an Index from nested term -> doc -> frequency maps. Terms are
// ordered lexicographically and postings by ascending document id.
func FromMap(m map[string]map[int]int) (*Index, error) {
	entries := make([]TermEntry, 0, len(m))
	for term, docs := range m {
		postings := make(PostingList, 0, len(docs))
		for docID, freq := range docs {
			postings = append(postings, Posting{DocID: docID, Frequency: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return New(entries)
}

// Entries returns the terms in index order. Callers must not modify the result.
func (ix *Index) Entries() []TermEntry {
	return ix.entries
}

// Postings returns the postings of term and whether the term is indexed.
func (ix *Index) Postings(term string) (PostingList, bool) {
	pos, ok := ix.position[term]
	if !ok {
		return nil, false
	}
	return ix.entries[pos].Postings, true
}

// Position is the term's rank in index order, or -1 when it is not indexed.
func (ix *Index) Position(term string) int {
	if pos, ok := ix.position[term]; ok {
		return pos
	}
	return -1
}

// Len is the vocabulary size.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// PostingCount is the total number of postings across all terms.
func (ix *Index) PostingCount() int {
	return ix.postings
}
