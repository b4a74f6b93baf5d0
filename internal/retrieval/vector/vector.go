// Package vector turns a query and the inverted index into sparse weighted
// vectors: one per document sharing a term with the query, plus the query's own.
package vector

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
)

// Vector maps a term to its weight. Only terms present for the entity are keys.
type Vector map[string]float64

// DocVector is the sparse vector of one document. Terms lists the keys of
// Weights in candidate order; scoring sums in that order.
type DocVector struct {
	DocID   int
	Weights Vector
	Terms   []string
}

// Builder is stateless per query and safe for concurrent use.
type Builder struct {
	idx      *index.Index
	weighter weighting.Weighter
}

func NewBuilder(idx *index.Index, w weighting.Weighter) *Builder {
	return &Builder{idx: idx, weighter: w}
}

// CountTerms returns the raw frequency of every distinct term in query.
func CountTerms(query []string) map[string]int {
	counts := make(map[string]int, len(query))
	for _, term := range query {
		counts[term]++
	}
	return counts
}

// Candidates returns the index entries of the query terms the index knows,
// in index order. Unknown terms are dropped.
func (b *Builder) Candidates(query []string) []index.TermEntry {
	seen := make(map[string]struct{}, len(query))
	positions := make([]int, 0, len(query))
	for _, term := range query {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if pos := b.idx.Position(term); pos >= 0 {
			positions = append(positions, pos)
		}
	}
	sort.Ints(positions)
	entries := b.idx.Entries()
	candidates := make([]index.TermEntry, 0, len(positions))
	for _, pos := range positions {
		candidates = append(candidates, entries[pos])
	}
	return candidates
}

// Documents builds one vector per document posted under any candidate term.
// Vectors are ordered by the document's first appearance while walking the
// candidates in order and each posting list in order.
func (b *Builder) Documents(candidates []index.TermEntry) []DocVector {
	slot := make(map[int]int)
	docs := make([]DocVector, 0)
	for _, entry := range candidates {
		for _, p := range entry.Postings {
			i, ok := slot[p.DocID]
			if !ok {
				i = len(docs)
				slot[p.DocID] = i
				docs = append(docs, DocVector{DocID: p.DocID, Weights: make(Vector, len(candidates))})
			}
			docs[i].Weights[entry.Term] = b.weighter.Weight(p.Frequency, entry.Term)
			docs[i].Terms = append(docs[i].Terms, entry.Term)
		}
	}
	return docs
}

// Query counts raw frequencies first and then weighs each distinct term, so
// repeated terms accumulate before weighting.
func (b *Builder) Query(query []string) Vector {
	counts := CountTerms(query)
	q := make(Vector, len(counts))
	for term, raw := range counts {
		q[term] = b.weighter.Weight(raw, term)
	}
	return q
}

// Build returns the document vectors and the query vector for query.
func (b *Builder) Build(query []string) ([]DocVector, Vector) {
	return b.Documents(b.Candidates(query)), b.Query(query)
}
