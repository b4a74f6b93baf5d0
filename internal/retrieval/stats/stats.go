// Package stats derives corpus statistics from an inverted index: the corpus
// size, per-term document frequency and, for tf-idf weighting, per-term idf.
package stats

import (
	"math"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
)

// Stats is computed once from an index snapshot and never changes afterwards.
type Stats struct {
	numDocs int
	docFreq map[string]int
	idf     map[string]float64
}

// Compute scans every posting once. The idf table is only built when withIDF
// is set and the corpus is non-empty.
func Compute(idx *index.Index, withIDF bool) *Stats {
	docs := roaring64.NewBitmap()
	s := &Stats{docFreq: make(map[string]int, idx.Len())}
	for _, entry := range idx.Entries() {
		s.docFreq[entry.Term] = len(entry.Postings)
		for _, p := range entry.Postings {
			// two's complement keeps the mapping injective for negative ids
			docs.Add(uint64(int64(p.DocID)))
		}
	}
	s.numDocs = int(docs.GetCardinality())

	if withIDF && s.numDocs > 0 {
		s.idf = make(map[string]float64, len(s.docFreq))
		n := float64(s.numDocs)
		for term, df := range s.docFreq {
			if df == 0 {
				continue
			}
			s.idf[term] = math.Log10(n / float64(df))
		}
	}
	return s
}

// NumDocs is the number of distinct document ids across all postings.
func (s *Stats) NumDocs() int {
	return s.numDocs
}

// DocFreq is 0 for terms the index does not contain.
func (s *Stats) DocFreq(term string) int {
	return s.docFreq[term]
}

// IDF reports log10(N/df) for term. ok is false when the term is unknown or
// the idf table was not computed.
func (s *Stats) IDF(term string) (idf float64, ok bool) {
	idf, ok = s.idf[term]
	return idf, ok
}

// HasIDF reports whether idf weights were computed.
func (s *Stats) HasIDF() bool {
	return s.idf != nil
}

func (s *Stats) Vocabulary() int {
	return len(s.docFreq)
}
