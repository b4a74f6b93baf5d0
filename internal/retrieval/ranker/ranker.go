package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/vector"
)

type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// Cosine scores doc against query. The denominator is the document norm only;
// the query norm is a constant per query and is left out. An all-zero
// document scores 0. Terms are summed in sorted order so equal vectors always
// score bit-for-bit equal.
func Cosine(doc, query vector.Vector) float64 {
	terms := make([]string, 0, len(doc))
	for term := range doc {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return cosine(terms, doc, query)
}

// Score is Cosine summed in d.Terms order, falling back to sorted order when
// d carries no term list.
func Score(d vector.DocVector, query vector.Vector) float64 {
	if len(d.Terms) != len(d.Weights) {
		return Cosine(d.Weights, query)
	}
	return cosine(d.Terms, d.Weights, query)
}

func cosine(terms []string, doc, query vector.Vector) float64 {
	var num, den float64
	for _, term := range terms {
		dw := doc[term]
		if qw, ok := query[term]; ok {
			num += dw * qw
		}
		den += dw * dw
	}
	if den > 0 {
		return num / math.Sqrt(den)
	}
	return 0
}

// Rank scores every document vector and sorts best first. Equal scores keep
// the order of docs.
func Rank(docs []vector.DocVector, query vector.Vector) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(docs))
	for _, d := range docs {
		result = append(result, ScoredDoc{
			DocID: d.DocID,
			Score: Score(d, query),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result
}

// Top returns at most k leading results of an already ranked slice.
func Top(ranked []ScoredDoc, k int) []ScoredDoc {
	if k >= 0 && len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
