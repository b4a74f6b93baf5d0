package ranker

import (
	"fmt"
	"math"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/vector"
)

func TestCosine(t *testing.T) {
	q := vector.Vector{"cat": 2, "dog": 1}
	tests := []struct {
		name string
		doc  vector.Vector
		want float64
	}{
		{"single shared term", vector.Vector{"cat": 2}, 2},
		{"two shared terms", vector.Vector{"cat": 1, "dog": 1}, 3 / math.Sqrt(2)},
		{"doc-only term widens norm", vector.Vector{"dog": 3, "emu": 4}, 3.0 / 5.0},
		{"no overlap", vector.Vector{"emu": 4}, 0},
		{"empty document", vector.Vector{}, 0},
		{"all zero document", vector.Vector{"cat": 0, "dog": 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.doc, q); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineIgnoresQueryNorm(t *testing.T) {
	doc := vector.Vector{"cat": 1}
	small := Cosine(doc, vector.Vector{"cat": 1})
	large := Cosine(doc, vector.Vector{"cat": 1, "dog": 100})
	if small != large {
		t.Errorf("query-only terms changed the score: %v vs %v", small, large)
	}
}

func TestRankStableOnTies(t *testing.T) {
	docs := []vector.DocVector{
		{DocID: 30, Weights: vector.Vector{"a": 1}},
		{DocID: 10, Weights: vector.Vector{"a": 1, "b": 1}},
		{DocID: 20, Weights: vector.Vector{"a": 5}},
		{DocID: 5, Weights: vector.Vector{"c": 1}},
	}
	got := Rank(docs, vector.Vector{"a": 1, "b": 1})
	wantIDs := []int{10, 30, 20, 5}
	for i, id := range wantIDs {
		if got[i].DocID != id {
			t.Fatalf("rank %d = doc %d, want %d (full: %+v)", i, got[i].DocID, id, got)
		}
	}
	if got[3].Score != 0 {
		t.Errorf("non-overlapping doc should score 0, got %v", got[3].Score)
	}
}

func TestEqualVectorsScoreIdentically(t *testing.T) {
	weights := func() vector.Vector { return vector.Vector{"a": 0.1, "b": 0.2, "c": 0.3, "d": 0.7, "e": 1.3} }
	q := vector.Vector{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}
	want := Cosine(weights(), q)
	for i := 0; i < 2000; i++ {
		if got := Cosine(weights(), q); got != want {
			t.Fatalf("call %d: Cosine = %v, want %v", i, got, want)
		}
		docs := []vector.DocVector{
			{DocID: 8, Weights: weights()},
			{DocID: 4, Weights: weights(), Terms: []string{"a", "b", "c", "d", "e"}},
			{DocID: 6, Weights: weights()},
		}
		ranked := Rank(docs, q)
		if ranked[0].DocID != 8 || ranked[1].DocID != 4 || ranked[2].DocID != 6 {
			t.Fatalf("call %d: tie order = %+v", i, ranked)
		}
		if ranked[0].Score != ranked[2].Score {
			t.Fatalf("call %d: equal vectors scored %v and %v", i, ranked[0].Score, ranked[2].Score)
		}
	}
}

func TestTop(t *testing.T) {
	ranked := make([]ScoredDoc, 15)
	if len(Top(ranked, 10)) != 10 {
		t.Errorf("Top should truncate to k")
	}
	if len(Top(ranked[:3], 10)) != 3 {
		t.Errorf("Top should keep shorter slices")
	}
}

func BenchmarkRank(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, numDocs := range sizes {
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			docs := make([]vector.DocVector, numDocs)
			for i := range docs {
				docs[i] = vector.DocVector{
					DocID:   i,
					Weights: vector.Vector{"search": float64(i%10 + 1), "engine": float64(i % 3)},
				}
			}
			q := vector.Vector{"search": 1, "engine": 2}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ranked := Rank(docs, q)
				_ = ranked
			}
		})
	}
}
