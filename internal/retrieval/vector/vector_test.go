package vector

import (
	"math"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/stats"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
)

func catDogIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.FromMap(map[string]map[int]int{
		"cat": {1: 2, 2: 1},
		"dog": {2: 1, 3: 3},
		"emu": {4: 6},
	})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func builderFor(t *testing.T, idx *index.Index, p weighting.Policy) *Builder {
	t.Helper()
	return NewBuilder(idx, weighting.New(p, stats.Compute(idx, p.NeedsIDF())))
}

func TestCountTerms(t *testing.T) {
	got := CountTerms([]string{"cat", "dog", "cat", "zzz"})
	if got["cat"] != 2 || got["dog"] != 1 || got["zzz"] != 1 || len(got) != 3 {
		t.Errorf("CountTerms = %v", got)
	}
}

func TestCandidatesFollowIndexOrder(t *testing.T) {
	b := builderFor(t, catDogIndex(t), weighting.RawFrequency)
	got := b.Candidates([]string{"zzz", "dog", "cat", "dog"})
	if len(got) != 2 || got[0].Term != "cat" || got[1].Term != "dog" {
		t.Fatalf("Candidates = %+v, want [cat dog]", got)
	}
	if len(b.Candidates(nil)) != 0 {
		t.Errorf("empty query must have no candidates")
	}
}

func TestDocumentsRawFrequency(t *testing.T) {
	b := builderFor(t, catDogIndex(t), weighting.RawFrequency)
	docs, q := b.Build([]string{"cat", "cat", "dog"})

	wantOrder := []int{1, 2, 3}
	if len(docs) != len(wantOrder) {
		t.Fatalf("got %d document vectors, want %d", len(docs), len(wantOrder))
	}
	for i, id := range wantOrder {
		if docs[i].DocID != id {
			t.Errorf("docs[%d].DocID = %d, want %d", i, docs[i].DocID, id)
		}
	}
	want := map[int]Vector{
		1: {"cat": 2},
		2: {"cat": 1, "dog": 1},
		3: {"dog": 3},
	}
	for _, d := range docs {
		if !equal(d.Weights, want[d.DocID]) {
			t.Errorf("doc %d vector = %v, want %v", d.DocID, d.Weights, want[d.DocID])
		}
	}
	if !equal(q, Vector{"cat": 2, "dog": 1}) {
		t.Errorf("query vector = %v", q)
	}
	if got := docs[1].Terms; len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Errorf("doc 2 terms = %v, want candidate order [cat dog]", got)
	}
}

func TestBinaryWeightsAreOne(t *testing.T) {
	b := builderFor(t, catDogIndex(t), weighting.Binary)
	docs, q := b.Build([]string{"cat", "cat", "cat", "emu", "dog"})
	for _, d := range docs {
		for term, w := range d.Weights {
			if w != 1 {
				t.Errorf("doc %d term %q weight = %v, want 1", d.DocID, term, w)
			}
		}
	}
	if q["cat"] != 1 {
		t.Errorf("repeated binary query term weight = %v, want 1", q["cat"])
	}
}

func TestTfIdfQueryVector(t *testing.T) {
	idx := catDogIndex(t)
	b := builderFor(t, idx, weighting.TfIdf)
	q := b.Query([]string{"emu", "emu", "zzz"})
	if want := 2 * math.Log10(4.0/1.0); math.Abs(q["emu"]-want) > 1e-12 {
		t.Errorf("q[emu] = %v, want %v", q["emu"], want)
	}
	if w, ok := q["zzz"]; !ok || w != 0 {
		t.Errorf("unknown query term should be present with weight 0, got %v (present=%v)", w, ok)
	}
}

func TestZeroOverlapMaterialisesNothing(t *testing.T) {
	b := builderFor(t, catDogIndex(t), weighting.TfIdf)
	docs, _ := b.Build([]string{"zzz", "yyy"})
	if len(docs) != 0 {
		t.Errorf("expected no document vectors, got %+v", docs)
	}
}

func equal(a, b Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || math.Abs(v-w) > 1e-12 {
			return false
		}
	}
	return true
}
