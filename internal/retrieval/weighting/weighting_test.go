package weighting

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

type idfTable map[string]float64

func (t idfTable) IDF(term string) (float64, bool) {
	v, ok := t[term]
	return v, ok
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"binary", Binary},
		{"BINARY", Binary},
		{"tf", RawFrequency},
		{"raw", RawFrequency},
		{"RawFrequency", RawFrequency},
		{"tfidf", TfIdf},
		{" tf-idf ", TfIdf},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if err != nil {
			t.Errorf("ParsePolicy(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "bm25", "idf"} {
		if _, err := ParsePolicy(bad); !errors.Is(err, apperrors.ErrUnknownWeighting) {
			t.Errorf("ParsePolicy(%q) error = %v, want ErrUnknownWeighting", bad, err)
		}
	}
}

func TestPolicyString(t *testing.T) {
	for _, p := range []Policy{Binary, RawFrequency, TfIdf} {
		back, err := ParsePolicy(p.String())
		if err != nil || back != p {
			t.Errorf("String/Parse mismatch for %d: %q", int(p), p.String())
		}
		if !p.Valid() {
			t.Errorf("%v should be valid", p)
		}
	}
	if Policy(0).Valid() || Policy(9).Valid() {
		t.Errorf("out-of-range policies must be invalid")
	}
	if !TfIdf.NeedsIDF() || Binary.NeedsIDF() || RawFrequency.NeedsIDF() {
		t.Errorf("only TfIdf needs idf")
	}
}

func TestWeight(t *testing.T) {
	idf := idfTable{"rare": math.Log10(4), "everywhere": 0}
	tests := []struct {
		name   string
		policy Policy
		raw    int
		term   string
		want   float64
	}{
		{"binary present", Binary, 7, "rare", 1},
		{"binary absent", Binary, 0, "rare", 0},
		{"binary unknown term", Binary, 2, "zzz", 1},
		{"tf identity", RawFrequency, 7, "rare", 7},
		{"tf unknown term", RawFrequency, 3, "zzz", 3},
		{"tfidf", TfIdf, 3, "rare", 3 * math.Log10(4)},
		{"tfidf idf zero", TfIdf, 12, "everywhere", 0},
		{"tfidf unknown term", TfIdf, 5, "zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.policy, idf)
			if got := w.Weight(tt.raw, tt.term); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Weight(%d, %q) = %v, want %v", tt.raw, tt.term, got, tt.want)
			}
		})
	}
}

func TestTfIdfWithoutTable(t *testing.T) {
	if got := New(TfIdf, nil).Weight(4, "rare"); got != 0 {
		t.Errorf("missing idf table should weigh 0, got %v", got)
	}
}
