// Package weighting maps raw term frequencies to vector weights. The policy is
// chosen once per engine and used for both document and query vectors.
package weighting

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
)

type Policy int

const (
	Binary Policy = iota + 1
	RawFrequency
	TfIdf
)

// ParsePolicy accepts the identifiers used in configuration and on the
// command line: binary, tf (raw, rawfrequency) and tfidf (tf-idf).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return Binary, nil
	case "tf", "raw", "rawfrequency":
		return RawFrequency, nil
	case "tfidf", "tf-idf":
		return TfIdf, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, apperrors.ErrUnknownWeighting)
	}
}

func (p Policy) String() string {
	switch p {
	case Binary:
		return "binary"
	case RawFrequency:
		return "tf"
	case TfIdf:
		return "tfidf"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func (p Policy) Valid() bool {
	return p >= Binary && p <= TfIdf
}

// NeedsIDF reports whether the policy reads the corpus idf table.
func (p Policy) NeedsIDF() bool {
	return p == TfIdf
}

// IDFSource is satisfied by *stats.Stats.
type IDFSource interface {
	IDF(term string) (float64, bool)
}

// Weighter applies one Policy. The zero value is not usable; build it with New.
type Weighter struct {
	policy Policy
	idf    IDFSource
}

// New returns a Weighter for p. idf may be nil unless p is TfIdf.
func New(p Policy, idf IDFSource) Weighter {
	return Weighter{policy: p, idf: idf}
}

func (w Weighter) Policy() Policy {
	return w.policy
}

// Weight maps the raw frequency of term to its vector weight. Under TfIdf a
// term without a defined idf weighs 0.
func (w Weighter) Weight(raw int, term string) float64 {
	switch w.policy {
	case Binary:
		if raw > 0 {
			return 1
		}
		return 0
	case RawFrequency:
		return float64(raw)
	case TfIdf:
		if w.idf == nil {
			return 0
		}
		idf, ok := w.idf.IDF(term)
		if !ok {
			return 0
		}
		return float64(raw) * idf
	default:
		return 0
	}
}
