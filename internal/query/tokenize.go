// Package query turns raw query text into the ordered term sequences the
// retrieval engine evaluates. It lower-cases input, splits on non-alphanumeric
// boundaries and can optionally drop stop-words and apply the Snowball English
// stemmer so queries match an index built with the same normalisation.
package query

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Options mirrors config.QueryConfig.
type Options struct {
	Stem            bool
	RemoveStopwords bool
}

// Tokenize returns the terms of text in order. Repeated words are kept
// because they carry raw query frequency.
func Tokenize(text string, opts Options) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if opts.RemoveStopwords {
			if _, isStop := stopWords[word]; isStop {
				continue
			}
		}
		if opts.Stem {
			stemmed, err := snowball.Stem(word, "english", false)
			if err == nil && stemmed != "" {
				word = stemmed
			}
		}
		terms = append(terms, word)
	}
	return terms
}
