package query

import (
	"strings"
	"testing"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Vector space retrieval weights every query term and every document term,
        then ranks documents by the cosine between the two vectors. Rare terms
        carry more weight than common ones when inverse document frequency is on.`,
	"long": strings.Repeat(`Information retrieval systems normalise text into searchable
        terms with tokenization, stemming and stop word removal. The inverted index
        maps each term to the documents containing it along with raw frequencies. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	modes := map[string]Options{
		"plain":    {},
		"stopword": {RemoveStopwords: true},
		"stemmed":  {Stem: true, RemoveStopwords: true},
	}
	for mode, opts := range modes {
		for name, text := range sampleTexts {
			b.Run(mode+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(text)))
				for i := 0; i < b.N; i++ {
					_ = Tokenize(text, opts)
				}
			})
		}
	}
}
