package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("parsing query: %w", ErrInvalidInput), http.StatusBadRequest},
		{"unknown weighting", ErrUnknownWeighting, http.StatusBadRequest},
		{"empty corpus", fmt.Errorf("building engine: %w", ErrEmptyCorpus), http.StatusServiceUnavailable},
		{"index unavailable", ErrIndexUnavailable, http.StatusServiceUnavailable},
		{"timeout", ErrTimeout, http.StatusGatewayTimeout},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"app error wins", Newf(ErrInvalidInput, http.StatusTeapot, "q=%q", ""), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := New(ErrEmptyCorpus, http.StatusServiceUnavailable, "tfidf needs at least one document")
	if !Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected AppError to unwrap to ErrEmptyCorpus")
	}
	want := "empty corpus: tfidf needs at least one document"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
