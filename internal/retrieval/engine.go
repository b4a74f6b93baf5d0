// Package retrieval ranks a fixed corpus against term queries with the vector
// space model. An Engine is built once from an immutable inverted index and a
// weighting policy; after that every method is a pure read and the engine may
// be shared by any number of goroutines.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/query"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/index"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/ranker"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/stats"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/vector"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/metrics"
)

// ResultLimit is the number of documents returned per query.
const ResultLimit = 10

// Result is the outcome of one query in a batch.
type Result struct {
	QueryID    string             `json:"query_id"`
	Docs       []ranker.ScoredDoc `json:"docs"`
	Candidates int                `json:"candidates"`
	Latency    time.Duration      `json:"-"`
}

type Engine struct {
	idx     *index.Index
	stats   *stats.Stats
	policy  weighting.Policy
	builder *vector.Builder
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Engine)

// WithWorkers bounds the goroutines ForQueries uses. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithMetrics records per-query observations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New scans idx once for corpus statistics and fixes the weighting policy.
// It fails for an unknown policy and for tf-idf over an empty corpus.
func New(idx *index.Index, policy weighting.Policy, opts ...Option) (*Engine, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("building engine with %v: %w", policy, apperrors.ErrUnknownWeighting)
	}
	if idx == nil {
		return nil, fmt.Errorf("building engine: nil index: %w", apperrors.ErrIndexUnavailable)
	}
	s := stats.Compute(idx, policy.NeedsIDF())
	if policy == weighting.TfIdf && s.NumDocs() == 0 {
		return nil, fmt.Errorf("idf is undefined without documents: %w", apperrors.ErrEmptyCorpus)
	}
	e := &Engine{
		idx:     idx,
		stats:   s,
		policy:  policy,
		builder: vector.NewBuilder(idx, weighting.New(policy, s)),
		workers: 1,
		logger:  slog.Default().With("component", "retrieval-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics != nil {
		e.metrics.CorpusDocuments.Set(float64(s.NumDocs()))
		e.metrics.VocabularyTerms.Set(float64(s.Vocabulary()))
	}
	e.logger.Info("retrieval engine ready",
		"weighting", policy.String(),
		"documents", s.NumDocs(),
		"terms", s.Vocabulary(),
		"postings", idx.PostingCount(),
	)
	return e, nil
}

// NewFromName parses the weighting identifier and calls New.
func NewFromName(idx *index.Index, name string, opts ...Option) (*Engine, error) {
	policy, err := weighting.ParsePolicy(name)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return New(idx, policy, opts...)
}

func (e *Engine) Policy() weighting.Policy {
	return e.policy
}

func (e *Engine) Stats() *stats.Stats {
	return e.stats
}

// RankAll returns every document sharing a term with q, best first, including
// documents whose similarity is 0. Equal scores keep first-seen order.
func (e *Engine) RankAll(q []string) []ranker.ScoredDoc {
	docs, qv := e.builder.Build(q)
	return ranker.Rank(docs, qv)
}

// Search returns up to ResultLimit documents with a positive similarity.
func (e *Engine) Search(q []string) []ranker.ScoredDoc {
	return e.Evaluate(query.Query{Terms: q}).Docs
}

// ForQuery returns the ids of up to ResultLimit best-matching documents. It
// never fails: empty or unknown-only queries give an empty slice.
func (e *Engine) ForQuery(q []string) []int {
	docs := e.Search(q)
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID
	}
	return ids
}

// ForQueries evaluates queries concurrently over the shared index. Results
// come back in input order; only cancellation of ctx makes it fail.
func (e *Engine) ForQueries(ctx context.Context, queries []query.Query) ([]Result, error) {
	results := make([]Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Evaluate(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating %d queries: %w", len(queries), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluating %d queries: %w", len(queries), err)
	}
	e.logger.Info("batch evaluated", "queries", len(queries), "workers", e.workers)
	return results, nil
}

// Evaluate ranks one query, keeping at most ResultLimit positive scores.
func (e *Engine) Evaluate(q query.Query) Result {
	start := time.Now()
	docs, qv := e.builder.Build(q.Terms)
	ranked := ranker.Rank(docs, qv)
	ranked = ranker.Top(positive(ranked), ResultLimit)
	res := Result{
		QueryID:    q.ID,
		Docs:       ranked,
		Candidates: len(docs),
		Latency:    time.Since(start),
	}
	e.observe(res)
	e.logger.Debug("query evaluated",
		"query_id", q.ID,
		"terms", len(q.Terms),
		"candidates", res.Candidates,
		"returned", len(res.Docs),
	)
	return res
}

// positive drops the zero-similarity tail of a ranked slice.
func positive(ranked []ranker.ScoredDoc) []ranker.ScoredDoc {
	n := len(ranked)
	for n > 0 && ranked[n-1].Score <= 0 {
		n--
	}
	return ranked[:n]
}

func (e *Engine) observe(res Result) {
	if e.metrics == nil {
		return
	}
	resultType := "hit"
	if len(res.Docs) == 0 {
		resultType = "zero_result"
	}
	e.metrics.QueriesTotal.WithLabelValues(e.policy.String(), resultType).Inc()
	e.metrics.QueryLatency.WithLabelValues(e.policy.String()).Observe(res.Latency.Seconds())
	e.metrics.ResultsCount.Observe(float64(len(res.Docs)))
	e.metrics.CandidateDocs.Observe(float64(res.Candidates))
}
