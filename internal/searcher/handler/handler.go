// Package handler exposes the retrieval engine over HTTP.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/query"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/cache"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/ranker"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/stats"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
	apperrors "github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/logger"
)

// Evaluator is satisfied by *retrieval.Engine.
type Evaluator interface {
	Evaluate(q query.Query) retrieval.Result
	Policy() weighting.Policy
	Stats() *stats.Stats
}

type SearchResponse struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	Weighting string             `json:"weighting"`
	Results   []ranker.ScoredDoc `json:"results"`
	CacheHit  bool               `json:"cache_hit"`
	LatencyMs int64              `json:"latency_ms"`
}

type StatsResponse struct {
	Weighting  string `json:"weighting"`
	Documents  int    `json:"documents"`
	Vocabulary int    `json:"vocabulary"`
	IDF        bool   `json:"idf"`
	ResultSize int    `json:"result_limit"`
}

type Handler struct {
	engine    Evaluator
	cache     *cache.ResultCache
	collector *analytics.Collector
	tokenize  query.Options
	logger    *slog.Logger
}

// New builds a handler. resultCache and collector may be nil.
func New(engine Evaluator, resultCache *cache.ResultCache, collector *analytics.Collector, opts query.Options) *Handler {
	return &Handler{
		engine:    engine,
		cache:     resultCache,
		collector: collector,
		tokenize:  opts,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Paths lists the routes for metrics labelling.
func Paths() []string {
	return []string{"/api/v1/search", "/api/v1/stats", "/api/v1/cache/stats", "/api/v1/cache/invalidate"}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	text := r.URL.Query().Get("q")
	if text == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	policy := h.engine.Policy()
	terms := query.Tokenize(text, h.tokenize)
	resp := SearchResponse{
		Query:     text,
		Terms:     terms,
		Weighting: policy.String(),
		Results:   []ranker.ScoredDoc{},
	}
	if len(terms) == 0 {
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	var res retrieval.Result
	if h.cache != nil {
		res, resp.CacheHit = h.cache.GetOrCompute(ctx, policy, terms, func() retrieval.Result {
			return h.engine.Evaluate(query.Query{Terms: terms})
		})
	} else {
		res = h.engine.Evaluate(query.Query{Terms: terms})
	}
	if res.Docs != nil {
		resp.Results = res.Docs
	}
	resp.LatencyMs = time.Since(start).Milliseconds()

	log.Info("search completed",
		"query", text,
		"terms", len(terms),
		"returned", len(resp.Results),
		"cache_hit", resp.CacheHit,
		"latency_ms", resp.LatencyMs,
	)
	if h.collector != nil {
		res.Latency = time.Since(start)
		ev := analytics.NewRetrievalEvent(res, terms, policy.String(), resp.CacheHit)
		ev.RequestID = logger.RequestID(ctx)
		h.collector.Track(ev)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Stats()
	h.writeJSON(w, http.StatusOK, StatsResponse{
		Weighting:  h.engine.Policy().String(),
		Documents:  s.NumDocs(),
		Vocabulary: s.Vocabulary(),
		IDF:        s.HasIDF(),
		ResultSize: retrieval.ResultLimit,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	msg := http.StatusText(status)
	if appErr, ok := err.(*apperrors.AppError); ok {
		msg = appErr.Message
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}
