package analytics

import (
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
)

// RetrievalEvent describes one evaluated query. TopDocID is -1 when nothing
// was returned. Batch queries carry their QueryID; HTTP queries are
// identified by RequestID instead.
type RetrievalEvent struct {
	QueryID    string    `json:"query_id,omitempty"`
	Terms      []string  `json:"terms"`
	Weighting  string    `json:"weighting"`
	Candidates int       `json:"candidates"`
	Returned   int       `json:"returned"`
	TopDocID   int       `json:"top_doc_id"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// NewRetrievalEvent summarises res for publishing.
func NewRetrievalEvent(res retrieval.Result, terms []string, weighting string, cacheHit bool) RetrievalEvent {
	top := -1
	if len(res.Docs) > 0 {
		top = res.Docs[0].DocID
	}
	return RetrievalEvent{
		QueryID:    res.QueryID,
		Terms:      terms,
		Weighting:  weighting,
		Candidates: res.Candidates,
		Returned:   len(res.Docs),
		TopDocID:   top,
		LatencyMs:  res.Latency.Milliseconds(),
		CacheHit:   cacheHit,
		Timestamp:  time.Now().UTC(),
	}
}

// key routes events for the same query to the same partition.
func (e RetrievalEvent) key() string {
	if e.QueryID != "" {
		return e.QueryID
	}
	return e.Weighting + ":" + strconv.Itoa(len(e.Terms))
}
