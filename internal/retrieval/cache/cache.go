// Package cache memoises evaluated query results in Redis. Keys are derived from the
// weighting policy and the query's term multiset, so term order does not
// matter but repetition does.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/internal/retrieval/weighting"
	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/metrics"
)

const keyPrefix = "vsm:"

// Store is satisfied by *redis.Client.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type ResultCache struct {
	store   Store
	isMiss  func(error) bool
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New builds a cache over store. isMiss tells a plain key-not-found apart
// from a store failure; m may be nil.
func New(store Store, isMiss func(error) bool, ttl time.Duration, m *metrics.Metrics) *ResultCache {
	return &ResultCache{
		store:   store,
		isMiss:  isMiss,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Get returns the cached result for the query. Latency is not stored.
func (c *ResultCache) Get(ctx context.Context, policy weighting.Policy, terms []string) (retrieval.Result, bool) {
	key := BuildKey(policy, terms)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !c.isMiss(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return retrieval.Result{}, false
	}
	var res retrieval.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return retrieval.Result{}, false
	}
	c.recordHit()
	c.logger.Debug("cache hit", "key", key)
	return res, true
}

func (c *ResultCache) Set(ctx context.Context, policy weighting.Policy, terms []string, res retrieval.Result) {
	key := BuildKey(policy, terms)
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes it once per key even
// under concurrent callers, who all receive the same Result. The bool
// reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	policy weighting.Policy,
	terms []string,
	compute func() retrieval.Result,
) (retrieval.Result, bool) {
	if res, ok := c.Get(ctx, policy, terms); ok {
		return res, true
	}
	key := BuildKey(policy, terms)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		res := compute()
		c.Set(ctx, policy, terms, res)
		return res, nil
	})
	return val.(retrieval.Result), false
}

// Invalidate drops every cached result.
func (c *ResultCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *ResultCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey sorts a copy of terms so ["dog","cat","cat"] and
// ["cat","dog","cat"] share a key.
func BuildKey(policy weighting.Policy, terms []string) string {
	sorted := append([]string(nil), terms...)
	sort.Strings(sorted)
	raw := policy.String() + "|" + strings.Join(sorted, "\x1f")
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
