// Package analytics publishes retrieval events to Kafka without putting the
// broker on the query path.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/vsm-retrieval/pkg/kafka"
)

const defaultBufferSize = 10000

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Collector struct {
	publisher Publisher
	eventCh   chan RetrievalEvent
	logger    *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	dropped   atomic.Int64
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan RetrievalEvent, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start runs the publish loop until Close is called or ctx is cancelled.
// Events still buffered at that point are flushed with a background context.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event and never blocks. Events are dropped when the buffer
// is full or the collector is closed.
func (c *Collector) Track(event RetrievalEvent) {
	if c.closed.Load() {
		c.dropped.Add(1)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
		c.logger.Warn("retrieval event dropped (buffer full)", "query_id", event.QueryID)
	}
}

// Dropped returns how many events Track discarded.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and waits for the loop to flush. Track must
// not race with Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.eventCh)
	})
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event RetrievalEvent) {
	if err := c.publisher.Publish(ctx, kafka.Event{Key: event.key(), Value: event}); err != nil {
		c.logger.Error("failed to publish retrieval event", "query_id", event.QueryID, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
