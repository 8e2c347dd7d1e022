package zipkintracer

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

const (
	defaultFlushCount   = 1000
	defaultFlushTimeout = time.Second
)

// Collector represents a Zipkin trace collector, which is probably a set of
// remote endpoints. Collectors buffer spans and send them on flush. They are
// meant to be driven by a single goroutine, such as the Reporter's, and are
// not safe for concurrent use.
type Collector interface {
	// Collect buffers a span. It never blocks on the transport.
	Collect(*zipkincore.Span) error
	// LazyFlush sends the buffered spans when the flush threshold or the
	// flush timeout is exceeded.
	LazyFlush() error
	// Flush sends the buffered spans unconditionally.
	Flush() error
	// Close performs a final flush and releases the transport.
	Close() error
}

// MustClose closes c and panics on failure. It is meant to be deferred:
//
//	defer zipkintracer.MustClose(collector)
//
// When the goroutine is already panicking, the close is best-effort, its error
// is dropped and the original panic resumes.
func MustClose(c Collector) {
	if r := recover(); r != nil {
		_ = c.Close()
		panic(r)
	}
	if err := c.Close(); err != nil {
		panic(err)
	}
}

// spanBuffer holds the spans of a collector between flushes and decides when
// a lazy flush is due.
type spanBuffer struct {
	transport    string
	spans        []*zipkincore.Span
	flushCount   int
	flushTimeout time.Duration
	clock        clock.Clock
	lastFlush    time.Time
	metrics      *Metrics
	send         func([]*zipkincore.Span) error
}

func newSpanBuffer(transport string, send func([]*zipkincore.Span) error) *spanBuffer {
	return &spanBuffer{
		transport:    transport,
		flushCount:   defaultFlushCount,
		flushTimeout: defaultFlushTimeout,
		clock:        clock.New(),
		send:         send,
	}
}

// start must be called once options have been applied.
func (b *spanBuffer) start() {
	b.lastFlush = b.clock.Now()
}

func (b *spanBuffer) Collect(s *zipkincore.Span) error {
	b.spans = append(b.spans, s)
	b.metrics.spanCollected(b.transport)
	return nil
}

func (b *spanBuffer) LazyFlush() error {
	if len(b.spans) > b.flushCount || b.clock.Since(b.lastFlush) > b.flushTimeout {
		return b.Flush()
	}
	return nil
}

func (b *spanBuffer) Flush() error {
	spans := b.spans
	b.spans = nil
	b.lastFlush = b.clock.Now()
	if len(spans) == 0 {
		return nil
	}
	err := b.send(spans)
	b.metrics.flushDone(b.transport, len(spans), b.clock.Since(b.lastFlush), err)
	return err
}

func (b *spanBuffer) pending() int {
	return len(b.spans)
}

// NopCollector implements Collector but performs no work.
type NopCollector struct{}

// Collect implements Collector.
func (NopCollector) Collect(*zipkincore.Span) error { return nil }

// LazyFlush implements Collector.
func (NopCollector) LazyFlush() error { return nil }

// Flush implements Collector.
func (NopCollector) Flush() error { return nil }

// Close implements Collector.
func (NopCollector) Close() error { return nil }

// MultiCollector implements Collector by sending spans to all collectors.
type MultiCollector []Collector

// Collect implements Collector.
func (c MultiCollector) Collect(s *zipkincore.Span) error {
	return c.aggregateErrors(func(coll Collector) error { return coll.Collect(s) })
}

// LazyFlush implements Collector.
func (c MultiCollector) LazyFlush() error {
	return c.aggregateErrors(func(coll Collector) error { return coll.LazyFlush() })
}

// Flush implements Collector.
func (c MultiCollector) Flush() error {
	return c.aggregateErrors(func(coll Collector) error { return coll.Flush() })
}

// Close implements Collector.
func (c MultiCollector) Close() error {
	return c.aggregateErrors(func(coll Collector) error { return coll.Close() })
}

func (c MultiCollector) aggregateErrors(f func(c Collector) error) error {
	var err error
	for _, coll := range c {
		err = multierr.Append(err, f(coll))
	}
	return err
}
