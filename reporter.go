package zipkintracer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eapache/queue"
	"github.com/pkg/errors"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

const (
	defaultStopDelay        = 2 * time.Second
	defaultTickInterval     = 100 * time.Millisecond
	defaultLogErrorInterval = 5 * time.Second
)

// ErrReporterClosed is returned by a second call to Reporter.Close.
var ErrReporterClosed = errors.New("zipkin: reporter already closed")

// Reporter is a SpanRecorder that encodes finished spans and hands them to a
// Collector. Spans are queued without bound by any number of goroutines and
// consumed by a single goroutine owning the collector, so span finishing never
// blocks on the transport.
type Reporter struct {
	collector    Collector
	endpoint     *zipkincore.Endpoint
	logger       Logger
	errLogger    *StateLogger
	errInterval  time.Duration
	metrics      *Metrics
	clock        clock.Clock
	stopDelay    time.Duration
	tickInterval time.Duration

	mtx    sync.Mutex // protects the fields below
	queue  *queue.Queue
	closed bool

	notify chan struct{}
	quit   chan struct{}
	done   chan struct{}
	err    error
}

// ReporterOption sets a parameter for the Reporter.
type ReporterOption func(r *Reporter)

// ReporterLogger sets the logger used for collector errors and dropped
// spans. By default, a no-op logger is used.
func ReporterLogger(logger Logger) ReporterOption {
	return func(r *Reporter) { r.logger = logger }
}

// ReporterLogErrorInterval sets how long a repeated collector error is kept
// out of the log. The default is 5 seconds.
func ReporterLogErrorInterval(d time.Duration) ReporterOption {
	return func(r *Reporter) { r.errInterval = d }
}

// ReporterStopDelay bounds how long Close keeps draining queued spans. Spans
// still queued afterwards are dropped. The default is 2 seconds.
func ReporterStopDelay(d time.Duration) ReporterOption {
	return func(r *Reporter) { r.stopDelay = d }
}

// ReporterTickInterval sets how often an idle reporter gives the collector
// a chance to lazily flush. The default is 100 milliseconds.
func ReporterTickInterval(d time.Duration) ReporterOption {
	return func(r *Reporter) { r.tickInterval = d }
}

// ReporterMetrics records dropped spans in m.
func ReporterMetrics(m *Metrics) ReporterOption {
	return func(r *Reporter) { r.metrics = m }
}

// ReporterClock sets the clock driving ticks and the stop delay.
func ReporterClock(clk clock.Clock) ReporterOption {
	return func(r *Reporter) { r.clock = clk }
}

// NewReporter starts a reporter sending spans to collector, attributed to the
// local endpoint. The reporter owns the collector and closes it on Close.
func NewReporter(collector Collector, endpoint *zipkincore.Endpoint, options ...ReporterOption) *Reporter {
	r := newReporter(collector, endpoint, options...)
	go r.loop()
	return r
}

func newReporter(collector Collector, endpoint *zipkincore.Endpoint, options ...ReporterOption) *Reporter {
	r := &Reporter{
		collector:    collector,
		endpoint:     endpoint,
		logger:       NewNopLogger(),
		errInterval:  defaultLogErrorInterval,
		clock:        clock.New(),
		stopDelay:    defaultStopDelay,
		tickInterval: defaultTickInterval,
		queue:        queue.New(),
		notify:       make(chan struct{}, 1),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, option := range options {
		option(r)
	}
	r.errLogger = newStateLogger(r.logger, r.errInterval, r.clock)
	return r
}

// RecordSpan implements SpanRecorder. Spans that are neither sampled nor
// debug are dropped, as are spans recorded after Close.
func (r *Reporter) RecordSpan(sp RawSpan) {
	if !sp.Context.Sampled && !sp.Context.Debug {
		r.metrics.spansDropped("unsampled", 1)
		return
	}

	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		r.metrics.spansDropped("closed", 1)
		return
	}
	r.queue.Add(sp)
	r.mtx.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Close stops the reporter. Queued spans are drained for at most the stop
// delay, then the collector is closed and its error returned.
func (r *Reporter) Close() error {
	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		return ErrReporterClosed
	}
	r.closed = true
	r.mtx.Unlock()

	close(r.quit)
	<-r.done
	return r.err
}

func (r *Reporter) loop() {
	defer close(r.done)

	ticker := r.clock.Ticker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.notify:
			r.drain(time.Time{})
		case <-ticker.C:
			r.lazyFlush()
		case <-r.quit:
			r.shutdown()
			return
		}
	}
}

// drain reports queued spans until the queue is empty. Without a deadline it
// yields to a pending Close, with one it stops once the deadline has passed.
func (r *Reporter) drain(deadline time.Time) {
	for {
		if deadline.IsZero() {
			select {
			case <-r.quit:
				return
			default:
			}
		} else if !r.clock.Now().Before(deadline) {
			return
		}
		sp, ok := r.pop()
		if !ok {
			return
		}
		r.report(sp)
	}
}

func (r *Reporter) pop() (RawSpan, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.queue.Length() == 0 {
		return RawSpan{}, false
	}
	return r.queue.Remove().(RawSpan), true
}

func (r *Reporter) report(sp RawSpan) {
	if err := r.collector.Collect(EncodeSpan(sp, r.endpoint)); err != nil {
		r.errLogger.LogError(err)
	}
	r.lazyFlush()
}

func (r *Reporter) lazyFlush() {
	if err := r.collector.LazyFlush(); err != nil {
		r.errLogger.LogError(err)
		return
	}
	r.errLogger.Fixed("msg", "collector recovered")
}

func (r *Reporter) shutdown() {
	r.drain(r.clock.Now().Add(r.stopDelay))

	r.mtx.Lock()
	dropped := r.queue.Length()
	r.queue = queue.New()
	r.mtx.Unlock()
	if dropped > 0 {
		r.logger.Log("msg", "stop delay exceeded, dropping spans", "dropped", dropped)
		r.metrics.spansDropped("stop_delay", dropped)
	}

	r.err = r.collector.Close()
}
