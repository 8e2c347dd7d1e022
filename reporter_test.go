package zipkintracer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

// syncCollector is a stubCollector safe to inspect while a reporter runs.
type syncCollector struct {
	mtx sync.Mutex
	stubCollector
}

func (c *syncCollector) Collect(s *zipkincore.Span) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stubCollector.Collect(s)
}

func (c *syncCollector) LazyFlush() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stubCollector.LazyFlush()
}

func (c *syncCollector) Flush() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stubCollector.Flush()
}

func (c *syncCollector) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stubCollector.Close()
}

func (c *syncCollector) snapshot() stubCollector {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.stubCollector
}

type logRecorder struct {
	mtx   sync.Mutex
	lines [][]interface{}
}

func (l *logRecorder) Log(keyvals ...interface{}) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.lines = append(l.lines, keyvals)
	return nil
}

func (l *logRecorder) all() [][]interface{} {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return append([][]interface{}(nil), l.lines...)
}

func TestReporterReportsSpans(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := &syncCollector{}
	r := NewReporter(c, testEndpoint)
	tracer := newTracer(r)

	sp := tracer.StartSpan("op")
	sp.SetTag("k", "v")
	sp.Finish()
	require.NoError(t, r.Close())

	got := c.snapshot()
	require.Len(t, got.collected, 1)
	zs := got.collected[0]
	assert.Equal(t, "op", zs.Name)
	require.Len(t, zs.BinaryAnnotations, 1)
	assert.Equal(t, testEndpoint, zs.BinaryAnnotations[0].Host)
	assert.Equal(t, 1, got.close)
	assert.GreaterOrEqual(t, got.lazy, 1)
}

func TestReporterSamplingDecision(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := &syncCollector{}
	metrics := NewMetrics()
	r := NewReporter(c, testEndpoint, ReporterMetrics(metrics))

	r.RecordSpan(RawSpan{Context: model.SpanContext{SpanID: 1, Sampled: false}})
	r.RecordSpan(RawSpan{Context: model.SpanContext{SpanID: 2, Sampled: false, Debug: true}})
	r.RecordSpan(RawSpan{Context: model.SpanContext{SpanID: 3, Sampled: true}})
	require.NoError(t, r.Close())

	var ids []int64
	for _, s := range c.snapshot().collected {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{2, 3}, ids)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.dropped.WithLabelValues("unsampled")))
}

func TestReporterConcurrentProducers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := &syncCollector{}
	r := NewReporter(c, nil, ReporterStopDelay(time.Minute))
	tracer := newTracer(r)

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				tracer.StartSpan("op").Finish()
			}
		}()
	}
	wg.Wait()
	require.NoError(t, r.Close())

	if want, have := producers*perProducer, len(c.snapshot().collected); want != have {
		t.Errorf("want %d spans, have %d", want, have)
	}
}

func TestReporterCloseTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := &syncCollector{}
	r := NewReporter(c, nil)
	require.NoError(t, r.Close())
	if want, have := ErrReporterClosed, r.Close(); want != have {
		t.Errorf("want %v, have %v", want, have)
	}

	r.RecordSpan(RawSpan{Context: model.NewSpanContext()})
	snap := c.snapshot()
	assert.Empty(t, snap.collected)
	assert.Equal(t, 1, snap.close)
}

func TestReporterCloseError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	want := errors.New("final flush failed")
	r := NewReporter(&syncCollector{stubCollector: stubCollector{err: want}}, nil)
	if have := r.Close(); want != have {
		t.Errorf("want %v, have %v", want, have)
	}
}

func TestReporterLogsCollectorErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	logs := &logRecorder{}
	c := &syncCollector{stubCollector: stubCollector{err: errors.New("unreachable")}}
	r := NewReporter(c, nil, ReporterLogger(logs))

	for i := 0; i < 5; i++ {
		r.RecordSpan(RawSpan{Context: model.NewSpanContext()})
	}
	assert.Error(t, r.Close())

	// the same error is logged once per interval
	lines := logs.all()
	require.Len(t, lines, 1)
	assert.Equal(t, []interface{}{"err", "unreachable"}, lines[0])
}

func TestReporterTicksLazyFlush(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clk := clock.NewMock()
	c := &syncCollector{}
	r := NewReporter(c, nil, ReporterClock(clk), ReporterTickInterval(time.Second))

	require.Eventually(t, func() bool {
		clk.Add(time.Second)
		return c.snapshot().lazy > 0
	}, time.Second, time.Millisecond)
	require.NoError(t, r.Close())
}

func TestReporterStopDelay(t *testing.T) {
	logs := &logRecorder{}
	c := &stubCollector{}
	metrics := NewMetrics()
	r := newReporter(c, nil,
		ReporterClock(clock.NewMock()),
		ReporterStopDelay(0),
		ReporterLogger(logs),
		ReporterMetrics(metrics),
	)
	for i := 0; i < 3; i++ {
		r.RecordSpan(RawSpan{Context: model.NewSpanContext()})
	}

	r.shutdown()
	assert.Empty(t, c.collected)
	assert.Equal(t, 1, c.close)
	require.Len(t, logs.all(), 1)
	assert.Equal(t, []interface{}{"msg", "stop delay exceeded, dropping spans", "dropped", 3}, logs.all()[0])
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.dropped.WithLabelValues("stop_delay")))
}

func TestReporterDrainsWithinStopDelay(t *testing.T) {
	c := &stubCollector{}
	r := newReporter(c, nil, ReporterClock(clock.NewMock()), ReporterStopDelay(time.Second))
	for i := 0; i < 3; i++ {
		r.RecordSpan(RawSpan{Context: model.NewSpanContext()})
	}

	r.shutdown()
	assert.Len(t, c.collected, 3)
	assert.NoError(t, r.err)
}
