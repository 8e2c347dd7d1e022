package zipkintracer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus metrics of the collectors and the reporter.
// Every collector labels its series with its transport name.
// A nil *Metrics records nothing.
type Metrics struct {
	collected *prometheus.CounterVec
	flushed   *prometheus.CounterVec
	flushes   *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	flushDur  *prometheus.HistogramVec
}

// NewMetrics creates the metrics. Register them with
// prometheus.MustRegister(m.PrometheusCollectors()...).
func NewMetrics() *Metrics {
	const (
		namespace = "zipkin"
		subsystem = "collector"
	)

	labels := []string{"transport"}

	return &Metrics{
		collected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "spans_collected_total",
			Help:      "Number of spans handed to a collector",
		}, labels),

		flushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "spans_flushed_total",
			Help:      "Number of spans sent by a collector",
		}, labels),

		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flushes_total",
			Help:      "Number of non empty flushes by result",
		}, append(labels, "result")),

		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "spans_dropped_total",
			Help:      "Number of spans dropped by the reporter",
		}, []string{"reason"}),

		flushDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "flush_duration_seconds",
			Help:      "Histogram of times spent flushing spans",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 5, 7),
		}, labels),
	}
}

// PrometheusCollectors returns every metric, ready for registration.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.collected,
		m.flushed,
		m.flushes,
		m.dropped,
		m.flushDur,
	}
}

func (m *Metrics) spanCollected(transport string) {
	if m == nil {
		return
	}
	m.collected.WithLabelValues(transport).Inc()
}

func (m *Metrics) flushDone(transport string, spans int, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.flushes.WithLabelValues(transport, result).Inc()
	m.flushDur.WithLabelValues(transport).Observe(took.Seconds())
	if err == nil {
		m.flushed.WithLabelValues(transport).Add(float64(spans))
	}
}

func (m *Metrics) spansDropped(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.WithLabelValues(reason).Add(float64(n))
}
