package main

import (
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	zipkintracer "github.com/openzipkin-contrib/zipkintracer-thrift"
)

const defaultBatchInterval = time.Second

var newTracer = zipkintracer.NewTracer

type config struct {
	ServiceName   string
	HostPort      string
	CollectorURL  string
	KafkaBrokers  []string
	KafkaTopic    string
	BatchSize     int
	BatchInterval time.Duration
	HTTPRetries   int
	B3            string
}

func loadConfig(v *viper.Viper) config {
	return config{
		ServiceName:   v.GetString("service-name"),
		HostPort:      v.GetString("host-port"),
		CollectorURL:  v.GetString("collector-url"),
		KafkaBrokers:  v.GetStringSlice("kafka-brokers"),
		KafkaTopic:    v.GetString("kafka-topic"),
		BatchSize:     v.GetInt("batch-size"),
		BatchInterval: v.GetDuration("batch-interval"),
		HTTPRetries:   v.GetInt("http-retries"),
		B3:            v.GetString("b3"),
	}
}

func newLogger(w io.Writer) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}
	config.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(d.String())
	}
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.DebugLevel,
	))
}

func b3Style(s string) (zipkintracer.B3InjectOption, error) {
	switch s {
	case "", "multi":
		return zipkintracer.B3InjectStandard, nil
	case "single":
		return zipkintracer.B3InjectSingle, nil
	case "both":
		return zipkintracer.B3InjectBoth, nil
	}
	return 0, errors.Errorf("unknown b3 style %q", s)
}

// newCollector builds the collectors named by cfg. Without any, spans are
// discarded.
func newCollector(cfg config, logger zipkintracer.Logger, metrics *zipkintracer.Metrics) (zipkintracer.Collector, error) {
	var collectors zipkintracer.MultiCollector

	if cfg.CollectorURL != "" {
		opts := []zipkintracer.HTTPOption{
			zipkintracer.HTTPLogger(logger),
			zipkintracer.HTTPBatchSize(cfg.BatchSize),
			zipkintracer.HTTPBatchInterval(cfg.BatchInterval),
			zipkintracer.HTTPMetrics(metrics),
		}
		if cfg.HTTPRetries > 0 {
			opts = append(opts, zipkintracer.HTTPClient(newRetryingClient(cfg.HTTPRetries)))
		}
		c, err := zipkintracer.NewHTTPCollector(cfg.CollectorURL, opts...)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}

	if len(cfg.KafkaBrokers) > 0 {
		c, err := zipkintracer.NewKafkaCollector(cfg.KafkaBrokers,
			zipkintracer.KafkaLogger(logger),
			zipkintracer.KafkaTopic(cfg.KafkaTopic),
			zipkintracer.KafkaBatchSize(cfg.BatchSize),
			zipkintracer.KafkaBatchInterval(cfg.BatchInterval),
			zipkintracer.KafkaMetrics(metrics),
		)
		if err != nil {
			return nil, multierr.Append(err, collectors.Close())
		}
		collectors = append(collectors, c)
	}

	switch len(collectors) {
	case 0:
		return zipkintracer.NopCollector{}, nil
	case 1:
		return collectors[0], nil
	}
	return collectors, nil
}

func newRetryingClient(retries int) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.Logger = nil
	return client.StandardClient()
}

// tracing bundles a tracer with the reporter feeding its collector.
type tracing struct {
	tracer   opentracing.Tracer
	reporter *zipkintracer.Reporter
	metrics  *zipkintracer.Metrics
}

func newTracing(cfg config, zl *zap.Logger) (*tracing, error) {
	logger := zipkintracer.NewZapLogger(zl)
	metrics := zipkintracer.NewMetrics()

	style, err := b3Style(cfg.B3)
	if err != nil {
		return nil, err
	}
	collector, err := newCollector(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	endpoint := zipkintracer.MakeEndpoint(cfg.HostPort, cfg.ServiceName)
	if endpoint == nil {
		zl.Warn("unable to resolve local endpoint", zap.String("host_port", cfg.HostPort))
	}
	reporter := zipkintracer.NewReporter(collector, endpoint,
		zipkintracer.ReporterLogger(logger),
		zipkintracer.ReporterMetrics(metrics),
	)
	tracer, err := newTracer(reporter, zipkintracer.WithB3InjectOption(style))
	if err != nil {
		return nil, multierr.Append(err, reporter.Close())
	}
	return &tracing{tracer: tracer, reporter: reporter, metrics: metrics}, nil
}

// Close flushes what is left and stops reporting.
func (t *tracing) Close() error {
	return t.reporter.Close()
}
