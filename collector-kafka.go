package zipkintracer

import (
	"context"
	"time"

	"github.com/Shopify/sarama"
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

const (
	defaultKafkaTopic       = "zipkin"
	defaultKafkaSendTimeout = 10 * time.Second
)

// KafkaCollector implements Collector by publishing spans to a Kafka
// broker. Every span is its own message holding the thrift binary encoding
// of the span.
type KafkaCollector struct {
	*spanBuffer
	producer    sarama.SyncProducer
	logger      Logger
	topic       string
	sendTimeout time.Duration
}

// KafkaOption sets a parameter for the KafkaCollector
type KafkaOption func(c *KafkaCollector)

// KafkaLogger sets the logger used to report errors in the collection
// process. By default, a no-op logger is used, i.e. no errors are logged
// anywhere. It's important to set this option.
func KafkaLogger(logger Logger) KafkaOption {
	return func(c *KafkaCollector) { c.logger = logger }
}

// KafkaProducer sets the producer used to produce to Kafka. The collector
// takes ownership of it and closes it on Close.
func KafkaProducer(p sarama.SyncProducer) KafkaOption {
	return func(c *KafkaCollector) { c.producer = p }
}

// KafkaTopic sets the kafka topic to attach the collector producer on.
func KafkaTopic(t string) KafkaOption {
	return func(c *KafkaCollector) { c.topic = t }
}

// KafkaSendTimeout bounds how long the producer waits for the broker to
// acknowledge a message. It applies only to producers created by the
// collector.
func KafkaSendTimeout(d time.Duration) KafkaOption {
	return func(c *KafkaCollector) { c.sendTimeout = d }
}

// KafkaBatchSize sets the number of buffered spans above which a lazy flush
// publishes them. The default is 1000 spans.
func KafkaBatchSize(n int) KafkaOption {
	return func(c *KafkaCollector) { c.flushCount = n }
}

// KafkaBatchInterval sets the time since the previous flush after which a
// lazy flush publishes the buffered spans. The default is 1 second.
func KafkaBatchInterval(d time.Duration) KafkaOption {
	return func(c *KafkaCollector) { c.flushTimeout = d }
}

// KafkaMetrics records flushes in m.
func KafkaMetrics(m *Metrics) KafkaOption {
	return func(c *KafkaCollector) { c.metrics = m }
}

// KafkaClock sets the clock driving the batch interval.
func KafkaClock(clk clock.Clock) KafkaOption {
	return func(c *KafkaCollector) { c.clock = clk }
}

// NewKafkaCollector returns a new Kafka-backed Collector. addrs should be a
// slice of TCP endpoints of the form "host:port".
func NewKafkaCollector(addrs []string, options ...KafkaOption) (*KafkaCollector, error) {
	c := &KafkaCollector{
		logger:      NewNopLogger(),
		topic:       defaultKafkaTopic,
		sendTimeout: defaultKafkaSendTimeout,
	}
	c.spanBuffer = newSpanBuffer("kafka", c.send)

	for _, option := range options {
		option(c)
	}
	if c.producer == nil {
		p, err := sarama.NewSyncProducer(addrs, newKafkaConfig(c.sendTimeout))
		if err != nil {
			return nil, errors.Wrap(err, "create kafka producer")
		}
		c.producer = p
	}
	c.spanBuffer.start()
	return c, nil
}

func newKafkaConfig(sendTimeout time.Duration) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "zipkintracer"
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Timeout = sendTimeout
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	return config
}

// Close implements Collector. It flushes the buffered spans, then closes the
// producer.
func (c *KafkaCollector) Close() error {
	err := c.Flush()
	return multierr.Append(err, c.producer.Close())
}

func (c *KafkaCollector) send(spans []*zipkincore.Span) error {
	ctx := context.Background()
	serializer := thrift.NewTSerializer()
	var err error
	for _, s := range spans {
		value, serr := serializer.Write(ctx, s)
		if serr != nil {
			err = multierr.Append(err, errors.Wrapf(serr, "encode span %d", s.ID))
			continue
		}
		if _, _, perr := c.producer.SendMessage(&sarama.ProducerMessage{
			Topic: c.topic,
			Value: sarama.ByteEncoder(value),
		}); perr != nil {
			c.logger.Log("msg", "kafka publish failed", "err", perr.Error())
			err = multierr.Append(err, perr)
		}
	}
	return err
}
