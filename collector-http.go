package zipkintracer

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	httpSpansPath      = "/api/v1/spans"
	thriftContentType  = "application/x-thrift"
)

// HTTPCollector implements Collector by posting thrift encoded span batches
// to a Zipkin server.
type HTTPCollector struct {
	*spanBuffer
	logger       Logger
	url          string
	client       *http.Client
	headers      http.Header
	reqCallback  RequestCallback
	respCallback ResponseCallback
}

// RequestCallback receives the initialized request from the Collector before
// sending it over the wire. This allows one to plug in additional headers or
// do other customization.
type RequestCallback func(*http.Request)

// ResponseCallback receives the response of every batch post. The collector
// closes the body once the callback returns. The status code is not
// interpreted by the collector.
type ResponseCallback func(*http.Response)

// HTTPOption sets a parameter for the HTTPCollector
type HTTPOption func(c *HTTPCollector)

// HTTPLogger sets the logger used to report errors in the collection
// process. By default, a no-op logger is used, i.e. no errors are logged
// anywhere. It's important to set this option in a production service.
func HTTPLogger(logger Logger) HTTPOption {
	return func(c *HTTPCollector) { c.logger = logger }
}

// HTTPTimeout sets maximum timeout for http request.
func HTTPTimeout(duration time.Duration) HTTPOption {
	return func(c *HTTPCollector) { c.client.Timeout = duration }
}

// HTTPClient sets a custom http client to use. The client's own timeout
// applies.
func HTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPCollector) { c.client = client }
}

// HTTPBatchSize sets the number of buffered spans above which a lazy flush
// sends them. The default is 1000 spans.
func HTTPBatchSize(n int) HTTPOption {
	return func(c *HTTPCollector) { c.flushCount = n }
}

// HTTPBatchInterval sets the time since the previous flush after which a
// lazy flush sends the buffered spans. The default is 1 second.
func HTTPBatchInterval(d time.Duration) HTTPOption {
	return func(c *HTTPCollector) { c.flushTimeout = d }
}

// HTTPHeaders adds headers to every request.
func HTTPHeaders(h http.Header) HTTPOption {
	return func(c *HTTPCollector) {
		for k, vs := range h {
			for _, v := range vs {
				c.headers.Add(k, v)
			}
		}
	}
}

// HTTPRequestCallback registers a callback function to adjust the collector
// *http.Request before it sends the request to Zipkin.
func HTTPRequestCallback(rc RequestCallback) HTTPOption {
	return func(c *HTTPCollector) { c.reqCallback = rc }
}

// HTTPResponseCallback registers a callback function receiving the response
// of every batch post.
func HTTPResponseCallback(rc ResponseCallback) HTTPOption {
	return func(c *HTTPCollector) { c.respCallback = rc }
}

// HTTPMetrics records flushes in m.
func HTTPMetrics(m *Metrics) HTTPOption {
	return func(c *HTTPCollector) { c.metrics = m }
}

// HTTPClock sets the clock driving the batch interval.
func HTTPClock(clk clock.Clock) HTTPOption {
	return func(c *HTTPCollector) { c.clock = clk }
}

// NewHTTPCollector returns a new HTTP-backend Collector. baseURL is the
// address of the Zipkin server, spans are posted to {baseURL}/api/v1/spans.
func NewHTTPCollector(baseURL string, options ...HTTPOption) (*HTTPCollector, error) {
	if baseURL == "" {
		return nil, errors.New("zipkin: empty collector url")
	}
	c := &HTTPCollector{
		logger:  NewNopLogger(),
		url:     strings.TrimRight(baseURL, "/") + httpSpansPath,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		headers: http.Header{},
	}
	c.spanBuffer = newSpanBuffer("http", c.send)

	for _, option := range options {
		option(c)
	}
	c.spanBuffer.start()
	return c, nil
}

// URL returns the address spans are posted to.
func (c *HTTPCollector) URL() string {
	return c.url
}

// Close implements Collector.
func (c *HTTPCollector) Close() error {
	return c.Flush()
}

func (c *HTTPCollector) send(spans []*zipkincore.Span) error {
	ctx := context.Background()
	payload, err := zipkincore.WriteSpans(ctx, spans)
	if err != nil {
		return errors.Wrap(err, "encode spans")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		c.logger.Log("err", err.Error())
		return err
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", thriftContentType)
	if c.reqCallback != nil {
		c.reqCallback(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Log("err", err.Error())
		return errors.Wrapf(err, "post %d spans", len(spans))
	}
	defer resp.Body.Close()
	if c.respCallback != nil {
		c.respCallback(resp)
	}
	return nil
}
