package events_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opentracing/opentracing-go/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/trace"

	zipkintracer "github.com/openzipkin-contrib/zipkintracer-thrift"
	"github.com/openzipkin-contrib/zipkintracer-thrift/events"
)

func TestNetTraceIntegrator(t *testing.T) {
	tracer, err := zipkintracer.NewTracer(
		zipkintracer.NewInMemoryRecorder(),
		zipkintracer.WithSpanEventListener(events.NetTraceIntegrator),
	)
	require.NoError(t, err)

	sp := tracer.StartSpan("nettrace-op")
	sp.SetTag("k", "v")
	sp.LogKV("event", "checkpoint")
	sp.LogEvent("legacy")
	ext.Error.Set(sp, true)
	sp.Finish()

	rr := httptest.NewRecorder()
	trace.Render(rr, httptest.NewRequest("GET", "/debug/requests?fam=tracing&b=-1", nil), true)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "tracing"), "family not registered")
}
