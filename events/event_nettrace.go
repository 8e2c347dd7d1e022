// Package events holds SpanEvent listeners for the tracer.
package events

import (
	"golang.org/x/net/trace"

	zipkintracer "github.com/openzipkin-contrib/zipkintracer-thrift"
)

// NetTraceIntegrator can be passed into a zipkintracer as NewSpanEventListener
// and causes all traces to be registered with the net/trace endpoint.
var NetTraceIntegrator = func() func(zipkintracer.SpanEvent) {
	var tr trace.Trace
	return func(e zipkintracer.SpanEvent) {
		switch t := e.(type) {
		case zipkintracer.EventCreate:
			tr = trace.New("tracing", t.OperationName)
			tr.SetMaxEvents(1000)
		case zipkintracer.EventFinish:
			if t.Tags["error"] == true {
				tr.SetError()
			}
			tr.Finish()
		case zipkintracer.EventTag:
			tr.LazyPrintf("%s:%v", t.Key, t.Value)
		case zipkintracer.EventLogFields:
			for _, f := range t.Fields {
				tr.LazyPrintf("%s:%v", f.Key(), f.Value())
			}
		case zipkintracer.EventLog:
			if t.Payload != nil {
				tr.LazyPrintf("%s (payload %v)", t.Event, t.Payload)
			} else {
				tr.LazyPrintf("%s", t.Event)
			}
		}
	}
}
