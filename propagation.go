package zipkintracer

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

type accessorPropagator struct {
	tracer *tracerImpl
}

// DelegatingCarrier is a flexible carrier interface which can be implemented
// by types which have a means of storing the trace metadata and already know
// how to serialize themselves (for example, thrift or protocol buffers).
//
// A zero traceIDHigh denotes a 64 bit trace id and a zero parentSpanID a root
// span. The carrier cannot tell a 128 bit trace id whose high half is zero
// from a 64 bit one, so such an id is extracted as the 8 byte id holding the
// same low half.
type DelegatingCarrier interface {
	SetState(traceIDHigh, traceIDLow, spanID, parentSpanID uint64, sampled, debug bool)
	State() (traceIDHigh, traceIDLow, spanID, parentSpanID uint64, sampled, debug bool)
	SetBaggageItem(key, value string)
	GetBaggage(func(key, value string))
}

func (p *accessorPropagator) Inject(
	spanContext opentracing.SpanContext,
	carrier interface{},
) error {
	ac, ok := carrier.(DelegatingCarrier)
	if !ok || ac == nil {
		return opentracing.ErrInvalidCarrier
	}
	sc, ok := model.FromOpenTracing(spanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	high, low := sc.TraceID.Split()
	var parentSpanID uint64
	if sc.ParentSpanID != nil {
		parentSpanID = *sc.ParentSpanID
	}
	ac.SetState(high, low, sc.SpanID, parentSpanID, sc.Sampled, sc.Debug)
	for k, v := range sc.Baggage {
		ac.SetBaggageItem(k, v)
	}
	return nil
}

func (p *accessorPropagator) Extract(
	carrier interface{},
) (opentracing.SpanContext, error) {
	ac, ok := carrier.(DelegatingCarrier)
	if !ok || ac == nil {
		return nil, opentracing.ErrInvalidCarrier
	}

	high, low, spanID, parentSpanID, sampled, debug := ac.State()
	if high == 0 && low == 0 {
		return nil, opentracing.ErrSpanContextNotFound
	}
	sc := model.SpanContext{
		TraceID: traceIDFromHalves(high, low),
		SpanID:  spanID,
		Sampled: sampled,
		Debug:   debug,
	}
	if parentSpanID != 0 {
		sc.ParentSpanID = &parentSpanID
	}
	ac.GetBaggage(func(k, v string) {
		if sc.Baggage == nil {
			sc.Baggage = map[string]string{}
		}
		sc.Baggage[k] = v
	})

	return sc, nil
}

// traceIDFromHalves returns a short trace id when high is zero. Zipkin treats
// both forms as the same trace.
func traceIDFromHalves(high, low uint64) model.TraceID {
	if high == 0 {
		return model.TraceIDFromUint64(low)
	}
	return model.JoinTraceID(high, low)
}
