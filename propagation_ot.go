package zipkintracer

import (
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
	"github.com/openzipkin-contrib/zipkintracer-thrift/propagation/b3"
	"github.com/openzipkin-contrib/zipkintracer-thrift/wire"
)

type textMapPropagator struct {
	tracer *tracerImpl
}

// binaryPropagator carries the wire.SpanContext record. trace_id_high is
// always written, and a zero high half is read back as a 64 bit trace id.
type binaryPropagator struct {
	tracer *tracerImpl
}

func (p *textMapPropagator) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	sc, ok := model.FromOpenTracing(spanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	carrier, ok := opaqueCarrier.(opentracing.TextMapWriter)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}
	b3.Inject(sc, carrier, p.tracer.options.b3InjectOpt.injectOptions()...)
	return nil
}

func (p *textMapPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	carrier, ok := opaqueCarrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}
	sc, err := b3.Extract(carrier)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, opentracing.ErrSpanContextNotFound
	}
	return *sc, nil
}

func (p *binaryPropagator) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	sc, ok := model.FromOpenTracing(spanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	carrier, ok := opaqueCarrier.(io.Writer)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}

	high, low := sc.TraceID.Split()
	traceIDHigh, traceID, spanID := int64(high), int64(low), int64(sc.SpanID)
	state := wire.SpanContext{
		TraceID:      &traceID,
		TraceIDHigh:  &traceIDHigh,
		SpanID:       &spanID,
		Sampled:      &sc.Sampled,
		BaggageItems: sc.Baggage,
	}
	if sc.ParentSpanID != nil {
		parentSpanID := int64(*sc.ParentSpanID)
		state.ParentSpanID = &parentSpanID
	}
	if sc.Debug {
		flags := wire.FlagDebug
		state.Flags = &flags
	}

	b, err := state.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = carrier.Write(b)
	return err
}

func (p *binaryPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	carrier, ok := opaqueCarrier.(io.Reader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}

	// The record is not length prefixed, the carrier holds exactly one.
	buf, err := io.ReadAll(carrier)
	if err != nil {
		return nil, errors.Wrap(opentracing.ErrSpanContextCorrupted, err.Error())
	}
	if len(buf) == 0 {
		return nil, opentracing.ErrSpanContextNotFound
	}

	state := wire.SpanContext{}
	if err := state.UnmarshalBinary(buf); err != nil {
		return nil, errors.Wrap(opentracing.ErrSpanContextCorrupted, err.Error())
	}
	if err := state.Validate(); err != nil {
		return nil, errors.Wrap(opentracing.ErrSpanContextCorrupted, err.Error())
	}

	sc := model.SpanContext{
		TraceID: traceIDFromHalves(uint64(*state.TraceIDHigh), uint64(*state.TraceID)),
		SpanID:  uint64(*state.SpanID),
		Sampled: state.Sampled == nil || *state.Sampled,
		Debug:   state.Flags != nil && *state.Flags == wire.FlagDebug,
		Baggage: state.BaggageItems,
	}
	if state.ParentSpanID != nil {
		parentSpanID := uint64(*state.ParentSpanID)
		sc.ParentSpanID = &parentSpanID
	}
	return sc, nil
}
