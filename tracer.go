package zipkintracer

import (
	"errors"
	"time"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

// ErrNilRecorder is returned by NewTracer when no SpanRecorder is given.
var ErrNilRecorder = errors.New("zipkin: span recorder must not be nil")

type tracerImpl struct {
	recorder           SpanRecorder
	options            TracerOptions
	textPropagator     *textMapPropagator
	binaryPropagator   *binaryPropagator
	accessorPropagator *accessorPropagator
}

// NewTracer creates a new OpenTracing compatible Zipkin Tracer. Finished
// spans are handed to recorder, usually a Reporter.
func NewTracer(recorder SpanRecorder, options ...TracerOption) (opentracing.Tracer, error) {
	if recorder == nil {
		return nil, ErrNilRecorder
	}
	t := &tracerImpl{recorder: recorder}
	for _, o := range options {
		o(&t.options)
	}
	t.textPropagator = &textMapPropagator{t}
	t.binaryPropagator = &binaryPropagator{t}
	t.accessorPropagator = &accessorPropagator{t}
	return t, nil
}

func (t *tracerImpl) StartSpan(operationName string, opts ...opentracing.StartSpanOption) opentracing.Span {
	var sso opentracing.StartSpanOptions
	for _, opt := range opts {
		opt.Apply(&sso)
	}

	startTime := sso.StartTime
	if startTime.IsZero() {
		startTime = time.Now()
	}

	sp := &spanImpl{tracer: t}
	sp.raw = RawSpan{
		Context:   t.newSpanContext(sso.References),
		Operation: operationName,
		Start:     startTime,
	}
	if len(sso.Tags) > 0 {
		sp.raw.Tags = make(opentracing.Tags, len(sso.Tags))
		for k, v := range sso.Tags {
			sp.raw.Tags[k] = v
		}
	}

	if t.options.newSpanEventListener != nil {
		sp.event = t.options.newSpanEventListener()
	}
	if len(t.options.observer.observers) > 0 {
		if obs, ok := t.options.observer.OnStartSpan(sp, operationName, sso); ok {
			sp.observer = obs
		}
	}
	sp.onCreate(operationName)
	return sp
}

// newSpanContext returns a root context, or a descendant of the first
// reference holding a context.
func (t *tracerImpl) newSpanContext(refs []opentracing.SpanReference) model.SpanContext {
	for _, ref := range refs {
		if ref.ReferencedContext == nil {
			continue
		}
		sc := model.SpanContext{SpanID: model.NewSpanID()}
		sc.ApplyReference(ref)
		ref.ReferencedContext.ForeachBaggageItem(func(k, v string) bool {
			sc = sc.WithBaggageItem(k, v)
			return true
		})
		return sc
	}
	return model.NewSpanContext()
}

type delegatorType struct{}

// Delegator is the format to use for DelegatingCarrier.
var Delegator delegatorType

func (t *tracerImpl) Inject(sc opentracing.SpanContext, format interface{}, carrier interface{}) error {
	switch format {
	case opentracing.TextMap, opentracing.HTTPHeaders:
		return t.textPropagator.Inject(sc, carrier)
	case opentracing.Binary:
		return t.binaryPropagator.Inject(sc, carrier)
	}
	if _, ok := format.(delegatorType); ok {
		return t.accessorPropagator.Inject(sc, carrier)
	}
	return opentracing.ErrUnsupportedFormat
}

func (t *tracerImpl) Extract(format interface{}, carrier interface{}) (opentracing.SpanContext, error) {
	switch format {
	case opentracing.TextMap, opentracing.HTTPHeaders:
		return t.textPropagator.Extract(carrier)
	case opentracing.Binary:
		return t.binaryPropagator.Extract(carrier)
	}
	if _, ok := format.(delegatorType); ok {
		return t.accessorPropagator.Extract(carrier)
	}
	return nil, opentracing.ErrUnsupportedFormat
}
