package zipkintracer

import (
	otobserver "github.com/opentracing-contrib/go-observer"

	"github.com/openzipkin-contrib/zipkintracer-thrift/propagation/b3"
)

// B3InjectOption type holds information on B3 injection style when using
// native OpenTracing HTTPHeadersCarrier.
type B3InjectOption int

// Available B3InjectOption values
const (
	B3InjectStandard B3InjectOption = iota
	B3InjectSingle
	B3InjectBoth
)

func (o B3InjectOption) injectOptions() []b3.InjectOption {
	switch o {
	case B3InjectSingle:
		return []b3.InjectOption{b3.WithSingleHeaderOnly()}
	case B3InjectBoth:
		return []b3.InjectOption{b3.WithSingleAndMultiHeader()}
	}
	return nil
}

// TracerOptions allows creating a customized Tracer.
type TracerOptions struct {
	observer    observer
	b3InjectOpt B3InjectOption
	// newSpanEventListener can be used to enhance the tracer by effectively
	// attaching external code to trace events. See NetTraceIntegrator for a
	// practical example.
	newSpanEventListener func() func(SpanEvent)
}

// TracerOption allows for functional options.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis
type TracerOption func(opts *TracerOptions)

// WithObserver adds an initialized observer to the tracer. It can be given
// more than once, all observers are notified.
func WithObserver(o otobserver.Observer) TracerOption {
	return func(opts *TracerOptions) {
		opts.observer.observers = append(opts.observer.observers, o)
	}
}

// WithB3InjectOption sets the B3 injection style if using the native OpenTracing HTTPHeadersCarrier
func WithB3InjectOption(b3InjectOption B3InjectOption) TracerOption {
	return func(opts *TracerOptions) {
		opts.b3InjectOpt = b3InjectOption
	}
}

// WithSpanEventListener registers a factory called once per span. The
// returned function receives every SpanEvent of that span.
func WithSpanEventListener(f func() func(SpanEvent)) TracerOption {
	return func(opts *TracerOptions) {
		opts.newSpanEventListener = f
	}
}
