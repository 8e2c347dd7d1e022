package model

import (
	"fmt"
	"math/rand"

	opentracing "github.com/opentracing/opentracing-go"
)

// SpanContext holds the Zipkin specific state of a span that crosses span and
// process boundaries.
//
// A SpanContext is a value: children receive a copy. Baggage is copy-on-write,
// the map of a context is never mutated once the context is shared.
type SpanContext struct {
	TraceID      TraceID
	SpanID       uint64
	ParentSpanID *uint64
	Debug        bool
	Sampled      bool
	Baggage      map[string]string
}

// Option overrides a field of a new SpanContext.
type Option func(c *SpanContext)

// WithSpanID sets the span id.
func WithSpanID(id uint64) Option {
	return func(c *SpanContext) { c.SpanID = id }
}

// WithTraceID sets the trace id.
func WithTraceID(id TraceID) Option {
	return func(c *SpanContext) { c.TraceID = id }
}

// WithParentSpanID sets the parent span id.
func WithParentSpanID(id uint64) Option {
	return func(c *SpanContext) { c.ParentSpanID = &id }
}

// WithDebug sets the debug flag.
func WithDebug(debug bool) Option {
	return func(c *SpanContext) { c.Debug = debug }
}

// WithSampled sets the sampled flag.
func WithSampled(sampled bool) Option {
	return func(c *SpanContext) { c.Sampled = sampled }
}

// WithBaggage sets the baggage items. The map is copied.
func WithBaggage(baggage map[string]string) Option {
	return func(c *SpanContext) { c.Baggage = copyBaggage(baggage, len(baggage)) }
}

// NewSpanContext returns the context of a new root span: a fresh trace id and
// span id, not debug and sampled.
func NewSpanContext() SpanContext {
	return SpanContext{
		TraceID: NewTraceID(),
		SpanID:  NewSpanID(),
		Sampled: true,
	}
}

// NewSpanContextWithOptions returns a root span context with opts applied.
func NewSpanContextWithOptions(opts ...Option) SpanContext {
	c := NewSpanContext()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewSpanID returns a random, non-zero span id.
func NewSpanID() uint64 {
	for {
		if id := rand.Uint64(); id != 0 {
			return id
		}
	}
}

// ApplyReference makes c a descendant of the referenced context. Trace id,
// debug and sampled are inherited and the referenced span becomes the parent.
// ChildOf and FollowsFrom references are treated the same. The span id and
// baggage of c are left alone.
//
// ApplyReference panics if the referenced context was not created by this
// package.
func (c *SpanContext) ApplyReference(ref opentracing.SpanReference) {
	other, ok := FromOpenTracing(ref.ReferencedContext)
	if !ok {
		panic(fmt.Sprintf("zipkin: reference to a foreign span context %T", ref.ReferencedContext))
	}
	parentID := other.SpanID
	c.TraceID = other.TraceID
	c.Debug = other.Debug
	c.Sampled = other.Sampled
	c.ParentSpanID = &parentID
}

// FromOpenTracing returns the SpanContext held by an opentracing span context.
func FromOpenTracing(sc opentracing.SpanContext) (SpanContext, bool) {
	switch c := sc.(type) {
	case SpanContext:
		return c, true
	case *SpanContext:
		if c == nil {
			return SpanContext{}, false
		}
		return *c, true
	}
	return SpanContext{}, false
}

// WithBaggageItem returns a copy of c holding the additional baggage item.
func (c SpanContext) WithBaggageItem(key, value string) SpanContext {
	baggage := copyBaggage(c.Baggage, len(c.Baggage)+1)
	baggage[key] = value
	c.Baggage = baggage
	return c
}

// BaggageItem returns the baggage value for key, or "" when unset.
func (c SpanContext) BaggageItem(key string) string {
	return c.Baggage[key]
}

// ForeachBaggageItem belongs to the opentracing.SpanContext interface.
func (c SpanContext) ForeachBaggageItem(handler func(k, v string) bool) {
	for k, v := range c.Baggage {
		if !handler(k, v) {
			return
		}
	}
}

// Equal reports whether both contexts hold the same ids, flags and baggage.
func (c SpanContext) Equal(o SpanContext) bool {
	if c.TraceID != o.TraceID || c.SpanID != o.SpanID ||
		c.Debug != o.Debug || c.Sampled != o.Sampled {
		return false
	}
	if (c.ParentSpanID == nil) != (o.ParentSpanID == nil) {
		return false
	}
	if c.ParentSpanID != nil && *c.ParentSpanID != *o.ParentSpanID {
		return false
	}
	if len(c.Baggage) != len(o.Baggage) {
		return false
	}
	for k, v := range c.Baggage {
		if ov, ok := o.Baggage[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func copyBaggage(src map[string]string, size int) map[string]string {
	if size == 0 {
		return nil
	}
	dst := make(map[string]string, size)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
