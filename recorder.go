package zipkintracer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

// EndpointInjectedKey is the binary annotation added to spans that carry no
// tags and no logs, so the local endpoint still reaches the backend.
const EndpointInjectedKey = "zipkin.endpoint.injected"

// A SpanRecorder handles all of the `RawSpan` data generated via an
// associated `Tracer` (see `NewTracer`) instance.
type SpanRecorder interface {
	// Implementations must determine whether and where to store `span`.
	RecordSpan(span RawSpan)
}

// InMemoryRecorder is a simple thread-safe implementation of SpanRecorder
// that stores all reported spans in memory, accessible via GetSpans. It is
// primarily intended for testing purposes.
type InMemoryRecorder struct {
	sync.RWMutex
	spans []RawSpan
}

// NewInMemoryRecorder creates new InMemoryRecorder
func NewInMemoryRecorder() *InMemoryRecorder {
	return new(InMemoryRecorder)
}

// RecordSpan implements the respective method of SpanRecorder.
func (r *InMemoryRecorder) RecordSpan(span RawSpan) {
	r.Lock()
	defer r.Unlock()
	r.spans = append(r.spans, span)
}

// GetSpans returns a copy of the array of spans accumulated so far.
func (r *InMemoryRecorder) GetSpans() []RawSpan {
	r.RLock()
	defer r.RUnlock()
	spans := make([]RawSpan, len(r.spans))
	copy(spans, r.spans)
	return spans
}

// Reset clears the internal array of spans.
func (r *InMemoryRecorder) Reset() {
	r.Lock()
	defer r.Unlock()
	r.spans = nil
}

// EncodeSpan converts a finished RawSpan into the Zipkin thrift
// representation of a span. Every annotation is attributed to endpoint.
func EncodeSpan(sp RawSpan, endpoint *zipkincore.Endpoint) *zipkincore.Span {
	var (
		high, low = sp.Context.TraceID.Split()
		timestamp = micros(sp.Start)
		duration  = absInt64(sp.Finish.Sub(sp.Start).Microseconds())
	)
	if duration == 0 {
		duration = 1
	}

	span := &zipkincore.Span{
		TraceID:   int64(low),
		Name:      sp.Operation,
		ID:        int64(sp.Context.SpanID),
		Debug:     sp.Context.Debug,
		Timestamp: &timestamp,
		Duration:  &duration,
	}
	if high != 0 {
		traceIDHigh := int64(high)
		span.TraceIDHigh = &traceIDHigh
	}
	if sp.Context.ParentSpanID != nil {
		parentSpanID := int64(*sp.Context.ParentSpanID)
		span.ParentID = &parentSpanID
	}

	keys := make([]string, 0, len(sp.Tags))
	for key := range sp.Tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		AnnotateBinary(span, key, fmt.Sprint(sp.Tags[key]), endpoint)
	}

	for _, lr := range sp.Logs {
		ts := lr.Timestamp
		if ts.IsZero() {
			ts = sp.Finish
		}
		Annotate(span, ts, encodeLogFields(lr.Fields), endpoint)
	}

	if len(sp.Tags) == 0 && len(sp.Logs) == 0 {
		AnnotateBinary(span, EndpointInjectedKey, "true", endpoint)
	}
	return span
}

// Annotate annotates the span with the given value.
func Annotate(span *zipkincore.Span, timestamp time.Time, value string, host *zipkincore.Endpoint) {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	span.Annotations = append(span.Annotations, &zipkincore.Annotation{
		Timestamp: micros(timestamp),
		Value:     value,
		Host:      host,
	})
}

// AnnotateBinary annotates the span with a key and a value that will be []byte
// encoded.
func AnnotateBinary(span *zipkincore.Span, key string, value interface{}, host *zipkincore.Endpoint) {
	var a zipkincore.AnnotationType
	var b []byte
	// We are not using zipkincore.AnnotationType_I16 for types that could fit
	// as reporting on it seems to be broken on the zipkin web interface
	// (however, we can properly extract the number from zipkin storage
	// directly). int64 has issues with negative numbers but seems ok for
	// positive numbers needing more than 32 bit.
	switch v := value.(type) {
	case bool:
		a = zipkincore.AnnotationType_BOOL
		b = []byte("\x00")
		if v {
			b = []byte("\x01")
		}
	case []byte:
		a = zipkincore.AnnotationType_BYTES
		b = v
	case byte:
		a, b = zipkincore.AnnotationType_I32, i32Bytes(uint32(v))
	case int8:
		a, b = zipkincore.AnnotationType_I32, i32Bytes(uint32(v))
	case int16:
		a, b = zipkincore.AnnotationType_I32, i32Bytes(uint32(v))
	case uint16:
		a, b = zipkincore.AnnotationType_I32, i32Bytes(uint32(v))
	case int32:
		a, b = zipkincore.AnnotationType_I32, i32Bytes(uint32(v))
	case uint32:
		a, b = zipkincore.AnnotationType_I64, i64Bytes(uint64(v))
	case int:
		a, b = zipkincore.AnnotationType_I64, i64Bytes(uint64(v))
	case uint:
		a, b = zipkincore.AnnotationType_I64, i64Bytes(uint64(v))
	case int64:
		a, b = zipkincore.AnnotationType_I64, i64Bytes(uint64(v))
	case uint64:
		a, b = zipkincore.AnnotationType_I64, i64Bytes(v)
	case float32:
		a, b = zipkincore.AnnotationType_DOUBLE, i64Bytes(math.Float64bits(float64(v)))
	case float64:
		a, b = zipkincore.AnnotationType_DOUBLE, i64Bytes(math.Float64bits(v))
	case string:
		a = zipkincore.AnnotationType_STRING
		b = []byte(v)
	default:
		// we have no handler for type's value, but let's get a string
		// representation of it.
		a = zipkincore.AnnotationType_STRING
		b = []byte(fmt.Sprintf("%+v", value))
	}
	span.BinaryAnnotations = append(span.BinaryAnnotations, &zipkincore.BinaryAnnotation{
		Key:            key,
		Value:          b,
		AnnotationType: a,
		Host:           host,
	})
}

func i32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func i64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// micros returns the absolute number of microseconds between the Unix epoch
// and t.
func micros(t time.Time) int64 {
	return absInt64(t.UnixNano() / 1e3)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// encodeLogFields renders log fields as a JSON object. Later fields win on
// duplicate keys.
func encodeLogFields(fields []log.Field) string {
	enc := fieldMap{}
	for _, f := range fields {
		f.Marshal(enc)
	}
	b, err := json.Marshal(enc)
	if err != nil {
		// EmitObject values that do not marshal fall back to their text form.
		for k, v := range enc {
			enc[k] = fmt.Sprint(v)
		}
		b, _ = json.Marshal(enc)
	}
	return string(b)
}

// fieldMap is a log.Encoder collecting fields into a map.
type fieldMap map[string]interface{}

func (m fieldMap) EmitString(key, value string)         { m[key] = value }
func (m fieldMap) EmitBool(key string, value bool)       { m[key] = value }
func (m fieldMap) EmitInt(key string, value int)         { m[key] = value }
func (m fieldMap) EmitInt32(key string, value int32)     { m[key] = value }
func (m fieldMap) EmitInt64(key string, value int64)     { m[key] = value }
func (m fieldMap) EmitUint32(key string, value uint32)   { m[key] = value }
func (m fieldMap) EmitUint64(key string, value uint64)   { m[key] = value }
func (m fieldMap) EmitFloat32(key string, value float32) { m[key] = value }
func (m fieldMap) EmitFloat64(key string, value float64) { m[key] = value }
func (m fieldMap) EmitObject(key string, value interface{}) {
	m[key] = value
}
func (m fieldMap) EmitLazyLogger(value log.LazyLogger) {
	value(m)
}

var _ opentracing.Span = (*spanImpl)(nil)
