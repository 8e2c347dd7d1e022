package wire

// ThriftCarrier is a DelegatingCarrier that uses the thrift SpanContext record
// as the underlying datastructure. The reason for implementing
// DelegatingCarrier is to allow for end users to serialize the underlying
// record using any thrift protocol or other serialization form they want.
type ThriftCarrier SpanContext

// SetState sets the tracer state. A zero parentSpanID leaves the parent unset.
func (p *ThriftCarrier) SetState(traceIDHigh, traceIDLow, spanID, parentSpanID uint64, sampled, debug bool) {
	high, low, id := int64(traceIDHigh), int64(traceIDLow), int64(spanID)
	p.TraceIDHigh = &high
	p.TraceID = &low
	p.SpanID = &id
	p.ParentSpanID = nil
	if parentSpanID != 0 {
		parent := int64(parentSpanID)
		p.ParentSpanID = &parent
	}
	p.Sampled = &sampled
	p.Flags = nil
	if debug {
		flags := FlagDebug
		p.Flags = &flags
	}
}

// State returns the tracer state. Unset fields read as zero, an unset sampled
// flag reads as true.
func (p *ThriftCarrier) State() (traceIDHigh, traceIDLow, spanID, parentSpanID uint64, sampled, debug bool) {
	traceIDHigh = uint64(deref(p.TraceIDHigh))
	traceIDLow = uint64(deref(p.TraceID))
	spanID = uint64(deref(p.SpanID))
	parentSpanID = uint64(deref(p.ParentSpanID))
	sampled = p.Sampled == nil || *p.Sampled
	debug = p.Flags != nil && *p.Flags == FlagDebug
	return traceIDHigh, traceIDLow, spanID, parentSpanID, sampled, debug
}

// SetBaggageItem sets a baggage item.
func (p *ThriftCarrier) SetBaggageItem(key, value string) {
	if p.BaggageItems == nil {
		p.BaggageItems = map[string]string{key: value}
		return
	}

	p.BaggageItems[key] = value
}

// GetBaggage iterates over each baggage item and executes the callback with
// the key:value pair.
func (p *ThriftCarrier) GetBaggage(f func(k, v string)) {
	for k, v := range p.BaggageItems {
		f(k, v)
	}
}

// Record returns the carrier as a SpanContext record ready to be serialized.
func (p *ThriftCarrier) Record() *SpanContext {
	return (*SpanContext)(p)
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
