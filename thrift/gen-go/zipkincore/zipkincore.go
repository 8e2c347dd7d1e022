// Package zipkincore holds the Zipkin v1 thrift span model. Field ids and
// types follow zipkinCore.thrift so that encoded spans are readable by any
// Zipkin v1 thrift consumer.
package zipkincore

import (
	"bytes"
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// AnnotationType tells a consumer how to decode BinaryAnnotation.Value.
type AnnotationType int64

// AnnotationType values.
const (
	AnnotationType_BOOL   AnnotationType = 0
	AnnotationType_BYTES  AnnotationType = 1
	AnnotationType_I16    AnnotationType = 2
	AnnotationType_I32    AnnotationType = 3
	AnnotationType_I64    AnnotationType = 4
	AnnotationType_DOUBLE AnnotationType = 5
	AnnotationType_STRING AnnotationType = 6
)

func (p AnnotationType) String() string {
	switch p {
	case AnnotationType_BOOL:
		return "BOOL"
	case AnnotationType_BYTES:
		return "BYTES"
	case AnnotationType_I16:
		return "I16"
	case AnnotationType_I32:
		return "I32"
	case AnnotationType_I64:
		return "I64"
	case AnnotationType_DOUBLE:
		return "DOUBLE"
	case AnnotationType_STRING:
		return "STRING"
	}
	return "<UNSET>"
}

// AnnotationTypeFromString is the inverse of AnnotationType.String.
func AnnotationTypeFromString(s string) (AnnotationType, error) {
	switch s {
	case "BOOL":
		return AnnotationType_BOOL, nil
	case "BYTES":
		return AnnotationType_BYTES, nil
	case "I16":
		return AnnotationType_I16, nil
	case "I32":
		return AnnotationType_I32, nil
	case "I64":
		return AnnotationType_I64, nil
	case "DOUBLE":
		return AnnotationType_DOUBLE, nil
	case "STRING":
		return AnnotationType_STRING, nil
	}
	return AnnotationType(0), fmt.Errorf("not a valid AnnotationType string: %q", s)
}

// AnnotationTypePtr returns a pointer to v.
func AnnotationTypePtr(v AnnotationType) *AnnotationType { return &v }

// MarshalText implements encoding.TextMarshaler.
func (p AnnotationType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *AnnotationType) UnmarshalText(text []byte) error {
	q, err := AnnotationTypeFromString(string(text))
	if err != nil {
		return err
	}
	*p = q
	return nil
}

// Value implements driver.Valuer.
func (p *AnnotationType) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return int64(*p), nil
}

// Endpoint is the network context of a node in the service graph.
//
// Attributes:
//   - Ipv4: IPv4 host address packed into 4 bytes, big-endian.
//   - Port: IPv4 port, 0 when unknown.
//   - ServiceName: lowercase service name.
//   - Ipv6: IPv6 host address packed into 16 bytes, nil when unknown.
type Endpoint struct {
	Ipv4        int32  `thrift:"ipv4,1" json:"ipv4"`
	Port        int16  `thrift:"port,2" json:"port"`
	ServiceName string `thrift:"service_name,3" json:"service_name"`
	Ipv6        []byte `thrift:"ipv6,4" json:"ipv6,omitempty"`
}

// NewEndpoint returns an empty Endpoint.
func NewEndpoint() *Endpoint {
	return &Endpoint{}
}

func (p *Endpoint) GetIpv4() int32 { return p.Ipv4 }
func (p *Endpoint) GetPort() int16 { return p.Port }
func (p *Endpoint) GetServiceName() string { return p.ServiceName }
func (p *Endpoint) GetIpv6() []byte { return p.Ipv6 }
func (p *Endpoint) IsSetIpv6() bool { return p.Ipv6 != nil }

func (p *Endpoint) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.I32:
			if p.Ipv4, err = iprot.ReadI32(ctx); err != nil {
				return thrift.PrependError("error reading field 1: ", err)
			}
		case fieldID == 2 && fieldTypeID == thrift.I16:
			if p.Port, err = iprot.ReadI16(ctx); err != nil {
				return thrift.PrependError("error reading field 2: ", err)
			}
		case fieldID == 3 && fieldTypeID == thrift.STRING:
			if p.ServiceName, err = iprot.ReadString(ctx); err != nil {
				return thrift.PrependError("error reading field 3: ", err)
			}
		case fieldID == 4 && fieldTypeID == thrift.STRING:
			if p.Ipv6, err = iprot.ReadBinary(ctx); err != nil {
				return thrift.PrependError("error reading field 4: ", err)
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func (p *Endpoint) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Endpoint"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeI32(ctx, oprot, "ipv4", 1, p.Ipv4); err != nil {
		return err
	}
	if err := writeI16(ctx, oprot, "port", 2, p.Port); err != nil {
		return err
	}
	if err := writeString(ctx, oprot, "service_name", 3, p.ServiceName); err != nil {
		return err
	}
	if p.IsSetIpv6() {
		if err := writeBinary(ctx, oprot, "ipv6", 4, p.Ipv6); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

// Equals reports whether both endpoints hold the same values.
func (p *Endpoint) Equals(other *Endpoint) bool {
	if p == other {
		return true
	} else if p == nil || other == nil {
		return false
	}
	return p.Ipv4 == other.Ipv4 &&
		p.Port == other.Port &&
		p.ServiceName == other.ServiceName &&
		bytes.Equal(p.Ipv6, other.Ipv6)
}

func (p *Endpoint) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Endpoint(%+v)", *p)
}

// Annotation associates an event that explains latency with a timestamp.
//
// Attributes:
//   - Timestamp: microseconds from epoch.
//   - Value: usually a short tag indicating an event, like "sr" or "finagle.retry".
//   - Host: the host that recorded the value, nil when unknown.
type Annotation struct {
	Timestamp int64     `thrift:"timestamp,1" json:"timestamp"`
	Value     string    `thrift:"value,2" json:"value"`
	Host      *Endpoint `thrift:"host,3" json:"host,omitempty"`
}

// NewAnnotation returns an empty Annotation.
func NewAnnotation() *Annotation {
	return &Annotation{}
}

func (p *Annotation) GetTimestamp() int64 { return p.Timestamp }
func (p *Annotation) GetValue() string { return p.Value }
func (p *Annotation) GetHost() *Endpoint { return p.Host }
func (p *Annotation) IsSetHost() bool { return p.Host != nil }

func (p *Annotation) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.I64:
			if p.Timestamp, err = iprot.ReadI64(ctx); err != nil {
				return thrift.PrependError("error reading field 1: ", err)
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.Value, err = iprot.ReadString(ctx); err != nil {
				return thrift.PrependError("error reading field 2: ", err)
			}
		case fieldID == 3 && fieldTypeID == thrift.STRUCT:
			p.Host = &Endpoint{}
			if err := p.Host.Read(ctx, iprot); err != nil {
				return thrift.PrependError(fmt.Sprintf("%T error reading struct: ", p.Host), err)
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func (p *Annotation) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Annotation"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeI64(ctx, oprot, "timestamp", 1, p.Timestamp); err != nil {
		return err
	}
	if err := writeString(ctx, oprot, "value", 2, p.Value); err != nil {
		return err
	}
	if p.IsSetHost() {
		if err := writeStruct(ctx, oprot, "host", 3, p.Host); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

// Equals reports whether both annotations hold the same values.
func (p *Annotation) Equals(other *Annotation) bool {
	if p == other {
		return true
	} else if p == nil || other == nil {
		return false
	}
	return p.Timestamp == other.Timestamp &&
		p.Value == other.Value &&
		p.Host.Equals(other.Host)
}

func (p *Annotation) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Annotation(%+v)", *p)
}

// BinaryAnnotation holds a key and a typed value that add context to a span,
// such as an http path or a database query.
//
// Attributes:
//   - Key: name used to lookup spans, such as "http.path".
//   - Value: serialized thrift bytes, decoded per AnnotationType.
//   - AnnotationType: how to decode Value.
//   - Host: the host that recorded the value, nil when unknown.
type BinaryAnnotation struct {
	Key            string         `thrift:"key,1" json:"key"`
	Value          []byte         `thrift:"value,2" json:"value"`
	AnnotationType AnnotationType `thrift:"annotation_type,3" json:"annotation_type"`
	Host           *Endpoint      `thrift:"host,4" json:"host,omitempty"`
}

// NewBinaryAnnotation returns an empty BinaryAnnotation.
func NewBinaryAnnotation() *BinaryAnnotation {
	return &BinaryAnnotation{}
}

func (p *BinaryAnnotation) GetKey() string { return p.Key }
func (p *BinaryAnnotation) GetValue() []byte { return p.Value }
func (p *BinaryAnnotation) GetAnnotationType() AnnotationType { return p.AnnotationType }
func (p *BinaryAnnotation) GetHost() *Endpoint { return p.Host }
func (p *BinaryAnnotation) IsSetHost() bool { return p.Host != nil }

func (p *BinaryAnnotation) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.STRING:
			if p.Key, err = iprot.ReadString(ctx); err != nil {
				return thrift.PrependError("error reading field 1: ", err)
			}
		case fieldID == 2 && fieldTypeID == thrift.STRING:
			if p.Value, err = iprot.ReadBinary(ctx); err != nil {
				return thrift.PrependError("error reading field 2: ", err)
			}
		case fieldID == 3 && fieldTypeID == thrift.I32:
			v, err := iprot.ReadI32(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 3: ", err)
			}
			p.AnnotationType = AnnotationType(v)
		case fieldID == 4 && fieldTypeID == thrift.STRUCT:
			p.Host = &Endpoint{}
			if err := p.Host.Read(ctx, iprot); err != nil {
				return thrift.PrependError(fmt.Sprintf("%T error reading struct: ", p.Host), err)
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func (p *BinaryAnnotation) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "BinaryAnnotation"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeString(ctx, oprot, "key", 1, p.Key); err != nil {
		return err
	}
	if err := writeBinary(ctx, oprot, "value", 2, p.Value); err != nil {
		return err
	}
	if err := writeI32(ctx, oprot, "annotation_type", 3, int32(p.AnnotationType)); err != nil {
		return err
	}
	if p.IsSetHost() {
		if err := writeStruct(ctx, oprot, "host", 4, p.Host); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

// Equals reports whether both binary annotations hold the same values.
func (p *BinaryAnnotation) Equals(other *BinaryAnnotation) bool {
	if p == other {
		return true
	} else if p == nil || other == nil {
		return false
	}
	return p.Key == other.Key &&
		bytes.Equal(p.Value, other.Value) &&
		p.AnnotationType == other.AnnotationType &&
		p.Host.Equals(other.Host)
}

func (p *BinaryAnnotation) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("BinaryAnnotation(%+v)", *p)
}

// Span is a single unit of work in a trace.
//
// Attributes:
//   - TraceID: lower 64 bits of the trace id.
//   - Name: span name, usually the rpc method.
//   - ID: span id.
//   - ParentID: parent span id, nil for a root span.
//   - Annotations: timestamped events.
//   - BinaryAnnotations: tags.
//   - Debug: forces the span through any downstream sampling.
//   - Timestamp: microseconds from epoch of the span start.
//   - Duration: microseconds of critical path latency.
//   - TraceIDHigh: upper 64 bits of a 128 bit trace id, nil or 0 otherwise.
type Span struct {
	TraceID           int64               `thrift:"trace_id,1" json:"trace_id"`
	Name              string              `thrift:"name,3" json:"name"`
	ID                int64               `thrift:"id,4" json:"id"`
	ParentID          *int64              `thrift:"parent_id,5" json:"parent_id,omitempty"`
	Annotations       []*Annotation       `thrift:"annotations,6" json:"annotations"`
	BinaryAnnotations []*BinaryAnnotation `thrift:"binary_annotations,8" json:"binary_annotations"`
	Debug             bool                `thrift:"debug,9" json:"debug,omitempty"`
	Timestamp         *int64              `thrift:"timestamp,10" json:"timestamp,omitempty"`
	Duration          *int64              `thrift:"duration,11" json:"duration,omitempty"`
	TraceIDHigh       *int64              `thrift:"trace_id_high,12" json:"trace_id_high,omitempty"`
}

// NewSpan returns an empty Span.
func NewSpan() *Span {
	return &Span{}
}

func (p *Span) GetTraceID() int64 { return p.TraceID }
func (p *Span) GetName() string { return p.Name }
func (p *Span) GetID() int64 { return p.ID }
func (p *Span) GetAnnotations() []*Annotation { return p.Annotations }
func (p *Span) GetBinaryAnnotations() []*BinaryAnnotation { return p.BinaryAnnotations }
func (p *Span) GetDebug() bool { return p.Debug }
func (p *Span) IsSetParentID() bool { return p.ParentID != nil }
func (p *Span) IsSetDebug() bool { return p.Debug }
func (p *Span) IsSetTimestamp() bool { return p.Timestamp != nil }
func (p *Span) IsSetDuration() bool { return p.Duration != nil }
func (p *Span) IsSetTraceIDHigh() bool { return p.TraceIDHigh != nil }
func (p *Span) GetParentID() int64 { return deref(p.ParentID) }
func (p *Span) GetTimestamp() int64 { return deref(p.Timestamp) }
func (p *Span) GetDuration() int64 { return deref(p.Duration) }
func (p *Span) GetTraceIDHigh() int64 { return deref(p.TraceIDHigh) }

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func (p *Span) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read error: ", p), err)
	}
	for {
		_, fieldTypeID, fieldID, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%T field %d read error: ", p, fieldID), err)
		}
		if fieldTypeID == thrift.STOP {
			break
		}
		switch {
		case fieldID == 1 && fieldTypeID == thrift.I64:
			if p.TraceID, err = iprot.ReadI64(ctx); err != nil {
				return thrift.PrependError("error reading field 1: ", err)
			}
		case fieldID == 3 && fieldTypeID == thrift.STRING:
			if p.Name, err = iprot.ReadString(ctx); err != nil {
				return thrift.PrependError("error reading field 3: ", err)
			}
		case fieldID == 4 && fieldTypeID == thrift.I64:
			if p.ID, err = iprot.ReadI64(ctx); err != nil {
				return thrift.PrependError("error reading field 4: ", err)
			}
		case fieldID == 5 && fieldTypeID == thrift.I64:
			if p.ParentID, err = readOptionalI64(ctx, iprot); err != nil {
				return thrift.PrependError("error reading field 5: ", err)
			}
		case fieldID == 6 && fieldTypeID == thrift.LIST:
			if err := p.readAnnotations(ctx, iprot); err != nil {
				return err
			}
		case fieldID == 8 && fieldTypeID == thrift.LIST:
			if err := p.readBinaryAnnotations(ctx, iprot); err != nil {
				return err
			}
		case fieldID == 9 && fieldTypeID == thrift.BOOL:
			if p.Debug, err = iprot.ReadBool(ctx); err != nil {
				return thrift.PrependError("error reading field 9: ", err)
			}
		case fieldID == 10 && fieldTypeID == thrift.I64:
			if p.Timestamp, err = readOptionalI64(ctx, iprot); err != nil {
				return thrift.PrependError("error reading field 10: ", err)
			}
		case fieldID == 11 && fieldTypeID == thrift.I64:
			if p.Duration, err = readOptionalI64(ctx, iprot); err != nil {
				return thrift.PrependError("error reading field 11: ", err)
			}
		case fieldID == 12 && fieldTypeID == thrift.I64:
			if p.TraceIDHigh, err = readOptionalI64(ctx, iprot); err != nil {
				return thrift.PrependError("error reading field 12: ", err)
			}
		default:
			if err := iprot.Skip(ctx, fieldTypeID); err != nil {
				return err
			}
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := iprot.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T read struct end error: ", p), err)
	}
	return nil
}

func (p *Span) readAnnotations(ctx context.Context, iprot thrift.TProtocol) error {
	_, size, err := iprot.ReadListBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading list begin: ", err)
	}
	p.Annotations = nil
	for i := 0; i < size; i++ {
		elem := &Annotation{}
		if err := elem.Read(ctx, iprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error reading struct: ", elem), err)
		}
		p.Annotations = append(p.Annotations, elem)
	}
	if err := iprot.ReadListEnd(ctx); err != nil {
		return thrift.PrependError("error reading list end: ", err)
	}
	return nil
}

func (p *Span) readBinaryAnnotations(ctx context.Context, iprot thrift.TProtocol) error {
	_, size, err := iprot.ReadListBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading list begin: ", err)
	}
	p.BinaryAnnotations = nil
	for i := 0; i < size; i++ {
		elem := &BinaryAnnotation{}
		if err := elem.Read(ctx, iprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error reading struct: ", elem), err)
		}
		p.BinaryAnnotations = append(p.BinaryAnnotations, elem)
	}
	if err := iprot.ReadListEnd(ctx); err != nil {
		return thrift.PrependError("error reading list end: ", err)
	}
	return nil
}

func (p *Span) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Span"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	if err := writeI64(ctx, oprot, "trace_id", 1, p.TraceID); err != nil {
		return err
	}
	if err := writeString(ctx, oprot, "name", 3, p.Name); err != nil {
		return err
	}
	if err := writeI64(ctx, oprot, "id", 4, p.ID); err != nil {
		return err
	}
	if p.IsSetParentID() {
		if err := writeI64(ctx, oprot, "parent_id", 5, *p.ParentID); err != nil {
			return err
		}
	}
	if err := p.writeAnnotations(ctx, oprot); err != nil {
		return err
	}
	if err := p.writeBinaryAnnotations(ctx, oprot); err != nil {
		return err
	}
	if p.IsSetDebug() {
		if err := writeBool(ctx, oprot, "debug", 9, p.Debug); err != nil {
			return err
		}
	}
	if p.IsSetTimestamp() {
		if err := writeI64(ctx, oprot, "timestamp", 10, *p.Timestamp); err != nil {
			return err
		}
	}
	if p.IsSetDuration() {
		if err := writeI64(ctx, oprot, "duration", 11, *p.Duration); err != nil {
			return err
		}
	}
	if p.IsSetTraceIDHigh() {
		if err := writeI64(ctx, oprot, "trace_id_high", 12, *p.TraceIDHigh); err != nil {
			return err
		}
	}
	return writeStructEnd(ctx, oprot, p)
}

func (p *Span) writeAnnotations(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteFieldBegin(ctx, "annotations", thrift.LIST, 6); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field begin error 6:annotations: ", p), err)
	}
	if err := oprot.WriteListBegin(ctx, thrift.STRUCT, len(p.Annotations)); err != nil {
		return thrift.PrependError("error writing list begin: ", err)
	}
	for _, v := range p.Annotations {
		if err := v.Write(ctx, oprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error writing struct: ", v), err)
		}
	}
	if err := oprot.WriteListEnd(ctx); err != nil {
		return thrift.PrependError("error writing list end: ", err)
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field end error 6:annotations: ", p), err)
	}
	return nil
}

func (p *Span) writeBinaryAnnotations(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteFieldBegin(ctx, "binary_annotations", thrift.LIST, 8); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field begin error 8:binary_annotations: ", p), err)
	}
	if err := oprot.WriteListBegin(ctx, thrift.STRUCT, len(p.BinaryAnnotations)); err != nil {
		return thrift.PrependError("error writing list begin: ", err)
	}
	for _, v := range p.BinaryAnnotations {
		if err := v.Write(ctx, oprot); err != nil {
			return thrift.PrependError(fmt.Sprintf("%T error writing struct: ", v), err)
		}
	}
	if err := oprot.WriteListEnd(ctx); err != nil {
		return thrift.PrependError("error writing list end: ", err)
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write field end error 8:binary_annotations: ", p), err)
	}
	return nil
}

func (p *Span) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Span(%+v)", *p)
}

// WriteSpans encodes spans as a thrift binary list<Span>, the body of a Zipkin
// v1 thrift POST.
func WriteSpans(ctx context.Context, spans []*Span) ([]byte, error) {
	t := thrift.NewTMemoryBuffer()
	p := thrift.NewTBinaryProtocolConf(t, nil)
	if err := p.WriteListBegin(ctx, thrift.STRUCT, len(spans)); err != nil {
		return nil, err
	}
	for _, s := range spans {
		if err := s.Write(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := p.WriteListEnd(ctx); err != nil {
		return nil, err
	}
	if err := p.Flush(ctx); err != nil {
		return nil, err
	}
	return t.Bytes(), nil
}

// ReadSpans decodes a thrift binary list<Span>.
func ReadSpans(ctx context.Context, body []byte) ([]*Span, error) {
	t := thrift.NewTMemoryBuffer()
	if _, err := t.Write(body); err != nil {
		return nil, err
	}
	p := thrift.NewTBinaryProtocolConf(t, nil)
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, err
	}
	var spans []*Span
	for i := 0; i < size; i++ {
		s := &Span{}
		if err := s.Read(ctx, p); err != nil {
			return nil, err
		}
		spans = append(spans, s)
	}
	if err := p.ReadListEnd(ctx); err != nil {
		return nil, err
	}
	return spans, nil
}

func readOptionalI64(ctx context.Context, iprot thrift.TProtocol) (*int64, error) {
	v, err := iprot.ReadI64(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func writeFieldBegin(ctx context.Context, oprot thrift.TProtocol, name string, typeID thrift.TType, id int16) error {
	if err := oprot.WriteFieldBegin(ctx, name, typeID, id); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field begin error %d:%s: ", id, name), err)
	}
	return nil
}

func writeFieldEnd(ctx context.Context, oprot thrift.TProtocol, name string, id int16) error {
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("write field end error %d:%s: ", id, name), err)
	}
	return nil
}

func writeI16(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int16) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.I16, id); err != nil {
		return err
	}
	if err := oprot.WriteI16(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeI32(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int32) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.I32, id); err != nil {
		return err
	}
	if err := oprot.WriteI32(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeI64(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v int64) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.I64, id); err != nil {
		return err
	}
	if err := oprot.WriteI64(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeBool(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v bool) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.BOOL, id); err != nil {
		return err
	}
	if err := oprot.WriteBool(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeString(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v string) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.STRING, id); err != nil {
		return err
	}
	if err := oprot.WriteString(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeBinary(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v []byte) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.STRING, id); err != nil {
		return err
	}
	if err := oprot.WriteBinary(ctx, v); err != nil {
		return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", id, name), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeStruct(ctx context.Context, oprot thrift.TProtocol, name string, id int16, v thrift.TStruct) error {
	if err := writeFieldBegin(ctx, oprot, name, thrift.STRUCT, id); err != nil {
		return err
	}
	if err := v.Write(ctx, oprot); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T error writing struct: ", v), err)
	}
	return writeFieldEnd(ctx, oprot, name, id)
}

func writeStructEnd(ctx context.Context, oprot thrift.TProtocol, p interface{}) error {
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	if err := oprot.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct stop error: ", p), err)
	}
	return nil
}
