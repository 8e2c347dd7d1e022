// Package wire holds the thrift record used to carry a span context through
// opentracing.Binary carriers.
package wire

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"
)

// FlagDebug is the bit of SpanContext.Flags marking a debug trace.
const FlagDebug int32 = 1

// ErrMissingField is returned by Validate when a required field is unset.
var ErrMissingField = errors.New("missing required field")

// SpanContext is the thrift binary form of a propagated span context. All
// fields are optional on the wire, Validate checks the ones a receiver needs.
type SpanContext struct {
	TraceID      *int64            `thrift:"trace_id,1"`
	TraceIDHigh  *int64            `thrift:"trace_id_high,2"`
	SpanID       *int64            `thrift:"span_id,3"`
	ParentSpanID *int64            `thrift:"parent_span_id,4"`
	Sampled      *bool             `thrift:"sampled,5"`
	Flags        *int32            `thrift:"flags,6"`
	BaggageItems map[string]string `thrift:"baggage_items,7"`
}

// Validate reports the first missing field among trace_id, trace_id_high and
// span_id.
func (p *SpanContext) Validate() error {
	switch {
	case p.TraceID == nil:
		return errors.Wrap(ErrMissingField, "trace_id")
	case p.TraceIDHigh == nil:
		return errors.Wrap(ErrMissingField, "trace_id_high")
	case p.SpanID == nil:
		return errors.Wrap(ErrMissingField, "span_id")
	}
	return nil
}

// MarshalBinary returns the thrift binary encoding of p with no framing.
func (p *SpanContext) MarshalBinary() ([]byte, error) {
	return thrift.NewTSerializer().Write(context.Background(), p)
}

// UnmarshalBinary decodes a thrift binary record into p.
func (p *SpanContext) UnmarshalBinary(b []byte) error {
	return thrift.NewTDeserializer().Read(context.Background(), p, b)
}

func (p *SpanContext) Read(ctx context.Context, iprot thrift.TProtocol) error {
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
		case fieldID >= 1 && fieldID <= 4 && fieldTypeID == thrift.I64:
			v, err := iprot.ReadI64(ctx)
			if err != nil {
				return thrift.PrependError(fmt.Sprintf("error reading field %d: ", fieldID), err)
			}
			*p.i64Field(fieldID) = &v
		case fieldID == 5 && fieldTypeID == thrift.BOOL:
			v, err := iprot.ReadBool(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 5: ", err)
			}
			p.Sampled = &v
		case fieldID == 6 && fieldTypeID == thrift.I32:
			v, err := iprot.ReadI32(ctx)
			if err != nil {
				return thrift.PrependError("error reading field 6: ", err)
			}
			p.Flags = &v
		case fieldID == 7 && fieldTypeID == thrift.MAP:
			if err := p.readBaggage(ctx, iprot); err != nil {
				return err
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

func (p *SpanContext) i64Field(id int16) **int64 {
	switch id {
	case 1:
		return &p.TraceID
	case 2:
		return &p.TraceIDHigh
	case 3:
		return &p.SpanID
	}
	return &p.ParentSpanID
}

func (p *SpanContext) readBaggage(ctx context.Context, iprot thrift.TProtocol) error {
	_, _, size, err := iprot.ReadMapBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading map begin: ", err)
	}
	p.BaggageItems = make(map[string]string)
	for i := 0; i < size; i++ {
		k, err := iprot.ReadString(ctx)
		if err != nil {
			return thrift.PrependError("error reading baggage key: ", err)
		}
		v, err := iprot.ReadString(ctx)
		if err != nil {
			return thrift.PrependError("error reading baggage value: ", err)
		}
		p.BaggageItems[k] = v
	}
	if err := iprot.ReadMapEnd(ctx); err != nil {
		return thrift.PrependError("error reading map end: ", err)
	}
	return nil
}

func (p *SpanContext) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "SpanContext"); err != nil {
		return thrift.PrependError(fmt.Sprintf("%T write struct begin error: ", p), err)
	}
	for _, f := range []struct {
		name string
		id   int16
		v    *int64
	}{
		{"trace_id", 1, p.TraceID},
		{"trace_id_high", 2, p.TraceIDHigh},
		{"span_id", 3, p.SpanID},
		{"parent_span_id", 4, p.ParentSpanID},
	} {
		if f.v == nil {
			continue
		}
		if err := oprot.WriteFieldBegin(ctx, f.name, thrift.I64, f.id); err != nil {
			return thrift.PrependError(fmt.Sprintf("write field begin error %d:%s: ", f.id, f.name), err)
		}
		if err := oprot.WriteI64(ctx, *f.v); err != nil {
			return thrift.PrependError(fmt.Sprintf("field write error %d:%s: ", f.id, f.name), err)
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if p.Sampled != nil {
		if err := oprot.WriteFieldBegin(ctx, "sampled", thrift.BOOL, 5); err != nil {
			return thrift.PrependError("write field begin error 5:sampled: ", err)
		}
		if err := oprot.WriteBool(ctx, *p.Sampled); err != nil {
			return thrift.PrependError("field write error 5:sampled: ", err)
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if p.Flags != nil {
		if err := oprot.WriteFieldBegin(ctx, "flags", thrift.I32, 6); err != nil {
			return thrift.PrependError("write field begin error 6:flags: ", err)
		}
		if err := oprot.WriteI32(ctx, *p.Flags); err != nil {
			return thrift.PrependError("field write error 6:flags: ", err)
		}
		if err := oprot.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if p.BaggageItems != nil {
		if err := p.writeBaggage(ctx, oprot); err != nil {
			return err
		}
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	if err := oprot.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError("write struct stop error: ", err)
	}
	return nil
}

func (p *SpanContext) writeBaggage(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteFieldBegin(ctx, "baggage_items", thrift.MAP, 7); err != nil {
		return thrift.PrependError("write field begin error 7:baggage_items: ", err)
	}
	if err := oprot.WriteMapBegin(ctx, thrift.STRING, thrift.STRING, len(p.BaggageItems)); err != nil {
		return thrift.PrependError("error writing map begin: ", err)
	}
	for k, v := range p.BaggageItems {
		if err := oprot.WriteString(ctx, k); err != nil {
			return thrift.PrependError("error writing baggage key: ", err)
		}
		if err := oprot.WriteString(ctx, v); err != nil {
			return thrift.PrependError("error writing baggage value: ", err)
		}
	}
	if err := oprot.WriteMapEnd(ctx); err != nil {
		return thrift.PrependError("error writing map end: ", err)
	}
	return oprot.WriteFieldEnd(ctx)
}

func (p *SpanContext) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("SpanContext(%+v)", *p)
}
