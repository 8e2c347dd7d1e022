package zipkincore

import (
	"context"
	"runtime"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func testSpan() *Span {
	host := &Endpoint{Ipv4: 0x01020304, Port: 8080, ServiceName: "svc", Ipv6: []byte{0xfe, 0x80, 15: 1}}
	return &Span{
		TraceID:  -42,
		Name:     "get",
		ID:       7,
		ParentID: int64Ptr(3),
		Annotations: []*Annotation{
			{Timestamp: 1000, Value: SERVER_RECV, Host: host},
			{Timestamp: 2000, Value: SERVER_SEND},
		},
		BinaryAnnotations: []*BinaryAnnotation{
			{Key: "http.url", Value: []byte("/"), AnnotationType: AnnotationType_STRING, Host: host},
		},
		Debug:       true,
		Timestamp:   int64Ptr(1000),
		Duration:    int64Ptr(1000),
		TraceIDHigh: int64Ptr(99),
	}
}

func TestSpanRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := testSpan()

	b, err := thrift.NewTSerializer().Write(ctx, want)
	require.NoError(t, err)

	have := &Span{}
	require.NoError(t, thrift.NewTDeserializer().Read(ctx, have, b))
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("span mismatch (-want +have):\n%s", diff)
	}
}

func TestSpanOptionalFieldsOmitted(t *testing.T) {
	ctx := context.Background()
	want := &Span{TraceID: 1, Name: "x", ID: 2}

	b, err := thrift.NewTSerializer().Write(ctx, want)
	require.NoError(t, err)

	have := &Span{}
	require.NoError(t, thrift.NewTDeserializer().Read(ctx, have, b))
	if have.IsSetParentID() || have.IsSetTimestamp() || have.IsSetDuration() || have.IsSetTraceIDHigh() {
		t.Errorf("optional fields must stay unset, have %s", have)
	}
	if want, have := 0, len(have.GetAnnotations()); want != have {
		t.Errorf("want %d, have %d", want, have)
	}
}

func TestSpanFieldIDs(t *testing.T) {
	ctx := context.Background()
	b, err := thrift.NewTSerializer().Write(ctx, testSpan())
	require.NoError(t, err)

	buf := thrift.NewTMemoryBuffer()
	_, err = buf.Write(b)
	require.NoError(t, err)
	p := thrift.NewTBinaryProtocolConf(buf, nil)

	_, err = p.ReadStructBegin(ctx)
	require.NoError(t, err)
	var ids []int16
	for {
		_, typeID, id, err := p.ReadFieldBegin(ctx)
		require.NoError(t, err)
		if typeID == thrift.STOP {
			break
		}
		ids = append(ids, id)
		require.NoError(t, p.Skip(ctx, typeID))
		require.NoError(t, p.ReadFieldEnd(ctx))
	}
	if diff := cmp.Diff([]int16{1, 3, 4, 5, 6, 8, 9, 10, 11, 12}, ids); diff != "" {
		t.Errorf("field ids (-want +have):\n%s", diff)
	}
}

func TestReadSkipsUnknownFields(t *testing.T) {
	ctx := context.Background()
	buf := thrift.NewTMemoryBuffer()
	p := thrift.NewTBinaryProtocolConf(buf, nil)

	require.NoError(t, p.WriteStructBegin(ctx, "Endpoint"))
	require.NoError(t, p.WriteFieldBegin(ctx, "unknown", thrift.STRING, 42))
	require.NoError(t, p.WriteString(ctx, "ignored"))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteFieldBegin(ctx, "service_name", thrift.STRING, 3))
	require.NoError(t, p.WriteString(ctx, "svc"))
	require.NoError(t, p.WriteFieldEnd(ctx))
	require.NoError(t, p.WriteFieldStop(ctx))
	require.NoError(t, p.WriteStructEnd(ctx))

	e := &Endpoint{}
	require.NoError(t, e.Read(ctx, p))
	if want, have := "svc", e.GetServiceName(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestSpanListRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := []*Span{testSpan(), {TraceID: 5, Name: "second", ID: 6}}

	b, err := WriteSpans(ctx, want)
	require.NoError(t, err)

	have, err := ReadSpans(ctx, b)
	require.NoError(t, err)
	if diff := cmp.Diff(want, have, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("spans mismatch (-want +have):\n%s", diff)
	}
}

func TestAnnotationTypeText(t *testing.T) {
	for v := AnnotationType_BOOL; v <= AnnotationType_STRING; v++ {
		text, err := v.MarshalText()
		require.NoError(t, err)
		var have AnnotationType
		require.NoError(t, have.UnmarshalText(text))
		if want := v; want != have {
			t.Errorf("want %v, have %v", want, have)
		}
	}
	_, err := AnnotationTypeFromString("FLOAT")
	require.Error(t, err)
}

func allocatedBy(f func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	f()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestHugeDeclaredListSizes(t *testing.T) {
	ctx := context.Background()
	huge := []byte{0x05, 0x5d, 0x4a, 0x80}

	for name, decode := range map[string]func() error{
		"spans": func() error {
			_, err := ReadSpans(ctx, append([]byte{byte(thrift.STRUCT)}, huge...))
			return err
		},
		"annotations": func() error {
			b := append([]byte{byte(thrift.LIST), 0, 6, byte(thrift.STRUCT)}, huge...)
			return thrift.NewTDeserializer().Read(ctx, &Span{}, b)
		},
		"binary annotations": func() error {
			b := append([]byte{byte(thrift.LIST), 0, 8, byte(thrift.STRUCT)}, huge...)
			return thrift.NewTDeserializer().Read(ctx, &Span{}, b)
		},
	} {
		var err error
		alloc := allocatedBy(func() { err = decode() })
		if err == nil {
			t.Errorf("%s: want error on truncated input", name)
		}
		if max := uint64(1 << 20); alloc > max {
			t.Errorf("%s: allocated %d bytes, want at most %d", name, alloc, max)
		}
	}
}
