package zipkintracer

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpan_SingleLoggedTaggedSpan(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	span := tracer.StartSpan("x")
	span.LogEventWithPayload("key1", "{\"user\": 123}")
	span.LogFields(log.String("key2", "value2"), log.Uint32("32bit", 4294967295))
	span.SetTag("key3", "value3")
	span.Finish()
	spans := recorder.GetSpans()
	assert.Equal(t, 1, len(spans))
	assert.Equal(t, "x", spans[0].Operation)
	assert.Equal(t, 2, len(spans[0].Logs))
	assert.Equal(t, opentracing.Tags{"key3": "value3"}, spans[0].Tags)

	zs := EncodeSpan(spans[0], testEndpoint)
	require.Len(t, zs.Annotations, 2)
	assert.JSONEq(t, `{"event":"key1","payload":"{\"user\": 123}"}`, zs.Annotations[0].Value)
	assert.JSONEq(t, `{"key2":"value2","32bit":4294967295}`, zs.Annotations[1].Value)
	require.Len(t, zs.BinaryAnnotations, 1)
	assert.Equal(t, "key3", zs.BinaryAnnotations[0].Key)
}

func TestSpan_LogKVMalformed(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	span := tracer.StartSpan("x")
	span.LogKV("odd")
	span.Finish()

	logs := recorder.GetSpans()[0].Logs
	require.Len(t, logs, 1)
	fields := map[string]interface{}{}
	for _, f := range logs[0].Fields {
		fields[f.Key()] = f.Value()
	}
	assert.Equal(t, "LogKV", fields["function"])
	assert.Len(t, fields, 2)
}

func TestSpan_FinishOnce(t *testing.T) {
	var r CountingRecorder
	tracer := newTracer(&r)

	span := tracer.StartSpan("x")
	span.Finish()
	span.Finish()
	span.FinishWithOptions(opentracing.FinishOptions{})

	if want, have := 1, r.count(); want != have {
		t.Errorf("want %d recorded spans, have %d", want, have)
	}
}

func TestSpan_MutationsAfterFinishAreIgnored(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	span := tracer.StartSpan("x")
	span.Finish()
	span.SetTag("late", true)
	span.LogKV("late", true)
	span.LogEvent("late")

	raw := recorder.GetSpans()[0]
	assert.Empty(t, raw.Tags)
	assert.Empty(t, raw.Logs)
}

func TestSpan_FinishWithOptionsLogs(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	ts := time.Unix(2000, 0)
	span := tracer.StartSpan("x", opentracing.StartTime(ts))
	span.FinishWithOptions(opentracing.FinishOptions{
		FinishTime: ts.Add(time.Millisecond),
		LogRecords: []opentracing.LogRecord{{Timestamp: ts, Fields: []log.Field{log.String("a", "b")}}},
		BulkLogData: []opentracing.LogData{{Timestamp: ts, Event: "bulk"}},
	})

	raw := recorder.GetSpans()[0]
	require.Len(t, raw.Logs, 2)
	assert.Equal(t, "a", raw.Logs[0].Fields[0].Key())
	assert.Equal(t, "bulk", raw.Logs[1].Fields[0].Value())
	assert.Equal(t, ts.Add(time.Millisecond), raw.Finish)
}

func TestSpan_Baggage(t *testing.T) {
	tracer := newTracer(NewInMemoryRecorder())

	span := tracer.StartSpan("x")
	before := span.Context()
	span.SetBaggageItem("k", "v")

	assert.Equal(t, "v", span.BaggageItem("k"))
	items := map[string]string{}
	span.Context().ForeachBaggageItem(func(k, v string) bool {
		items[k] = v
		return true
	})
	assert.Equal(t, map[string]string{"k": "v"}, items)

	// contexts handed out earlier are not mutated
	before.ForeachBaggageItem(func(k, v string) bool {
		t.Errorf("unexpected baggage %s=%s", k, v)
		return true
	})
}

func TestSpan_SetOperationName(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	span := tracer.StartSpan("x")
	span.SetOperationName("y")
	assert.Equal(t, "y", span.(*spanImpl).Operation())
	assert.Equal(t, tracer, span.Tracer())
	span.Finish()
	assert.Equal(t, "y", recorder.GetSpans()[0].Operation)
}

func TestSpan_LogError(t *testing.T) {
	recorder := NewInMemoryRecorder()
	tracer := newTracer(recorder)

	span := tracer.StartSpan("x")
	span.LogFields(log.Error(errors.New("boom")))
	span.Finish()

	zs := EncodeSpan(recorder.GetSpans()[0], nil)
	require.Len(t, zs.Annotations, 1)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(zs.Annotations[0].Value), &fields))
	require.Len(t, fields, 1)
	for _, v := range fields {
		assert.Equal(t, "boom", v)
	}
}
