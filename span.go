// Copyright 2019 The OpenZipkin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package zipkintracer

import (
	"sync"
	"time"

	otobserver "github.com/opentracing-contrib/go-observer"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

// RawSpan encapsulates all state associated with a finished span.
type RawSpan struct {
	// Those recording the RawSpan should also record the contents of its
	// SpanContext.
	Context model.SpanContext

	// The name of the "operation" this span is an instance of.
	Operation string

	// Start and Finish of the span. Finish is zero until the span finishes.
	Start  time.Time
	Finish time.Time

	// Essentially an extension mechanism. Can be used for many purposes,
	// not to be confused with SpanContext baggage.
	Tags opentracing.Tags

	// The span's "microlog".
	Logs []opentracing.LogRecord
}

// Duration is Finish minus Start.
func (r RawSpan) Duration() time.Duration {
	return r.Finish.Sub(r.Start)
}

type spanImpl struct {
	tracer   *tracerImpl
	event    func(SpanEvent)
	observer otobserver.SpanObserver

	sync.Mutex // protects the fields below
	raw        RawSpan
	finished   bool
}

func (s *spanImpl) SetOperationName(operationName string) opentracing.Span {
	if s.observer != nil {
		s.observer.OnSetOperationName(operationName)
	}
	s.Lock()
	defer s.Unlock()
	s.raw.Operation = operationName
	return s
}

func (s *spanImpl) SetTag(key string, value interface{}) opentracing.Span {
	defer s.onTag(key, value)
	if s.observer != nil {
		s.observer.OnSetTag(key, value)
	}

	s.Lock()
	defer s.Unlock()
	if s.finished {
		return s
	}
	if s.raw.Tags == nil {
		s.raw.Tags = opentracing.Tags{}
	}
	s.raw.Tags[key] = value
	return s
}

func (s *spanImpl) LogKV(keyValues ...interface{}) {
	fields, err := log.InterleavedKVToFields(keyValues...)
	if err != nil {
		s.LogFields(log.Error(err), log.String("function", "LogKV"))
		return
	}
	s.LogFields(fields...)
}

func (s *spanImpl) LogFields(fields ...log.Field) {
	s.appendLog(opentracing.LogRecord{
		Timestamp: time.Now(),
		Fields:    fields,
	})
}

func (s *spanImpl) appendLog(lr opentracing.LogRecord) {
	defer s.onLogFields(lr)
	s.Lock()
	defer s.Unlock()
	if !s.finished {
		s.raw.Logs = append(s.raw.Logs, lr)
	}
}

func (s *spanImpl) LogEvent(event string) {
	s.Log(opentracing.LogData{
		Event: event,
	})
}

func (s *spanImpl) LogEventWithPayload(event string, payload interface{}) {
	s.Log(opentracing.LogData{
		Event:   event,
		Payload: payload,
	})
}

func (s *spanImpl) Log(ld opentracing.LogData) {
	defer s.onLog(ld)
	if ld.Timestamp.IsZero() {
		ld.Timestamp = time.Now()
	}

	s.Lock()
	defer s.Unlock()
	if !s.finished {
		s.raw.Logs = append(s.raw.Logs, ld.ToLogRecord())
	}
}

func (s *spanImpl) Finish() {
	s.FinishWithOptions(opentracing.FinishOptions{})
}

func (s *spanImpl) FinishWithOptions(opts opentracing.FinishOptions) {
	finishTime := opts.FinishTime
	if finishTime.IsZero() {
		finishTime = time.Now()
	}

	s.Lock()
	if s.finished {
		s.Unlock()
		return
	}
	s.finished = true
	s.raw.Logs = append(s.raw.Logs, opts.LogRecords...)
	for _, ld := range opts.BulkLogData {
		s.raw.Logs = append(s.raw.Logs, ld.ToLogRecord())
	}
	s.raw.Finish = finishTime
	raw := s.raw
	s.Unlock()

	if s.observer != nil {
		s.observer.OnFinish(opts)
	}
	s.onFinish(raw)
	s.tracer.recorder.RecordSpan(raw)
}

func (s *spanImpl) Tracer() opentracing.Tracer {
	return s.tracer
}

func (s *spanImpl) Context() opentracing.SpanContext {
	s.Lock()
	defer s.Unlock()
	return s.raw.Context
}

func (s *spanImpl) SetBaggageItem(key, val string) opentracing.Span {
	s.onBaggage(key, val)

	s.Lock()
	defer s.Unlock()
	s.raw.Context = s.raw.Context.WithBaggageItem(key, val)
	return s
}

func (s *spanImpl) BaggageItem(key string) string {
	s.Lock()
	defer s.Unlock()
	return s.raw.Context.BaggageItem(key)
}

// Operation returns the current operation name.
func (s *spanImpl) Operation() string {
	s.Lock()
	defer s.Unlock()
	return s.raw.Operation
}
