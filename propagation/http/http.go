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

// Package http propagates Zipkin span contexts over net/http using B3
// headers, and traces servers and clients through an opentracing.Tracer.
package http

import (
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
	"github.com/openzipkin-contrib/zipkintracer-thrift/propagation/b3"
)

type propagator struct{}

// Propagator injects and extracts B3 headers on http.Header values.
var Propagator propagator

// Inject writes sc into h.
func (propagator) Inject(sc model.SpanContext, h http.Header, opts ...b3.InjectOption) {
	b3.Inject(sc, opentracing.HTTPHeadersCarrier(h), opts...)
}

// Extract reads a span context from h. It returns (nil, nil) when h carries
// no trace.
func (propagator) Extract(h http.Header) (*model.SpanContext, error) {
	return b3.Extract(opentracing.HTTPHeadersCarrier(h))
}

// Middleware traces every request served by next. The span continues the
// trace found in the request headers, when there is one, and is stored in the
// request context for handlers to use with opentracing.SpanFromContext.
func Middleware(tracer opentracing.Tracer, operationName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var opts []opentracing.StartSpanOption
		if parent, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(r.Header)); err == nil {
			opts = append(opts, ext.RPCServerOption(parent))
		} else {
			opts = append(opts, ext.SpanKindRPCServer)
		}

		sp := tracer.StartSpan(operationName, opts...)
		defer sp.Finish()

		ext.HTTPMethod.Set(sp, r.Method)
		ext.HTTPUrl.Set(sp, r.URL.String())

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(opentracing.ContextWithSpan(r.Context(), sp)))

		ext.HTTPStatusCode.Set(sp, uint16(sw.status))
		if sw.status >= http.StatusInternalServerError {
			ext.Error.Set(sp, true)
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Transport is an http.RoundTripper that traces outgoing requests. The client
// span is a child of the span found in the request context, if any, and is
// injected into the outgoing request headers.
type Transport struct {
	// Base is the wrapped RoundTripper, http.DefaultTransport when nil.
	Base          http.RoundTripper
	Tracer        opentracing.Tracer
	OperationName string
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	name := t.OperationName
	if name == "" {
		name = req.Method
	}

	opts := []opentracing.StartSpanOption{ext.SpanKindRPCClient}
	if parent := opentracing.SpanFromContext(req.Context()); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	sp := t.Tracer.StartSpan(name, opts...)
	defer sp.Finish()

	ext.HTTPMethod.Set(sp, req.Method)
	ext.HTTPUrl.Set(sp, req.URL.String())

	req = req.Clone(opentracing.ContextWithSpan(req.Context(), sp))
	if err := t.Tracer.Inject(sp.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header)); err != nil {
		sp.LogKV("event", "inject failed", "error", err.Error())
	}

	res, err := base.RoundTrip(req)
	if err != nil {
		ext.Error.Set(sp, true)
		sp.LogKV("event", "error", "error", err.Error())
		return nil, err
	}
	ext.HTTPStatusCode.Set(sp, uint16(res.StatusCode))
	if res.StatusCode >= http.StatusInternalServerError {
		ext.Error.Set(sp, true)
	}
	return res, nil
}
