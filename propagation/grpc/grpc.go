// Copyright 2022 The OpenZipkin Authors
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

// Package grpc propagates span contexts through gRPC metadata and traces
// unary calls on both ends.
package grpc

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const componentName = "grpc"

// MetadataCarrier adapts gRPC metadata to opentracing.TextMapReader and
// opentracing.TextMapWriter. gRPC lowercases metadata keys.
type MetadataCarrier metadata.MD

// Set implements opentracing.TextMapWriter.
func (c MetadataCarrier) Set(key, val string) {
	c[strings.ToLower(key)] = []string{val}
}

// ForeachKey implements opentracing.TextMapReader.
func (c MetadataCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, vals := range c {
		for _, v := range vals {
			if err := handler(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// FoldsKeys reports that keys lose their case on the way through.
func (c MetadataCarrier) FoldsKeys() bool {
	return true
}

// UnaryServerInterceptor starts a server span for every unary call, continuing
// the trace found in the incoming metadata. The span is available to handlers
// through opentracing.SpanFromContext.
func UnaryServerInterceptor(tracer opentracing.Tracer) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var parent opentracing.SpanContext
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if sc, err := tracer.Extract(opentracing.TextMap, MetadataCarrier(md)); err == nil {
				parent = sc
			}
		}

		sp := tracer.StartSpan(info.FullMethod, ext.RPCServerOption(parent))
		defer sp.Finish()
		ext.Component.Set(sp, componentName)

		resp, err := handler(opentracing.ContextWithSpan(ctx, sp), req)
		finishWithStatus(sp, err)
		return resp, err
	}
}

// UnaryClientInterceptor starts a client span for every unary call and
// injects it into the outgoing metadata.
func UnaryClientInterceptor(tracer opentracing.Tracer) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		spanOpts := []opentracing.StartSpanOption{ext.SpanKindRPCClient}
		if parent := opentracing.SpanFromContext(ctx); parent != nil {
			spanOpts = append(spanOpts, opentracing.ChildOf(parent.Context()))
		}
		sp := tracer.StartSpan(method, spanOpts...)
		defer sp.Finish()
		ext.Component.Set(sp, componentName)

		md, ok := metadata.FromOutgoingContext(ctx)
		if ok {
			md = md.Copy()
		} else {
			md = metadata.MD{}
		}
		if err := tracer.Inject(sp.Context(), opentracing.TextMap, MetadataCarrier(md)); err != nil {
			sp.LogKV("event", "inject failed", "error", err.Error())
		}

		err := invoker(metadata.NewOutgoingContext(ctx, md), method, req, reply, cc, opts...)
		finishWithStatus(sp, err)
		return err
	}
}

func finishWithStatus(sp opentracing.Span, err error) {
	sp.SetTag("grpc.status_code", status.Code(err).String())
	if err != nil {
		ext.Error.Set(sp, true)
		sp.LogKV("event", "error", "message", err.Error())
	}
}
