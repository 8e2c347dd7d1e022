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

package grpc_test

import (
	"context"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	zipkintracer "github.com/openzipkin-contrib/zipkintracer-thrift"
	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
	zgrpc "github.com/openzipkin-contrib/zipkintracer-thrift/propagation/grpc"
)

func TestMetadataCarrierFoldsBaggageKeys(t *testing.T) {
	tracer, err := zipkintracer.NewTracer(zipkintracer.NewInMemoryRecorder())
	require.NoError(t, err)

	sc := model.NewSpanContext().WithBaggageItem("User", "alice")
	md := metadata.MD{}
	require.NoError(t, tracer.Inject(sc, opentracing.TextMap, zgrpc.MetadataCarrier(md)))
	assert.Equal(t, []string{"alice"}, md.Get("ot-baggage-user"))

	have, err := tracer.Extract(opentracing.TextMap, zgrpc.MetadataCarrier(md))
	require.NoError(t, err)
	out := have.(model.SpanContext)
	assert.Equal(t, "alice", out.BaggageItem("user"))
	assert.Equal(t, sc.TraceID, out.TraceID)
	assert.Equal(t, sc.SpanID, out.SpanID)
}

func TestClientServerInterceptors(t *testing.T) {
	rec := zipkintracer.NewInMemoryRecorder()
	tracer, err := zipkintracer.NewTracer(rec)
	require.NoError(t, err)

	server := zgrpc.UnaryServerInterceptor(tracer)
	client := zgrpc.UnaryClientInterceptor(tracer)

	var handlerSpan opentracing.Span
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		_, err := server(metadata.NewIncomingContext(ctx, md), req,
			&grpc.UnaryServerInfo{FullMethod: method},
			func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerSpan = opentracing.SpanFromContext(ctx)
				return nil, status.Error(codes.NotFound, "no such user")
			})
		return err
	}

	root := tracer.StartSpan("root")
	ctx := opentracing.ContextWithSpan(context.Background(), root)
	err = client(ctx, "/users.Users/Get", nil, nil, nil, invoker)
	root.Finish()
	assert.Equal(t, codes.NotFound, status.Code(err))
	require.NotNil(t, handlerSpan)

	spans := rec.GetSpans()
	require.Len(t, spans, 3)
	serverSpan, clientSpan, rootSpan := spans[0], spans[1], spans[2]

	assert.Equal(t, rootSpan.Context.TraceID, serverSpan.Context.TraceID)
	require.NotNil(t, clientSpan.Context.ParentSpanID)
	assert.Equal(t, rootSpan.Context.SpanID, *clientSpan.Context.ParentSpanID)
	require.NotNil(t, serverSpan.Context.ParentSpanID)
	assert.Equal(t, clientSpan.Context.SpanID, *serverSpan.Context.ParentSpanID)

	assert.Equal(t, ext.SpanKindRPCServerEnum, serverSpan.Tags[string(ext.SpanKind)])
	assert.Equal(t, ext.SpanKindRPCClientEnum, clientSpan.Tags[string(ext.SpanKind)])
	for _, sp := range []zipkintracer.RawSpan{serverSpan, clientSpan} {
		assert.Equal(t, "/users.Users/Get", sp.Operation)
		assert.Equal(t, "NotFound", sp.Tags["grpc.status_code"])
		assert.Equal(t, true, sp.Tags[string(ext.Error)])
		assert.Equal(t, "grpc", sp.Tags[string(ext.Component)])
	}
}

func TestServerInterceptorWithoutMetadata(t *testing.T) {
	rec := zipkintracer.NewInMemoryRecorder()
	tracer, err := zipkintracer.NewTracer(rec)
	require.NoError(t, err)

	resp, err := zgrpc.UnaryServerInterceptor(tracer)(context.Background(), "req",
		&grpc.UnaryServerInfo{FullMethod: "/svc/M"},
		func(ctx context.Context, req interface{}) (interface{}, error) { return "resp", nil })
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)

	sp := rec.GetSpans()[0]
	assert.Nil(t, sp.Context.ParentSpanID)
	assert.Equal(t, "OK", sp.Tags["grpc.status_code"])
	assert.NotContains(t, sp.Tags, string(ext.Error))
}
