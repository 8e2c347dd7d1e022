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

package b3

import (
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

func TestBuildSingleHeader(t *testing.T) {
	sc := model.NewSpanContextWithOptions(
		model.WithTraceID(model.TraceIDFromUint64(1)),
		model.WithSpanID(2),
	)
	if want, have := "0000000000000001-2-1", BuildSingleHeader(sc); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := "00000000000000010000000000000002-2a-d-29", BuildSingleHeader(testContext()); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestSingleHeaderRoundTrip(t *testing.T) {
	for _, opt := range []InjectOption{WithSingleHeaderOnly(), WithSingleAndMultiHeader()} {
		want := testContext()
		carrier := opentracing.TextMapCarrier{}
		Inject(want, carrier, opt)
		if _, ok := carrier[Context]; !ok {
			t.Fatal("missing single header")
		}

		have, err := Extract(carrier)
		require.NoError(t, err)
		require.NotNil(t, have)
		assert.True(t, want.Equal(*have), "want %+v, have %+v", want, *have)
	}
}

func TestSingleHeaderDebugImpliesSampled(t *testing.T) {
	sent := model.NewSpanContextWithOptions(model.WithDebug(true), model.WithSampled(false))
	carrier := opentracing.TextMapCarrier{}
	Inject(sent, carrier, WithSingleHeaderOnly())

	have, err := Extract(carrier)
	require.NoError(t, err)
	require.NotNil(t, have)
	assert.True(t, have.Debug)
	assert.True(t, have.Sampled)

	// the multi headers keep the sampling state apart from the debug flag
	carrier = opentracing.TextMapCarrier{}
	Inject(sent, carrier, WithSingleAndMultiHeader())
	have, err = Extract(carrier)
	require.NoError(t, err)
	assert.True(t, sent.Equal(*have), "want %+v, have %+v", sent, *have)
}

func TestZeroParentOmitted(t *testing.T) {
	sc := model.NewSpanContextWithOptions(
		model.WithTraceID(model.TraceIDFromUint64(1)),
		model.WithSpanID(2),
		model.WithParentSpanID(0),
	)
	if want, have := "0000000000000001-2-1", BuildSingleHeader(sc); want != have {
		t.Errorf("want %q, have %q", want, have)
	}

	for _, opt := range []InjectOption{WithSingleHeaderOnly(), WithSingleAndMultiHeader()} {
		carrier := opentracing.TextMapCarrier{}
		Inject(sc, carrier, opt)
		_, ok := carrier[ParentSpanID]
		assert.False(t, ok)

		have, err := Extract(carrier)
		require.NoError(t, err)
		require.NotNil(t, have)
		assert.Nil(t, have.ParentSpanID)
	}
}

func TestSingleHeaderOnlyOmitsMulti(t *testing.T) {
	carrier := opentracing.TextMapCarrier{}
	Inject(testContext(), carrier, WithSingleHeaderOnly())
	_, ok := carrier[TraceID]
	assert.False(t, ok)
}

func TestParseSingleHeader(t *testing.T) {
	sc, err := ParseSingleHeader("80f198ee56343ba864fe8b2a57d3eff7-e457b5a2e4d86bd1-1-05e3ac9a4f6e3b90")
	require.NoError(t, err)
	assert.Equal(t, "80f198ee56343ba864fe8b2a57d3eff7", sc.TraceID.String())
	assert.Equal(t, uint64(0xe457b5a2e4d86bd1), sc.SpanID)
	require.NotNil(t, sc.ParentSpanID)
	assert.Equal(t, uint64(0x05e3ac9a4f6e3b90), *sc.ParentSpanID)
	assert.True(t, sc.Sampled)
	assert.False(t, sc.Debug)

	sc, err = ParseSingleHeader("0")
	assert.NoError(t, err)
	assert.Nil(t, sc)

	for _, tc := range []struct {
		in   string
		want error
	}{
		{"", ErrInvalidSingleHeader},
		{"a-b-c-d-e", ErrInvalidSingleHeader},
		{"x", ErrInvalidSampledHeader},
		{"zz-1", ErrInvalidTraceIDHeader},
		{"0000000000000001-", ErrInvalidSpanIDHeader},
		{"0000000000000001-1-2", ErrInvalidSampledHeader},
		{"0000000000000001-1-1-0", ErrInvalidParentSpanIDHeader},
	} {
		_, err := ParseSingleHeader(tc.in)
		if want, have := tc.want, err; want != have {
			t.Errorf("%q: want %v, have %v", tc.in, want, have)
		}
	}
}
