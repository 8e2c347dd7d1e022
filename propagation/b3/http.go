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

// Package b3 implements B3 propagation of Zipkin span contexts over
// opentracing text map carriers.
// See https://github.com/openzipkin/b3-propagation
package b3

import (
	"errors"
	"strconv"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

// Header keys as written by Inject.
const (
	TraceID       = "X-B3-TraceId"
	SpanID        = "X-B3-SpanId"
	ParentSpanID  = "X-B3-ParentSpanId"
	Sampled       = "X-B3-Sampled"
	Flags         = "X-B3-Flags"
	Context       = "b3"
	BaggagePrefix = "OT-Baggage-"
)

const (
	traceIDHeader      = "x-b3-traceid"
	spanIDHeader       = "x-b3-spanid"
	parentSpanIDHeader = "x-b3-parentspanid"
	sampledHeader      = "x-b3-sampled"
	flagsHeader        = "x-b3-flags"
	baggagePrefix      = "ot-baggage-"
)

// Extraction errors.
var (
	ErrInvalidTraceIDHeader      = errors.New("invalid B3 TraceID header found")
	ErrInvalidSpanIDHeader       = errors.New("invalid B3 SpanID header found")
	ErrInvalidParentSpanIDHeader = errors.New("invalid B3 ParentSpanID header found")
	ErrInvalidSampledHeader      = errors.New("invalid B3 Sampled header found")
	ErrInvalidSingleHeader       = errors.New("invalid B3 Single header found")
	ErrMissingSpanIDHeader       = errors.New("missing B3 SpanID header")
)

// KeyFolder is implemented by carriers that do not preserve the case of keys,
// such as gRPC metadata. Baggage keys read from a folding carrier are
// lowercased so that Inject and Extract agree on them.
type KeyFolder interface {
	FoldsKeys() bool
}

type injectOptions struct {
	multi  bool
	single bool
}

// InjectOption selects the B3 header style written by Inject.
type InjectOption func(opts *injectOptions)

// WithSingleHeaderOnly writes only the single "b3" header. Debug contexts are
// then always extracted as sampled.
func WithSingleHeaderOnly() InjectOption {
	return func(opts *injectOptions) {
		opts.multi = false
		opts.single = true
	}
}

// WithSingleAndMultiHeader writes both the single and the multi header style.
func WithSingleAndMultiHeader() InjectOption {
	return func(opts *injectOptions) {
		opts.multi = true
		opts.single = true
	}
}

// InjectHTTP writes sc to an opentracing.TextMapWriter carrier.
func InjectHTTP(sc model.SpanContext, carrier interface{}, opts ...InjectOption) error {
	c, ok := carrier.(opentracing.TextMapWriter)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}
	Inject(sc, c, opts...)
	return nil
}

// Inject writes sc as B3 headers. Span ids are lowercase hex without padding,
// X-B3-Sampled is always written and X-B3-Flags only for debug contexts.
// Baggage items are written as OT-Baggage-{key}.
func Inject(sc model.SpanContext, c opentracing.TextMapWriter, opts ...InjectOption) {
	o := injectOptions{multi: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.multi {
		c.Set(TraceID, sc.TraceID.String())
		c.Set(SpanID, formatID(sc.SpanID))
		if sc.ParentSpanID != nil && *sc.ParentSpanID != 0 {
			c.Set(ParentSpanID, formatID(*sc.ParentSpanID))
		}
		if sc.Sampled {
			c.Set(Sampled, "1")
		} else {
			c.Set(Sampled, "0")
		}
		if sc.Debug {
			c.Set(Flags, "1")
		}
	}
	if o.single {
		c.Set(Context, BuildSingleHeader(sc))
	}

	for k, v := range sc.Baggage {
		c.Set(BaggagePrefix+k, v)
	}
}

// ExtractHTTP reads a span context from an opentracing.TextMapReader carrier.
func ExtractHTTP(carrier interface{}) (*model.SpanContext, error) {
	c, ok := carrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}
	return Extract(c)
}

// Extract reads B3 headers from c. Key matching is case insensitive. When
// neither X-B3-TraceId nor b3 is present Extract returns (nil, nil). The
// multi header style takes precedence over the single header.
func Extract(c opentracing.TextMapReader) (*model.SpanContext, error) {
	var (
		traceID      string
		spanID       string
		parentSpanID string
		sampled      string
		flags        string
		single       string
		hasTraceID   bool
		hasSpanID    bool
		hasParent    bool
		hasSampled   bool
		hasSingle    bool
		baggage      map[string]string
	)

	fold := false
	if f, ok := c.(KeyFolder); ok {
		fold = f.FoldsKeys()
	}
	if _, ok := c.(opentracing.HTTPHeadersCarrier); ok {
		fold = true
	}

	err := c.ForeachKey(func(key, val string) error {
		lower := strings.ToLower(key)
		switch lower {
		case traceIDHeader:
			traceID, hasTraceID = val, true
		case spanIDHeader:
			spanID, hasSpanID = val, true
		case parentSpanIDHeader:
			parentSpanID, hasParent = val, true
		case sampledHeader:
			sampled, hasSampled = val, true
		case flagsHeader:
			flags = val
		case Context:
			single, hasSingle = val, true
		default:
			if strings.HasPrefix(lower, baggagePrefix) {
				k := key[len(baggagePrefix):]
				if fold {
					k = strings.ToLower(k)
				}
				if baggage == nil {
					baggage = map[string]string{}
				}
				baggage[k] = val
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sc *model.SpanContext
	switch {
	case hasTraceID:
		if !hasSpanID {
			return nil, ErrMissingSpanIDHeader
		}
		sc, err = parseHeaders(traceID, spanID, parentSpanID, hasParent, sampled, hasSampled, flags)
	case hasSingle:
		sc, err = ParseSingleHeader(single)
	default:
		return nil, nil
	}
	if err != nil || sc == nil {
		return nil, err
	}
	sc.Baggage = baggage
	return sc, nil
}

func parseHeaders(traceID, spanID, parentSpanID string, hasParent bool, sampled string, hasSampled bool, flags string) (*model.SpanContext, error) {
	sc := &model.SpanContext{Sampled: true}

	var err error
	if sc.TraceID, err = model.ParseTraceID(traceID); err != nil {
		return nil, ErrInvalidTraceIDHeader
	}
	if sc.SpanID, err = parseID(spanID); err != nil || sc.SpanID == 0 {
		return nil, ErrInvalidSpanIDHeader
	}
	if hasParent {
		parent, err := parseID(parentSpanID)
		if err != nil {
			return nil, ErrInvalidParentSpanIDHeader
		}
		// a zero parent is how some clients spell "root span"
		if parent != 0 {
			sc.ParentSpanID = &parent
		}
	}
	if hasSampled {
		switch strings.ToLower(sampled) {
		case "1", "true":
			sc.Sampled = true
		case "0", "false":
			sc.Sampled = false
		default:
			return nil, ErrInvalidSampledHeader
		}
	}
	sc.Debug = flags == "1"
	return sc, nil
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 16)
}

func parseID(s string) (uint64, error) {
	if len(s) == 0 || len(s) > 16 {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(s, 16, 64)
}
