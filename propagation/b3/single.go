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
	"strings"

	"github.com/openzipkin-contrib/zipkintracer-thrift/model"
)

// ParseSingleHeader parses the single header form
// {traceid}-{spanid}[-{sampling}[-{parentspanid}]] where sampling is 1, 0 or
// d (debug). A header holding only a sampling state carries no context and
// yields (nil, nil).
func ParseSingleHeader(contextHeader string) (*model.SpanContext, error) {
	if contextHeader == "" {
		return nil, ErrInvalidSingleHeader
	}
	parts := strings.Split(contextHeader, "-")
	if len(parts) == 1 {
		if _, _, err := parseSampling(parts[0]); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if len(parts) > 4 {
		return nil, ErrInvalidSingleHeader
	}

	sc := &model.SpanContext{Sampled: true}

	var err error
	if sc.TraceID, err = model.ParseTraceID(parts[0]); err != nil {
		return nil, ErrInvalidTraceIDHeader
	}
	if sc.SpanID, err = parseID(parts[1]); err != nil || sc.SpanID == 0 {
		return nil, ErrInvalidSpanIDHeader
	}
	if len(parts) > 2 {
		if sc.Sampled, sc.Debug, err = parseSampling(parts[2]); err != nil {
			return nil, err
		}
	}
	if len(parts) > 3 {
		parent, err := parseID(parts[3])
		if err != nil || parent == 0 {
			return nil, ErrInvalidParentSpanIDHeader
		}
		sc.ParentSpanID = &parent
	}
	return sc, nil
}

// BuildSingleHeader returns the single header form of sc. The sampling field
// has no spelling for an unsampled debug context: debug implies sampled, so
// such a context is written as "d" and parses back as sampled. A zero parent
// span id is omitted.
func BuildSingleHeader(sc model.SpanContext) string {
	var b strings.Builder
	b.WriteString(sc.TraceID.String())
	b.WriteByte('-')
	b.WriteString(formatID(sc.SpanID))
	b.WriteByte('-')
	switch {
	case sc.Debug:
		b.WriteByte('d')
	case sc.Sampled:
		b.WriteByte('1')
	default:
		b.WriteByte('0')
	}
	if sc.ParentSpanID != nil && *sc.ParentSpanID != 0 {
		b.WriteByte('-')
		b.WriteString(formatID(*sc.ParentSpanID))
	}
	return b.String()
}

func parseSampling(s string) (sampled, debug bool, err error) {
	switch s {
	case "1":
		return true, false, nil
	case "0":
		return false, false, nil
	case "d":
		return true, true, nil
	}
	return false, false, ErrInvalidSampledHeader
}
