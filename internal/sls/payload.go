// Copyright 2026 The slogsls Authors
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

package sls

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/gogo/protobuf/proto"
)

// Keys of the fixed structural content fields shipped with every record.
// Extra fields supplied by the caller ride alongside these and are also
// folded into one JSON blob under extraKey for dual-mode querying.
const (
	messageKey      = "message"
	levelKey        = "level"
	loggerKey       = "logger"
	functionKey     = "function"
	fileKey         = "file"
	lineKey         = "line"
	pidKey          = "pid"
	processKey      = "process"
	serviceKey      = "service"
	errorKey        = "error"
	stackTraceKey   = "stack_trace"
	traceIDKey      = "trace_id"
	spanIDKey       = "span_id"
	traceSampledKey = "trace_sampled"
	extraKey        = "extra"
)

// Field is one caller-supplied extra attribute. Order is preserved from
// the originating record.
type Field struct {
	Key   string
	Value any
}

// Record is the well-typed form of one log record handed to the shipper.
// The public handler populates it from an slog.Record; upstream layers
// never reach this type directly.
type Record struct {
	Message string
	Level   string
	Logger  string
	Time    time.Time

	// Source provenance. Zero values are omitted from the wire content.
	Function string
	File     string
	Line     int

	// Service is the configured service name, duplicated into the
	// content pairs and the extra blob when present.
	Service string

	// Trace correlation, populated when the emitting context carries a
	// valid span. TraceSampled is meaningful only when TraceID is set.
	TraceID      string
	SpanID       string
	TraceSampled bool

	// Err is the first error attribute found on the record, if any.
	Err error
	// Stack is a formatted stack trace accompanying Err, if captured.
	Stack string

	Extra []Field
}

// buildContents flattens a Record into the ordered string key/value pairs
// of the wire representation. Every value is coerced to a string; a field
// that cannot be serialized degrades to its debug representation instead
// of failing the record.
func buildContents(rec *Record) []*aliyun.LogContent {
	contents := make([]*aliyun.LogContent, 0, len(rec.Extra)+12)
	add := func(key, value string) {
		contents = append(contents, &aliyun.LogContent{
			Key:   proto.String(key),
			Value: proto.String(value),
		})
	}

	add(messageKey, rec.Message)
	add(levelKey, rec.Level)
	if rec.Logger != "" {
		add(loggerKey, rec.Logger)
	}
	if rec.Function != "" {
		add(functionKey, rec.Function)
	}
	if rec.File != "" {
		add(fileKey, rec.File)
		add(lineKey, strconv.Itoa(rec.Line))
	}
	add(pidKey, strconv.Itoa(os.Getpid()))
	add(processKey, processName())
	if rec.Service != "" {
		add(serviceKey, rec.Service)
	}
	if rec.TraceID != "" {
		add(traceIDKey, rec.TraceID)
		add(spanIDKey, rec.SpanID)
		add(traceSampledKey, strconv.FormatBool(rec.TraceSampled))
	}
	if rec.Err != nil {
		add(errorKey, rec.Err.Error())
	}
	if rec.Stack != "" {
		add(stackTraceKey, rec.Stack)
	}

	for _, f := range rec.Extra {
		add(f.Key, stringifyValue(f.Value))
	}
	if blob := buildExtraBlob(rec); blob != "" {
		add(extraKey, blob)
	}

	return contents
}

// buildExtraBlob re-serializes the merged extra attributes, plus the
// service name when present, as a single JSON object. It returns "" when
// there is nothing to merge.
func buildExtraBlob(rec *Record) string {
	if len(rec.Extra) == 0 && rec.Service == "" {
		return ""
	}
	merged := make(map[string]any, len(rec.Extra)+1)
	for _, f := range rec.Extra {
		merged[f.Key] = jsonSafe(f.Value)
	}
	if rec.Service != "" {
		merged[serviceKey] = rec.Service
	}
	b, err := json.Marshal(merged)
	if err != nil {
		// Individual values were already vetted by jsonSafe; this is a
		// belt for exotic map failures.
		return fmt.Sprintf("%+v", merged)
	}
	return string(b)
}

// stringifyValue coerces one extra value to its wire string using three
// tiers: primitives directly, structured values as JSON, and anything
// unserializable as a best-effort debug representation.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

// jsonSafe returns v if it can be marshalled as JSON, otherwise its debug
// representation, so one opaque value never sinks the whole extra blob.
func jsonSafe(v any) any {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return v
}

// resolveTimestamp splits the record's capture time into whole seconds
// and the nanosecond remainder. A zero capture time falls back to a live
// clock read through now. The remainder is always in [0, 1e9).
func resolveTimestamp(t time.Time, now func() time.Time) (sec uint32, nsRemainder uint32) {
	if t.IsZero() {
		if now == nil {
			now = time.Now
		}
		t = now()
	}
	return uint32(t.Unix()), uint32(t.Nanosecond())
}

// processName reports the short name of the running binary.
func processName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return "unknown"
	}
	return filepath.Base(os.Args[0])
}
