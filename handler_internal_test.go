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

package slogsls

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace"

	"github.com/yuhengz/slogsls/internal/sls"
)

// captureClient implements sls.ClientAPI and records transmitted groups.
type captureClient struct {
	mu        sync.Mutex
	groups    []*aliyun.LogGroup
	putLogsFn func(project, logstore string, lg *aliyun.LogGroup) error
}

func (c *captureClient) GetProject(name string) (*aliyun.LogProject, error) {
	return &aliyun.LogProject{Name: name}, nil
}

func (c *captureClient) CreateProject(name, description string) (*aliyun.LogProject, error) {
	return &aliyun.LogProject{Name: name, Description: description}, nil
}

func (c *captureClient) GetLogStore(project, logstore string) (*aliyun.LogStore, error) {
	return &aliyun.LogStore{Name: logstore}, nil
}

func (c *captureClient) CreateLogStore(project, logstore string, ttl, shardCnt int, autoSplit bool, maxSplitShard int) error {
	return nil
}

func (c *captureClient) PutLogs(project, logstore string, lg *aliyun.LogGroup) error {
	c.mu.Lock()
	c.groups = append(c.groups, lg)
	c.mu.Unlock()
	if c.putLogsFn != nil {
		return c.putLogsFn(project, logstore, lg)
	}
	return nil
}

func (c *captureClient) Close() error { return nil }

var _ sls.ClientAPI = (*captureClient)(nil)

// newCaptureHandler builds a Handler wired to client without touching the
// network, mirroring what New produces after successful provisioning.
func newCaptureHandler(client sls.ClientAPI) *Handler {
	cfg := validConfig()
	icfg := sls.Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
		Project:         cfg.Project,
		Logstore:        cfg.Logstore,
		ServiceName:     cfg.ServiceName,
	}
	return &Handler{
		cfg:       cfg,
		leveler:   slog.LevelInfo,
		addSource: true,
		shipper:   sls.NewShipper(client, icfg, sls.NewBatchIDGenerator("test"), nil),
	}
}

// contentMap flattens a transmitted group's single log into a key/value map.
func contentMap(t *testing.T, group *aliyun.LogGroup) map[string]string {
	t.Helper()
	if len(group.Logs) != 1 {
		t.Fatalf("group carries %d logs, want 1", len(group.Logs))
	}
	out := make(map[string]string, len(group.Logs[0].Contents))
	for _, c := range group.Logs[0].Contents {
		out[c.GetKey()] = c.GetValue()
	}
	return out
}

func TestNewInvalidConfig(t *testing.T) {
	h, err := New(Config{Project: "only-project"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
	}
	if h != nil {
		t.Error("New() returned a handler alongside an error")
	}
}

func TestHandlerEnabled(t *testing.T) {
	h := newCaptureHandler(&captureClient{})
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelDebug) {
		t.Error("Enabled(debug) = true with default info threshold")
	}
	if !h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled(info) = false with default info threshold")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("Enabled(error) = false")
	}
}

func TestHandleShipsRecord(t *testing.T) {
	cc := &captureClient{}
	h := newCaptureHandler(cc)

	r := slog.NewRecord(time.Unix(1700000000, 0), slog.LevelWarn, "disk almost full", 0)
	r.AddAttrs(slog.String("mount", "/var"), slog.Int("free_mb", 512))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(cc.groups) != 1 {
		t.Fatalf("transmitted %d groups, want 1", len(cc.groups))
	}

	got := contentMap(t, cc.groups[0])
	for key, want := range map[string]string{
		"message": "disk almost full",
		"level":   "WARN",
		"service": "checkout",
		"mount":   "/var",
		"free_mb": "512",
	} {
		if got[key] != want {
			t.Errorf("content %q = %q, want %q", key, got[key], want)
		}
	}
	if cc.groups[0].LogTags[0].GetValue() != "TEST-1" {
		t.Errorf("batch tag = %q, want %q", cc.groups[0].LogTags[0].GetValue(), "TEST-1")
	}
}

func TestHandleBelowLevelSkipped(t *testing.T) {
	cc := &captureClient{}
	h := newCaptureHandler(cc)

	r := slog.NewRecord(time.Now(), slog.LevelDebug, "noisy", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(cc.groups) != 0 {
		t.Errorf("transmitted %d groups for a below-threshold record, want 0", len(cc.groups))
	}
}

func TestHandleFailOpenOnRemoteError(t *testing.T) {
	cc := &captureClient{
		putLogsFn: func(string, string, *aliyun.LogGroup) error {
			return &aliyun.Error{Code: "InternalServerError", Message: "boom"}
		},
	}
	h := newCaptureHandler(cc)

	r := slog.NewRecord(time.Now(), slog.LevelError, "payment failed", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v on remote failure, want nil", err)
	}
}

func TestHandleFailOpenWithoutClient(t *testing.T) {
	h := newCaptureHandler(nil)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v without a client, want nil", err)
	}
}

func TestHandlerAttrAndGroupFlattening(t *testing.T) {
	cc := &captureClient{}
	var h slog.Handler = newCaptureHandler(cc)

	h = h.WithAttrs([]slog.Attr{slog.String("env", "prod")})
	h = h.WithGroup("req")
	h = h.WithAttrs([]slog.Attr{slog.String("method", "GET")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	r.AddAttrs(
		slog.Int("status", 200),
		slog.Group("peer", slog.String("addr", "10.0.0.1")),
	)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	got := contentMap(t, cc.groups[0])
	want := map[string]string{
		"env":           "prod",
		"req.method":    "GET",
		"req.status":    "200",
		"req.peer.addr": "10.0.0.1",
	}
	for key := range got {
		if _, keep := want[key]; !keep {
			delete(got, key)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flattened attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerDerivedStateIsolated(t *testing.T) {
	cc := &captureClient{}
	base := newCaptureHandler(cc)

	derived := base.WithAttrs([]slog.Attr{slog.String("env", "prod")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	if err := base.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if _, ok := contentMap(t, cc.groups[0])["env"]; ok {
		t.Error("attribute added to derived handler leaked into the base handler")
	}
	if derived == slog.Handler(base) {
		t.Error("WithAttrs returned the receiver")
	}
}

func TestHandlerErrorAttrPromoted(t *testing.T) {
	cc := &captureClient{}
	h := newCaptureHandler(cc)

	r := slog.NewRecord(time.Now(), slog.LevelError, "m", 0)
	r.AddAttrs(slog.Any("cause", errors.New("kaboom")))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	got := contentMap(t, cc.groups[0])
	if got["error"] != "kaboom" {
		t.Errorf("error content = %q, want %q", got["error"], "kaboom")
	}
	if _, ok := got["cause"]; ok {
		t.Error("error attribute also shipped as a plain extra")
	}
}

func TestHandlerTraceCorrelation(t *testing.T) {
	cc := &captureClient{}
	h := newCaptureHandler(cc)

	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	if err := h.Handle(ctx, r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	got := contentMap(t, cc.groups[0])
	if got["trace_id"] != traceID.String() {
		t.Errorf("trace_id = %q, want %q", got["trace_id"], traceID.String())
	}
	if got["span_id"] != spanID.String() {
		t.Errorf("span_id = %q, want %q", got["span_id"], spanID.String())
	}
	if got["trace_sampled"] != "true" {
		t.Errorf("trace_sampled = %q, want %q", got["trace_sampled"], "true")
	}
}

func TestHandlerSourceLocation(t *testing.T) {
	cc := &captureClient{}
	h := newCaptureHandler(cc)

	var pcs [1]uintptr
	runtime.Callers(1, pcs[:])
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", pcs[0])
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	got := contentMap(t, cc.groups[0])
	if !strings.Contains(got["function"], "TestHandlerSourceLocation") {
		t.Errorf("function = %q, want the emitting test function", got["function"])
	}
	if !strings.HasSuffix(got["file"], "handler_internal_test.go") {
		t.Errorf("file = %q, want this test file", got["file"])
	}

	// With source resolution disabled the provenance fields are omitted.
	cc2 := &captureClient{}
	h2 := newCaptureHandler(cc2)
	h2.addSource = false
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() = %v", err)
	}
	if _, ok := contentMap(t, cc2.groups[0])["function"]; ok {
		t.Error("source fields shipped with source resolution disabled")
	}
}

func TestHandlerCloseIdempotent(t *testing.T) {
	h := newCaptureHandler(&captureClient{})
	if err := h.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close() = %v, want nil", err)
	}
}
