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
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/yuhengz/slogsls/internal/sls"
)

// BatchTagKey is the fixed request-level tag key under which the batch
// identifier travels with every transmitted log group.
const BatchTagKey = sls.BatchTagKey

// ErrInvalidConfig indicates that the supplied Config is missing one or
// more required coordinates. Detected before any network call.
var ErrInvalidConfig = errors.New("slogsls: invalid configuration")

// ErrRemoteUnavailable indicates that remote log delivery could not be
// established: the service client could not be constructed or
// provisioning the project/logstore failed. Callers should treat it as
// "remote logging disabled for this run", not as a fatal error.
var ErrRemoteUnavailable = errors.New("slogsls: remote log delivery unavailable")

// groupedAttr holds an attribute along with the group path it was added
// under.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

// Handler is an slog.Handler that ships each record to the configured
// SLS project/logstore as one single-item PutLogs request. It is safe
// for concurrent use: transmission through the shared client handle is
// serialized by the shipper's send lock, and batch identifier generation
// is serialized independently.
//
// Handle never returns an error for remote failures and never panics;
// delivery problems surface only through the diagnostics logger. See the
// package documentation for the delivery contract.
type Handler struct {
	cfg       Config
	leveler   slog.Leveler
	addSource bool
	name      string

	mgr     *sls.ClientManager
	shipper *sls.Shipper
	diag    *slog.Logger

	mu           sync.Mutex
	groupedAttrs []groupedAttr
	groups       []string

	closeOnce sync.Once
}

// New returns a Handler bound to cfg, or an error when remote delivery
// cannot be established.
//
// Construction performs the one-time side effects in order: the config is
// validated (ErrInvalidConfig), the service client is lazily constructed
// (ErrRemoteUnavailable), and the project and logstore are provisioned if
// absent (ErrRemoteUnavailable). A returned Handler is fully operational;
// there is no half-initialized state.
func New(cfg Config, opts ...Option) (*Handler, error) {
	o := applyOptions(opts)

	if !cfg.IsValid() {
		return nil, fmt.Errorf("%w: endpoint, access key id, access key secret, project, and logstore are required", ErrInvalidConfig)
	}

	icfg := sls.Config{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
		Project:         cfg.Project,
		Logstore:        cfg.Logstore,
		ServiceName:     cfg.ServiceName,
	}
	if o.retentionDays != nil {
		icfg.RetentionDays = *o.retentionDays
	}
	if o.shardCount != nil {
		icfg.ShardCount = *o.shardCount
	}
	if o.projectDescription != nil {
		icfg.ProjectDescription = *o.projectDescription
	}

	mgr := sls.NewClientManager(icfg, UserAgent, o.diagLogger)
	if err := mgr.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	client, err := mgr.Client()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	prov := sls.NewProvisioner(client, icfg, o.diagLogger)
	if err := prov.EnsureResources(); err != nil {
		_ = mgr.Close()
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	var prefix string
	if o.batchPrefix != nil {
		prefix = *o.batchPrefix
	}
	gen := sls.NewBatchIDGenerator(prefix)

	h := &Handler{
		cfg:       cfg,
		leveler:   slog.LevelInfo,
		addSource: true,
		mgr:       mgr,
		shipper:   sls.NewShipper(client, icfg, gen, o.diagLogger),
		diag:      o.diagLogger,
	}
	if o.level != nil {
		h.leveler = *o.level
	}
	if o.addSource != nil {
		h.addSource = *o.addSource
	}
	if o.name != nil {
		h.name = *o.name
	}
	return h, nil
}

// Enabled reports whether records at the given level are shipped.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.leveler != nil {
		min = h.leveler.Level()
	}
	return level >= min
}

// Handle converts the record into its wire representation and attempts
// delivery. It returns nil in every case: a record that cannot be
// delivered is dropped from remote delivery after a local diagnostic,
// and the emitting application is never interrupted.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Enabled(ctx, r.Level) {
		return nil
	}
	rec := h.buildRecord(ctx, r)
	h.shipper.Ship(rec)
	return nil
}

// buildRecord extracts the well-typed record the shipper consumes:
// message, level, capture time, source provenance, trace correlation,
// the first error attribute, and the ordered caller extras.
func (h *Handler) buildRecord(ctx context.Context, r slog.Record) *sls.Record {
	h.mu.Lock()
	baseAttrs := append([]groupedAttr(nil), h.groupedAttrs...)
	baseGroups := append([]string(nil), h.groups...)
	h.mu.Unlock()

	rec := &sls.Record{
		Message: r.Message,
		Level:   r.Level.String(),
		Logger:  h.name,
		Time:    r.Time,
		Service: h.cfg.ServiceName,
	}

	if h.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.Function != "" {
			rec.Function = frame.Function
			rec.File = frame.File
			rec.Line = frame.Line
		}
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.TraceID = sc.TraceID().String()
		rec.SpanID = sc.SpanID().String()
		rec.TraceSampled = sc.IsSampled()
	}

	var collect func(groups []string, a slog.Attr)
	collect = func(groups []string, a slog.Attr) {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			children := v.Group()
			if len(children) == 0 {
				return
			}
			path := groups
			if a.Key != "" {
				path = append(append([]string(nil), groups...), a.Key)
			}
			for _, child := range children {
				collect(path, child)
			}
			return
		}
		if a.Key == "" {
			return
		}
		val := resolveAttrValue(v)
		if errVal, ok := val.(error); ok && rec.Err == nil {
			// The first error attribute becomes the record's error field
			// rather than an opaque extra.
			rec.Err = errVal
			return
		}
		rec.Extra = append(rec.Extra, sls.Field{Key: joinGroups(groups, a.Key), Value: val})
	}

	for _, ga := range baseAttrs {
		collect(ga.groups, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(baseGroups, a)
		return true
	})

	return rec
}

// WithAttrs returns a new handler that includes attrs in every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h2 := h.cloneLocked()
	copyGroups := append([]string(nil), h2.groups...)
	for _, a := range attrs {
		if a.Key == "" && a.Value.Any() == nil {
			continue
		}
		h2.groupedAttrs = append(h2.groupedAttrs, groupedAttr{groups: copyGroups, attr: a})
	}
	return h2
}

// WithGroup returns a new handler nesting subsequent attributes under
// name. Group paths render as dotted key prefixes in the flat wire
// content.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h2 := h.cloneLocked()
	h2.groups = append(h2.groups, name)
	return h2
}

// cloneLocked duplicates handler state; caller must hold h.mu. Clones
// share the client manager, shipper, and identifier generator.
func (h *Handler) cloneLocked() *Handler {
	return &Handler{
		cfg:          h.cfg,
		leveler:      h.leveler,
		addSource:    h.addSource,
		name:         h.name,
		mgr:          h.mgr,
		shipper:      h.shipper,
		diag:         h.diag,
		groupedAttrs: append([]groupedAttr(nil), h.groupedAttrs...),
		groups:       append([]string(nil), h.groups...),
	}
}

// Close releases the service client. It is idempotent. Derived handlers
// (from WithAttrs/WithGroup) share the client; closing any of them closes
// all.
func (h *Handler) Close() error {
	var err error
	h.closeOnce.Do(func() {
		if h.mgr != nil {
			err = h.mgr.Close()
		}
	})
	return err
}

// resolveAttrValue converts a resolved slog.Value into the Go value the
// payload serializer consumes. Times and durations become strings here so
// their wire form is stable; everything else keeps its underlying type
// for tiered serialization.
func resolveAttrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindUint64:
		return v.Uint64()
	default:
		return v.Any()
	}
}

// joinGroups renders a group path plus key as a dotted flat key.
func joinGroups(groups []string, key string) string {
	if len(groups) == 0 {
		return key
	}
	out := ""
	for _, g := range groups {
		if g == "" {
			continue
		}
		out += g + "."
	}
	return out + key
}

// Ensure Handler implements slog.Handler.
var _ slog.Handler = (*Handler)(nil)
