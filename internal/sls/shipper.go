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
	"log/slog"
	"os"
	"sync"
	"time"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/gogo/protobuf/proto"
)

// BatchTagKey is the fixed request-level tag key carrying the batch
// identifier on every transmitted log group.
const BatchTagKey = "batch_id"

// Shipper is the transmission half of the hot path: it converts one
// Record into a single-item log group, attaches a fresh batch identifier
// tag, and sends it through the shared client handle. Sends are
// serialized by a dedicated lock because one client connection is shared
// by all emitting goroutines. Ship never returns an error and never
// panics; failures are reported through the diagnostics logger only.
type Shipper struct {
	cfg    Config
	client ClientAPI
	gen    *BatchIDGenerator
	diag   *slog.Logger
	source string

	// now is a clock seam for tests.
	now func() time.Time

	sendMu sync.Mutex
}

// NewShipper returns a shipper over the given client handle. A nil client
// turns every Ship into a silent no-op (fail-open). diag may be nil.
func NewShipper(client ClientAPI, cfg Config, gen *BatchIDGenerator, diag *slog.Logger) *Shipper {
	if gen == nil {
		gen = NewBatchIDGenerator("")
	}
	source, err := os.Hostname()
	if err != nil {
		source = ""
	}
	return &Shipper{
		cfg:    cfg,
		client: client,
		gen:    gen,
		diag:   diag,
		source: source,
		now:    time.Now,
	}
}

// Ship delivers one record. With no live client handle the record is
// dropped from remote delivery immediately; local sinks are unaffected.
func (s *Shipper) Ship(rec *Record) {
	if s.client == nil {
		return
	}

	sec, ns := resolveTimestamp(rec.Time, s.now)
	item := &aliyun.Log{
		Time:     proto.Uint32(sec),
		TimeNs:   proto.Uint32(ns),
		Contents: buildContents(rec),
	}

	group := &aliyun.LogGroup{
		Logs: []*aliyun.Log{item},
		LogTags: []*aliyun.LogTag{{
			Key:   proto.String(BatchTagKey),
			Value: proto.String(s.gen.Next()),
		}},
	}
	if s.cfg.ServiceName != "" {
		group.Topic = proto.String(s.cfg.ServiceName)
	}
	if s.source != "" {
		group.Source = proto.String(s.source)
	}

	s.sendMu.Lock()
	err := s.client.PutLogs(s.cfg.Project, s.cfg.Logstore, group)
	s.sendMu.Unlock()
	if err == nil {
		return
	}

	if se, ok := serviceError(err); ok {
		logDiagnostic(s.diag, slog.LevelWarn, "log service rejected entry",
			slog.String("project", s.cfg.Project),
			slog.String("logstore", s.cfg.Logstore),
			slog.String("code", se.Code),
			slog.Any("error", err),
		)
		return
	}
	logDiagnostic(s.diag, slog.LevelWarn, "failed to ship log entry",
		slog.String("project", s.cfg.Project),
		slog.String("logstore", s.cfg.Logstore),
		slog.Any("error", err),
	)
}
