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

import "log/slog"

// Option configures a Handler during initialization via the New function.
// Options are applied sequentially, allowing later options to override
// earlier ones.
type Option func(*options)

// options holds the configurable settings for the Handler.
// Fields are pointers so an explicitly set zero value is distinguishable
// from an unset option falling back to its default.
type options struct {
	level              *slog.Level
	addSource          *bool
	name               *string
	batchPrefix        *string
	retentionDays      *int
	shardCount         *int
	projectDescription *string
	diagLogger         *slog.Logger
}

// applyOptions folds the supplied options into a fresh options struct.
func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLevel returns an Option that sets the minimum level the handler
// ships. Records below it are skipped before any payload work. Defaults
// to slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		lvl := level
		o.level = &lvl
	}
}

// WithSourceLocationEnabled returns an Option that enables or disables
// shipping source provenance (function, file, line) with each record.
// Resolving the call site costs a frame lookup per record. Defaults to
// true.
func WithSourceLocationEnabled(enabled bool) Option {
	return func(o *options) {
		src := enabled
		o.addSource = &src
	}
}

// WithName returns an Option that sets the logger name shipped in each
// record's content. Empty (the default) omits the field.
func WithName(name string) Option {
	return func(o *options) {
		n := name
		o.name = &n
	}
}

// WithBatchPrefix returns an Option that fixes the batch identifier
// prefix instead of deriving one from host identity, pid, clock, and
// random entropy. The prefix is upper-cased. Intended for tests that need
// deterministic identifiers.
func WithBatchPrefix(prefix string) Option {
	return func(o *options) {
		p := prefix
		o.batchPrefix = &p
	}
}

// WithRetentionDays returns an Option that sets the data retention, in
// days, applied if provisioning has to create the logstore. Defaults to
// 30. Has no effect on an existing logstore.
func WithRetentionDays(days int) Option {
	return func(o *options) {
		d := days
		o.retentionDays = &d
	}
}

// WithShardCount returns an Option that sets the shard count applied if
// provisioning has to create the logstore. Defaults to 2. Has no effect
// on an existing logstore.
func WithShardCount(count int) Option {
	return func(o *options) {
		c := count
		o.shardCount = &c
	}
}

// WithProjectDescription returns an Option that sets the description
// applied if provisioning has to create the project.
func WithProjectDescription(description string) Option {
	return func(o *options) {
		d := description
		o.projectDescription = &d
	}
}

// WithDiagnosticLogger returns an Option that sets the logger receiving
// the handler's own diagnostics: provisioning progress and delivery
// failures. The diagnostics logger must not itself ship to the same
// remote handler. Nil (the default) silences diagnostics.
func WithDiagnosticLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.diagLogger = logger
	}
}
