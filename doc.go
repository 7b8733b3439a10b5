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

// Package slogsls ships structured [log/slog] records to Alibaba Cloud
// Simple Log Service (SLS) without ever disrupting the emitting
// application.
//
// The primary entry point is [New], which returns an [slog.Handler] bound
// to one project/logstore pair. Construction validates the configuration,
// provisions the project and logstore if they do not exist yet (tolerating
// races with concurrent creators), and lazily builds the service client.
// It either yields a fully operational handler or an error the caller
// should treat as "remote logging disabled"; there is no half-initialized
// handler:
//
//	cfg := slogsls.ConfigFromEnv()
//	handler, err := slogsls.New(cfg)
//	if err != nil {
//	    // Remote delivery is unavailable; keep logging locally.
//	    slog.Warn("remote logging disabled", "error", err)
//	} else {
//	    defer handler.Close()
//	    slog.SetDefault(slog.New(handler))
//	}
//
// Every record becomes one PutLogs request carrying a single log item:
// flattened string key/value content pairs (message, level, provenance,
// caller extras, and an `extra` JSON blob of the merged extras), a
// second-resolution timestamp with a nanosecond remainder, and one
// request-level tag under [BatchTagKey] holding a process-unique,
// monotonically increasing batch identifier.
//
// Delivery is fail-open: transmission failures are reported through an
// optional diagnostics logger (see [WithDiagnosticLogger]) and the record
// is dropped from remote delivery; Handle never returns an error for
// remote failures and never panics. Records emitted through a context
// carrying a valid OpenTelemetry span additionally ship trace correlation
// fields.
//
// Beyond the handler, the package bundles the surrounding conveniences of
// a small logging toolkit: [LoggerBuilder] assembles console, rotating
// file, and remote sinks into one *slog.Logger; [SessionLogger] emits
// session-scoped key=value messages; and [StartCapture] temporarily
// swaps os.Stdout/os.Stderr to re-emit captured output through a logger.
package slogsls
