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
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// File sink rotation defaults, applied when WithFile is used.
const (
	defaultFileMaxSizeMB = 100
	defaultFileBackups   = 5
	defaultFileMaxAgeDays = 28
)

// Logger bundles an *slog.Logger with the sinks the builder created for
// it, so the whole arrangement can be torn down with one Close call.
//
// Remote delivery failing to come up does not fail Build: the logger
// degrades to its local sinks and RemoteEnabled reports false.
type Logger struct {
	*slog.Logger

	remote    *Handler
	owned     []io.Closer
	closeOnce sync.Once
}

// RemoteEnabled reports whether the remote SLS sink was successfully
// established for this logger.
func (l *Logger) RemoteEnabled() bool { return l.remote != nil }

// Close shuts down the sinks the builder created: the remote handler's
// client and any file writers slogsls opened. It is idempotent and
// returns the first error encountered.
func (l *Logger) Close() error {
	var firstErr error
	l.closeOnce.Do(func() {
		if l.remote != nil {
			if err := l.remote.Close(); err != nil {
				firstErr = err
			}
		}
		for _, c := range l.owned {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// LoggerBuilder assembles a Logger from console, rotating file, and
// remote SLS sinks. The zero builder is unusable; start from
// NewLoggerBuilder, chain the With methods, and finish with Build.
type LoggerBuilder struct {
	tag           string
	level         slog.Level
	console       bool
	consoleWriter io.Writer
	filePath      string
	remoteCfg     *Config
	remoteOpts    []Option
	attrs         []slog.Attr
}

// NewLoggerBuilder returns a builder with console output at level Info
// enabled, matching the most common arrangement.
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		level:   slog.LevelInfo,
		console: true,
	}
}

// WithTag binds a "tag" attribute to every record the logger emits.
func (b *LoggerBuilder) WithTag(tag string) *LoggerBuilder {
	b.tag = tag
	return b
}

// WithLevel sets the minimum level for all sinks.
func (b *LoggerBuilder) WithLevel(level slog.Level) *LoggerBuilder {
	b.level = level
	return b
}

// WithConsole enables or disables the console sink.
func (b *LoggerBuilder) WithConsole(enabled bool) *LoggerBuilder {
	b.console = enabled
	return b
}

// WithConsoleWriter redirects the console sink to w instead of stdout.
func (b *LoggerBuilder) WithConsoleWriter(w io.Writer) *LoggerBuilder {
	b.consoleWriter = w
	return b
}

// WithFile enables a JSON file sink at path, rotated by size and age.
func (b *LoggerBuilder) WithFile(path string) *LoggerBuilder {
	b.filePath = path
	return b
}

// WithRemote enables the remote SLS sink using cfg and the given handler
// options. If the remote sink cannot be established at Build time the
// logger still comes up with its local sinks only.
func (b *LoggerBuilder) WithRemote(cfg Config, opts ...Option) *LoggerBuilder {
	c := cfg
	b.remoteCfg = &c
	b.remoteOpts = opts
	return b
}

// WithAttrs binds additional attributes to every record.
func (b *LoggerBuilder) WithAttrs(attrs ...slog.Attr) *LoggerBuilder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// Build assembles the logger. Local sink construction failures are
// returned as errors; remote sink failures are reported to stderr and
// degrade the logger to local-only delivery (fail-open).
func (b *LoggerBuilder) Build() (*Logger, error) {
	var handlers []slog.Handler
	l := &Logger{}

	if b.console {
		w := b.consoleWriter
		if w == nil {
			w = os.Stdout
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: b.level}))
	}

	if b.filePath != "" {
		lj := &lumberjack.Logger{
			Filename:   b.filePath,
			MaxSize:    defaultFileMaxSizeMB,
			MaxBackups: defaultFileBackups,
			MaxAge:     defaultFileMaxAgeDays,
		}
		l.owned = append(l.owned, lj)
		handlers = append(handlers, slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: b.level}))
	}

	if b.remoteCfg != nil {
		opts := append(append([]Option(nil), b.remoteOpts...), WithLevel(b.level))
		remote, err := New(*b.remoteCfg, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[slogsls] WARNING: remote logging disabled: %v\n", err)
		} else {
			l.remote = remote
			handlers = append(handlers, remote)
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		// Everything disabled; keep the logger functional but silent.
		handler = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: b.level})
	case 1:
		handler = handlers[0]
	default:
		handler = newMultiHandler(handlers...)
	}

	logger := slog.New(handler)
	if b.tag != "" {
		logger = logger.With(slog.String("tag", b.tag))
	}
	for _, a := range b.attrs {
		logger = logger.With(a)
	}
	l.Logger = logger
	return l, nil
}

// multiHandler fans one record out to several handlers. Each sink applies
// its own level gate; a failing sink does not stop the others.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

// Enabled reports whether any wrapped handler would accept the level.
func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle dispatches the record to every handler that accepts its level,
// joining any errors after all sinks have seen the record.
func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs derives a multiHandler whose children all carry attrs.
func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		children[i] = h.WithAttrs(attrs)
	}
	return newMultiHandler(children...)
}

// WithGroup derives a multiHandler whose children all nest under name.
func (m *multiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		children[i] = h.WithGroup(name)
	}
	return newMultiHandler(children...)
}

// Ensure multiHandler implements slog.Handler.
var _ slog.Handler = (*multiHandler)(nil)
