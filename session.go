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
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-logfmt/logfmt"
	"github.com/google/uuid"
)

// SessionLogger emits log messages scoped to one session: every message
// is a deterministic key=value string opening with the session id and an
// event name, followed by optional content and caller key/value pairs.
//
//	session=8f14… event="user login" content="ok" user_id=42
//
// It wraps any *slog.Logger, so session messages flow through whatever
// sinks that logger carries, including a remote SLS handler.
type SessionLogger struct {
	tag       string
	sessionID string
	logger    *slog.Logger
	bound     []any
}

// NewSessionLogger returns a session logger writing through logger. An
// empty sessionID is replaced with a generated UUID. A nil logger gets a
// console-only logger tagged with tag.
func NewSessionLogger(tag, sessionID string, logger *slog.Logger) *SessionLogger {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if logger == nil {
		l, err := NewLoggerBuilder().WithTag(tag).Build()
		if err != nil {
			logger = slog.Default()
		} else {
			logger = l.Logger
		}
	}
	return &SessionLogger{tag: tag, sessionID: sessionID, logger: logger}
}

// SessionID returns the session identifier, generated or supplied.
func (s *SessionLogger) SessionID() string { return s.sessionID }

// With returns a derived session logger whose messages always include the
// given key/value pairs, after the event and content.
func (s *SessionLogger) With(keyvals ...any) *SessionLogger {
	d := *s
	d.bound = append(append([]any(nil), s.bound...), keyvals...)
	return &d
}

// Debug logs a session event at debug level.
func (s *SessionLogger) Debug(event, content string, keyvals ...any) {
	s.log(slog.LevelDebug, event, content, keyvals)
}

// Info logs a session event at info level.
func (s *SessionLogger) Info(event, content string, keyvals ...any) {
	s.log(slog.LevelInfo, event, content, keyvals)
}

// Warn logs a session event at warn level.
func (s *SessionLogger) Warn(event, content string, keyvals ...any) {
	s.log(slog.LevelWarn, event, content, keyvals)
}

// Error logs a session event at error level.
func (s *SessionLogger) Error(event, content string, keyvals ...any) {
	s.log(slog.LevelError, event, content, keyvals)
}

func (s *SessionLogger) log(level slog.Level, event, content string, keyvals []any) {
	s.logger.Log(context.Background(), level, s.formatMessage(event, content, keyvals))
}

// formatMessage assembles the session=… event=… content=… k=v message.
// Values that logfmt cannot encode (nil keys aside, that is multi-line or
// unsupported types) degrade to their fmt representation rather than
// dropping the pair.
func (s *SessionLogger) formatMessage(event, content string, keyvals []any) string {
	var buf bytes.Buffer
	enc := logfmt.NewEncoder(&buf)
	encode := func(k, v any) {
		if err := enc.EncodeKeyval(k, v); err != nil {
			_ = enc.EncodeKeyval(fmt.Sprint(k), fmt.Sprintf("%+v", v))
		}
	}

	encode("session", s.sessionID)
	encode("event", event)
	if content != "" {
		encode("content", content)
	}
	pairs := append(append([]any(nil), s.bound...), keyvals...)
	for i := 0; i+1 < len(pairs); i += 2 {
		encode(pairs[i], pairs[i+1])
	}
	if len(pairs)%2 == 1 {
		encode(pairs[len(pairs)-1], "")
	}
	return buf.String()
}
