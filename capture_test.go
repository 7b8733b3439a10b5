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
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestWithCapturedOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	origStdout, origStderr := os.Stdout, os.Stderr
	stdout, stderr, err := WithCapturedOutput(logger, func() {
		fmt.Fprint(os.Stdout, "out text")
		fmt.Fprint(os.Stderr, "err text")
	})
	if err != nil {
		t.Fatalf("WithCapturedOutput() = %v", err)
	}

	if stdout != "out text" {
		t.Errorf("captured stdout = %q, want %q", stdout, "out text")
	}
	if stderr != "err text" {
		t.Errorf("captured stderr = %q, want %q", stderr, "err text")
	}
	if os.Stdout != origStdout || os.Stderr != origStderr {
		t.Error("original streams not restored after capture")
	}

	out := buf.String()
	if !strings.Contains(out, "captured stdout: out text") {
		t.Errorf("logger missing re-emitted stdout:\n%s", out)
	}
	if !strings.Contains(out, "captured stderr: err text") {
		t.Errorf("logger missing re-emitted stderr:\n%s", out)
	}
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("stderr capture not re-emitted at error level:\n%s", out)
	}
}

func TestCaptureStopIdempotent(t *testing.T) {
	c, err := StartCapture(nil)
	if err != nil {
		t.Fatalf("StartCapture() = %v", err)
	}
	fmt.Fprint(os.Stdout, "once")

	c.Stop()
	first := c.Stdout()
	c.Stop()

	if first != "once" {
		t.Errorf("Stdout() = %q, want %q", first, "once")
	}
	if c.Stdout() != first {
		t.Errorf("Stdout() changed after repeated Stop: %q", c.Stdout())
	}
}

func TestCaptureNilLoggerDiscards(t *testing.T) {
	c, err := StartCapture(nil)
	if err != nil {
		t.Fatalf("StartCapture() = %v", err)
	}
	fmt.Fprint(os.Stderr, "quiet failure")
	c.Stop()

	if c.Stderr() != "quiet failure" {
		t.Errorf("Stderr() = %q, want %q", c.Stderr(), "quiet failure")
	}
}

func TestCaptureEmptyOutputNotReemitted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c, err := StartCapture(logger)
	if err != nil {
		t.Fatalf("StartCapture() = %v", err)
	}
	c.Stop()

	if got := buf.String(); got != "" {
		t.Errorf("logger received output for an empty capture:\n%s", got)
	}
}
