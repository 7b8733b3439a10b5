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
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Capture temporarily swaps os.Stdout and os.Stderr for pipes, buffering
// everything written while the capture is active. Stop restores the
// original streams, re-emits the captured text through the logger
// (stdout at info, stderr at error), and makes the text available via
// Stdout and Stderr.
//
// The swap is process-global, so captures must not overlap across
// goroutines.
type Capture struct {
	logger *slog.Logger

	origStdout *os.File
	origStderr *os.File
	outW       *os.File
	errW       *os.File
	outCh      chan string
	errCh      chan string

	stopOnce sync.Once
	stdout   string
	stderr   string
}

// StartCapture begins capturing os.Stdout and os.Stderr. The returned
// Capture must be stopped; pair every StartCapture with a deferred Stop.
// A nil logger discards the re-emitted output but still records it for
// Stdout/Stderr.
func StartCapture(logger *slog.Logger) (*Capture, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	c := &Capture{
		logger:     logger,
		origStdout: os.Stdout,
		origStderr: os.Stderr,
		outW:       outW,
		errW:       errW,
		outCh:      make(chan string, 1),
		errCh:      make(chan string, 1),
	}

	drain := func(r *os.File, ch chan<- string) {
		b, _ := io.ReadAll(r)
		r.Close()
		ch <- string(b)
	}
	go drain(outR, c.outCh)
	go drain(errR, c.errCh)

	os.Stdout = outW
	os.Stderr = errW
	return c, nil
}

// Stop restores the original streams, collects the captured text, and
// re-emits non-empty captures through the logger. It is idempotent.
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		os.Stdout = c.origStdout
		os.Stderr = c.origStderr
		c.outW.Close()
		c.errW.Close()
		c.stdout = <-c.outCh
		c.stderr = <-c.errCh

		if c.logger == nil {
			return
		}
		if out := strings.TrimSpace(c.stdout); out != "" {
			c.logger.Log(context.Background(), slog.LevelInfo, "captured stdout: "+out)
		}
		if errOut := strings.TrimSpace(c.stderr); errOut != "" {
			c.logger.Log(context.Background(), slog.LevelError, "captured stderr: "+errOut)
		}
	})
}

// Stdout returns the text written to os.Stdout while the capture was
// active. Valid after Stop.
func (c *Capture) Stdout() string { return c.stdout }

// Stderr returns the text written to os.Stderr while the capture was
// active. Valid after Stop.
func (c *Capture) Stderr() string { return c.stderr }

// WithCapturedOutput runs fn with os.Stdout and os.Stderr captured and
// returns what fn wrote to each, after re-emitting it through logger.
func WithCapturedOutput(logger *slog.Logger, fn func()) (stdout, stderr string, err error) {
	c, err := StartCapture(logger)
	if err != nil {
		return "", "", err
	}
	defer c.Stop()
	fn()
	c.Stop()
	return c.Stdout(), c.Stderr(), nil
}
