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
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// prefixHexLen is the number of hex characters kept from the hashed seed.
const prefixHexLen = 16

// BatchIDGenerator produces process-unique, strictly increasing batch
// identifiers of the form "PREFIX-1", "PREFIX-2", ... with the sequence
// rendered in uppercase hex. One generator is owned by each handler
// instance; the counter is serialized by its own lock, independent of the
// transmission lock, so identifier generation never contends with sends.
type BatchIDGenerator struct {
	prefix string

	mu  sync.Mutex
	seq uint64
}

// NewBatchIDGenerator returns a generator. An empty prefix derives a
// collision-resistant one from host identity, pid, a nanosecond clock
// read, and random entropy; a caller-supplied prefix is used verbatim
// (upper-cased), which keeps identifiers deterministic in tests.
func NewBatchIDGenerator(prefix string) *BatchIDGenerator {
	if prefix == "" {
		prefix = derivePrefix()
	}
	return &BatchIDGenerator{prefix: strings.ToUpper(prefix)}
}

// Next increments the sequence under the lock and renders the identifier.
// It always succeeds.
func (g *BatchIDGenerator) Next() string {
	g.mu.Lock()
	g.seq++
	seq := g.seq
	g.mu.Unlock()
	return fmt.Sprintf("%s-%X", g.prefix, seq)
}

// Prefix returns the effective (possibly derived) prefix.
func (g *BatchIDGenerator) Prefix() string { return g.prefix }

// derivePrefix hashes hostname, pid, a nanosecond timestamp, and 16
// random bytes, keeping the first prefixHexLen hex characters. No external
// coordination is needed for cross-process uniqueness.
func derivePrefix() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	var entropy [16]byte
	_, _ = rand.Read(entropy[:])
	seed := fmt.Sprintf("%s|%d|%d|%x", host, os.Getpid(), time.Now().UnixNano(), entropy)
	sum := sha256.Sum256([]byte(seed))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:prefixHexLen])
}
