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
	"context"
	"fmt"
	"log/slog"
	"sync"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
)

// ClientAPI is the subset of the log service client that slogsls uses.
// It covers resource reads and creates for provisioning plus the PutLogs
// transmission call. The production implementation is the SDK client
// returned by aliyun.CreateNormalInterface; tests substitute fakes.
type ClientAPI interface {
	GetProject(name string) (*aliyun.LogProject, error)
	CreateProject(name, description string) (*aliyun.LogProject, error)
	GetLogStore(project string, logstore string) (*aliyun.LogStore, error)
	CreateLogStore(project string, logstore string, ttl, shardCnt int, autoSplit bool, maxSplitShard int) error
	PutLogs(project, logstore string, lg *aliyun.LogGroup) error
	Close() error
}

// newClientFunc is the factory signature used to construct the client.
// ClientManager swaps it out in tests.
type newClientFunc func(cfg Config) (ClientAPI, error)

// ClientManager owns the lifecycle of one log service client handle.
// Construction is lazy and happens at most once; a failed construction is
// remembered and reported on every subsequent access rather than retried.
// Absence of a client is a normal, non-fatal state for all callers.
type ClientManager struct {
	cfg         Config
	userAgent   string
	diag        *slog.Logger
	newClientFn newClientFunc

	initOnce  sync.Once
	initErr   error
	client    ClientAPI
	closeOnce sync.Once
}

// NewClientManager returns a manager for the given coordinates. The
// optional diag logger receives lifecycle diagnostics and may be nil.
func NewClientManager(cfg Config, userAgent string, diag *slog.Logger) *ClientManager {
	cm := &ClientManager{
		cfg:       cfg,
		userAgent: userAgent,
		diag:      diag,
	}
	cm.newClientFn = func(cfg Config) (ClientAPI, error) {
		client := aliyun.CreateNormalInterface(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, "")
		if client == nil {
			return nil, ErrClientInitializationFailed
		}
		if cm.userAgent != "" {
			client.SetUserAgent(cm.userAgent)
		}
		return client, nil
	}
	return cm
}

// Initialize constructs the underlying client. It is idempotent;
// subsequent calls return the outcome of the first.
func (cm *ClientManager) Initialize() error {
	cm.initOnce.Do(func() {
		if err := cm.cfg.Validate(); err != nil {
			cm.initErr = err
			return
		}
		client, err := cm.newClientFn(cm.cfg)
		if err != nil {
			cm.initErr = fmt.Errorf("%w: %v", ErrClientInitializationFailed, err)
			logDiagnostic(cm.diag, slog.LevelWarn, "log service client unavailable",
				slog.String("endpoint", cm.cfg.Endpoint),
				slog.Any("error", err),
			)
			return
		}
		cm.client = client
	})
	return cm.initErr
}

// Client returns the live client handle, or an error if initialization
// has not run or did not succeed.
func (cm *ClientManager) Client() (ClientAPI, error) {
	if cm.initErr != nil {
		return nil, cm.initErr
	}
	if cm.client == nil {
		return nil, ErrClientNotInitialized
	}
	return cm.client, nil
}

// Close releases the client handle. It is idempotent and safe to call
// after a failed initialization.
func (cm *ClientManager) Close() error {
	var closeErr error
	cm.closeOnce.Do(func() {
		if cm.client == nil {
			return
		}
		if err := cm.client.Close(); err != nil {
			logDiagnostic(cm.diag, slog.LevelWarn, "error closing log service client", slog.Any("error", err))
			closeErr = err
		}
	})
	return closeErr
}

// logDiagnostic emits an internal diagnostic through logger, tolerating a
// nil logger. Diagnostics never travel through the remote path.
func logDiagnostic(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
