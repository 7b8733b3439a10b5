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
	"fmt"
	"log/slog"
)

// Provisioner guarantees that the configured project and logstore exist
// before any record is transmitted, creating them when absent and
// tolerating creation races with concurrent actors. It never panics; all
// failures surface as error returns the caller treats as "remote logging
// disabled".
type Provisioner struct {
	cfg    Config
	client ClientAPI
	diag   *slog.Logger
}

// NewProvisioner returns a provisioner over the given client handle. The
// client may be nil, in which case every operation fails immediately
// without a network call. diag may be nil.
func NewProvisioner(client ClientAPI, cfg Config, diag *slog.Logger) *Provisioner {
	return &Provisioner{cfg: cfg, client: client, diag: diag}
}

// EnsureResources confirms the project and logstore exist, creating each
// when the service reports it absent. It returns nil only when both are
// confirmed present by the end of the sequence.
func (p *Provisioner) EnsureResources() error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if p.client == nil {
		return ErrClientNotInitialized
	}
	if err := p.ensureProject(); err != nil {
		return err
	}
	return p.ensureLogstore()
}

// ensureProject confirms the project exists. A not-found read triggers a
// create; a create losing the race to a concurrent creator is success.
// Any other remote error aborts; an unexpected failure must not be
// masked as not-found.
func (p *Provisioner) ensureProject() error {
	_, err := p.client.GetProject(p.cfg.Project)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("checking project %q: %w", p.cfg.Project, err)
	}

	logDiagnostic(p.diag, slog.LevelInfo, "project not found; creating",
		slog.String("project", p.cfg.Project),
	)
	if _, err := p.client.CreateProject(p.cfg.Project, p.cfg.projectDescription()); err != nil {
		if isAlreadyExists(err) {
			// Benign race: another actor created it between our read and
			// create.
			return nil
		}
		return fmt.Errorf("creating project %q: %w", p.cfg.Project, err)
	}
	return nil
}

// ensureLogstore mirrors ensureProject for the logstore, scoped to the
// now-confirmed project, applying the configured retention and shard
// parameters on creation.
func (p *Provisioner) ensureLogstore() error {
	_, err := p.client.GetLogStore(p.cfg.Project, p.cfg.Logstore)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("checking logstore %q in project %q: %w", p.cfg.Logstore, p.cfg.Project, err)
	}

	logDiagnostic(p.diag, slog.LevelInfo, "logstore not found; creating",
		slog.String("project", p.cfg.Project),
		slog.String("logstore", p.cfg.Logstore),
		slog.Int("retention_days", p.cfg.retentionDays()),
		slog.Int("shard_count", p.cfg.shardCount()),
	)
	err = p.client.CreateLogStore(p.cfg.Project, p.cfg.Logstore, p.cfg.retentionDays(), p.cfg.shardCount(), false, 0)
	if err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("creating logstore %q in project %q: %w", p.cfg.Logstore, p.cfg.Project, err)
	}
	return nil
}
