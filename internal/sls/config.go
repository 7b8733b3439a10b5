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

// Provisioning defaults applied when the caller does not tune them.
const (
	// DefaultRetentionDays is the logstore data retention applied on creation.
	DefaultRetentionDays = 30
	// DefaultShardCount is the number of logstore shards created.
	DefaultShardCount = 2
	// defaultProjectDescription is attached to auto-created projects.
	defaultProjectDescription = "Created by slogsls"
)

// Config carries the resolved connection coordinates and provisioning
// parameters consumed by ClientManager, Provisioner, and Shipper. It is the
// internal counterpart of the public slogsls.Config, with tunables merged
// in from options. Values are read-only after construction.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Project         string
	Logstore        string

	// ServiceName is shipped as the log group topic and duplicated into
	// the per-record content when set. Optional.
	ServiceName string

	// ProjectDescription is used when provisioning creates the project.
	ProjectDescription string

	// RetentionDays and ShardCount parameterize logstore creation.
	// Zero values fall back to DefaultRetentionDays / DefaultShardCount.
	RetentionDays int
	ShardCount    int
}

// Validate reports ErrConfigInvalid if any required coordinate is empty.
// ServiceName and the provisioning tunables are never required.
func (c Config) Validate() error {
	if c.Endpoint == "" || c.AccessKeyID == "" || c.AccessKeySecret == "" || c.Project == "" || c.Logstore == "" {
		return ErrConfigInvalid
	}
	return nil
}

// retentionDays returns the configured retention, defaulted.
func (c Config) retentionDays() int {
	if c.RetentionDays > 0 {
		return c.RetentionDays
	}
	return DefaultRetentionDays
}

// shardCount returns the configured shard count, defaulted.
func (c Config) shardCount() int {
	if c.ShardCount > 0 {
		return c.ShardCount
	}
	return DefaultShardCount
}

// projectDescription returns the configured description, defaulted.
func (c Config) projectDescription() string {
	if c.ProjectDescription != "" {
		return c.ProjectDescription
	}
	return defaultProjectDescription
}
