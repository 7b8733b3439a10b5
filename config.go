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
	"os"
	"strings"
)

// Environment variable names recognized by ConfigFromEnv.
const (
	EnvEndpoint        = "SLS_ENDPOINT"
	EnvAccessKeyID     = "SLS_ACCESS_KEY_ID"
	EnvAccessKeySecret = "SLS_ACCESS_KEY_SECRET"
	EnvProject         = "SLS_PROJECT"
	EnvLogstore        = "SLS_LOGSTORE"
	EnvServiceName     = "SLS_SERVICE_NAME"
)

// Config holds the connection and target coordinates for one
// project/logstore pair. It is a plain value: construct it once, pass it
// by value, and share it freely across goroutines.
//
// Endpoint, AccessKeyID, AccessKeySecret, Project, and Logstore are
// required; ServiceName is optional and, when set, is shipped as the log
// group topic and duplicated into each record's content.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Project         string
	Logstore        string
	ServiceName     string
}

// IsValid reports whether all five required coordinates are non-empty.
// ServiceName never affects validity.
func (c Config) IsValid() bool {
	return c.Endpoint != "" &&
		c.AccessKeyID != "" &&
		c.AccessKeySecret != "" &&
		c.Project != "" &&
		c.Logstore != ""
}

// ConfigFromEnv assembles a Config from the SLS_* environment variables,
// trimming surrounding whitespace. Unset variables yield empty fields;
// validity is the caller's decision via IsValid.
func ConfigFromEnv() Config {
	return Config{
		Endpoint:        trimmedEnv(EnvEndpoint),
		AccessKeyID:     trimmedEnv(EnvAccessKeyID),
		AccessKeySecret: trimmedEnv(EnvAccessKeySecret),
		Project:         trimmedEnv(EnvProject),
		Logstore:        trimmedEnv(EnvLogstore),
		ServiceName:     trimmedEnv(EnvServiceName),
	}
}

// trimmedEnv reads an environment variable and trims surrounding whitespace.
func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
