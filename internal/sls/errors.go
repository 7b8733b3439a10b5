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
	"errors"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
)

// ErrConfigInvalid indicates that one or more of the required connection
// coordinates (endpoint, access key id, access key secret, project,
// logstore) is empty. It is detected before any network call is made.
var ErrConfigInvalid = errors.New("sls: incomplete configuration: endpoint, access key id, access key secret, project, and logstore are required")

// ErrClientInitializationFailed indicates that the underlying log service
// client could not be constructed. The original error is typically wrapped.
var ErrClientInitializationFailed = errors.New("sls: log service client initialization failed")

// ErrClientNotInitialized indicates that an operation requiring a live
// client handle (provisioning, shipping) was attempted before the client
// was successfully initialized or after initialization failed.
var ErrClientNotInitialized = errors.New("sls: log service client not initialized")

// Error codes reported by the log service. The service identifies
// resource state through these codes rather than HTTP status alone, so
// provisioning matches on them verbatim.
const (
	codeProjectNotExist      = "ProjectNotExist"
	codeProjectAlreadyExist  = "ProjectAlreadyExist"
	codeLogStoreNotExist     = "LogStoreNotExist"
	codeLogStoreAlreadyExist = "LogStoreAlreadyExist"
)

// serviceError extracts the log service error from err, if err originated
// from the service rather than from transport or local failure.
func serviceError(err error) (*aliyun.Error, bool) {
	var se *aliyun.Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// isNotFound reports whether err is the service saying the addressed
// project or logstore does not exist. Any other error, including transport
// failures, is deliberately not treated as not-found.
func isNotFound(err error) bool {
	se, ok := serviceError(err)
	if !ok {
		return false
	}
	return se.Code == codeProjectNotExist || se.Code == codeLogStoreNotExist
}

// isAlreadyExists reports whether err is the service rejecting a create
// because a concurrent actor already created the resource. Provisioning
// treats this as success.
func isAlreadyExists(err error) bool {
	se, ok := serviceError(err)
	if !ok {
		return false
	}
	return se.Code == codeProjectAlreadyExist || se.Code == codeLogStoreAlreadyExist
}
