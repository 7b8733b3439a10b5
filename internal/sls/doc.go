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

// Package sls contains the Alibaba Cloud Simple Log Service glue used by
// the public slogsls package: lazy client construction, project/logstore
// provisioning, wire payload assembly, and batch identifier generation.
//
// Nothing in this package is part of the public API. The slogsls package
// re-exposes the pieces applications are expected to touch.
package sls
