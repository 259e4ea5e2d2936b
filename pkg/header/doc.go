// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package header provides the common header of the documents gqlstack prints.
//
// Stack mappings, override tree listings and compile results are written with
// a Kubernetes style header so that tooling can tell them apart:
//
//	kind: StackMapping
//	apiVersion: gqlstack.nvidia.com/v1alpha1
//	metadata:
//	  timestamp: "2025-01-01T00:00:00Z"
//	  version: v1.2.0
//	  api: todo
//	stackMapping:
//	  QuerygetTodoResolver: Todo
//
// Documents embed Header inline:
//
//	type Document struct {
//	    header.Header `json:",inline" yaml:",inline"`
//	    StackMapping  map[string]string `json:"stackMapping" yaml:"stackMapping"`
//	}
package header
