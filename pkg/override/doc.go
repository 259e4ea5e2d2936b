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

// Package override runs customer overrides against generated resources.
//
// An override lives at <overrideDir>/build/override.yaml. When the file is
// absent, ApplyFileBasedOverride returns an empty tree and no error. When it
// is present, the executor classifies every resource into a
// directive.ResourceTree, loads the artifact, runs it, and applies the edits
// it recorded to the live resources.
//
// # Manifest
//
// The default loader reads a YAML manifest. Rules select tree entries by
// address and may guard on a CEL expression:
//
//	override:
//	  - select: models.*.modelDDBTable
//	    when: resource.properties.BillingMode == "PAY_PER_REQUEST"
//	    set:
//	      PointInTimeRecoverySpecification.PointInTimeRecoveryEnabled: true
//	    setExpr:
//	      TableName: '"todo-" + project.envName'
//	    delete:
//	      - SSESpecification
//
// Expressions see resource (logicalId, type, name, path, properties) and
// project (envName, projectName). A manifest without an override list is
// ignored.
//
// # Errors
//
// Every failure to load or run an override is returned as a StructuredError
// with code INVALID_OVERRIDE. Its context carries "details", the original
// message, and "resolution", a fixed hint.
package override
