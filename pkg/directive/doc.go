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

// Package directive classifies generated resources and groups them into the
// ResourceTree that override code addresses.
//
// Classification gives every resource a semantic address: the stack that owns
// it (the root API stack or a nested directive stack) and a resource name
// derived from its construct path. Each CloudFormation type maps to a Kind
// through a fixed lookup table, and grouping switches on that Kind.
//
// # Tree Shape
//
// The tree has six top-level keys: api, models, function, http, opensearch
// and predictions. Models are keyed by model name. Every bucket carries
// resolvers and appsyncFunctions maps, named slots for the resources its
// directive emits, and an other map for everything else, so a tree built
// from N in-scope resources always flattens back to N entries.
//
// # Edits
//
// Handles expose a deep copied snapshot of a resource's properties. Set and
// Delete append to an EditLog; nothing changes until ApplyEdits runs:
//
//	log := &directive.EditLog{}
//	tree := directive.Build(scope, log, slog.Default())
//	tree.Models["Todo"].ModelDDBTable.Set("BillingMode", "PROVISIONED")
//	n, err := directive.ApplyEdits(scope, log.Edits())
//
// Property paths are dot separated; numeric segments index lists.
//
// # Selectors
//
// Entries flattens a tree into dot separated addresses such as
// models.Todo.modelDDBTable. Select matches them segment by segment with
// path.Match patterns; a trailing ** matches any remaining segments.
package directive
