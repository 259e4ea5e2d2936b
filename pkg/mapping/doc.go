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

// Package mapping pins AppSync resolvers and functions to the stack file
// they were first deployed in.
//
// Moving a resolver between nested stacks makes CloudFormation delete and
// recreate it, so the owning stack of every Resolver and
// FunctionConfiguration is persisted in the StackMapping of
// transform.conf.json. Entries are only ever added:
//
//	m := mapping.NewManager(projectRoot, "todo", nil)
//	if _, err := m.AssignStackMappings(ctx, "CustomResolvers"); err != nil {
//	    return err
//	}
//
// SnapshotStackMappings reads the deployed templates under
// amplify/#current-cloud-backend. AssignStackMappings snapshots and then maps
// the still unmapped ids of the local build to the target stack. Missing
// inputs fail with errors.ErrCodePrerequisite and name the command to run in
// the "command" context key.
package mapping
