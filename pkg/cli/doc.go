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

// Package cli implements the gqlstack command line interface.
//
// # Commands
//
// compile - Build a deployment bundle:
//
//	gqlstack compile --api-dir amplify/backend/api/todo --env dev
//
// Reads the construct description (default <api-dir>/build/constructs.yaml),
// runs the override at <api-dir>/build/override.yaml, merges hand-authored
// resolvers, functions and stacks, and writes the bundle. With --package the
// bundle is also packed into a local OCI image layout.
//
// mapping - Maintain the stack mapping in transform.conf.json:
//
//	gqlstack mapping snapshot --project-root . --api-name todo
//	gqlstack mapping assign --project-root . --api-name todo --target ConnectionStack
//
// overrides - List the resource tree addresses an override can select:
//
//	gqlstack overrides show --input build/constructs.yaml --select 'models.*.**'
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
// Flags that accept environment values use the GQLSTACK_ prefix, for example
// GQLSTACK_API_DIR, GQLSTACK_API_NAME, GQLSTACK_ENV and GQLSTACK_LOG_LEVEL.
// LOG_LEVEL is honored when GQLSTACK_LOG_LEVEL is unset.
package cli
