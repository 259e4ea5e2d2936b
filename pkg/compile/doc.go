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

// Package compile runs the phases that turn a transformed API into a
// deployment bundle.
//
// A run loads the stack mapping from transform.conf.json, populates a
// stack.Manager from the construct description, applies the override at
// <override-dir>/build/override.yaml, synthesizes templates, merges the
// hand-authored resolvers, functions and stacks from the API directory, and
// writes the bundle:
//
//	in, err := compile.LoadInput(filepath.Join(apiDir, "build", compile.DefaultInputFile))
//	cfg := config.NewConfig(config.WithAPIDir(apiDir), config.WithProject("dev", "todo"))
//	out, err := compile.NewCompiler().Run(ctx, cfg, in)
//	fmt.Println(out.Result.Summary())
package compile
