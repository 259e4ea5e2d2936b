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

// Package stack owns the composition root of a compile run and assembles its
// DeploymentResources.
//
// Transform phases create nested stacks with CreateStack, declare parameters
// with AddParameter and register text assets with AddAsset. Synthesize then
// runs the override, when one is enabled, before the final synthesis and
// partitions the result:
//
//	m := stack.NewManager(stack.WithAuthConfig(stack.AuthConfig{IAM: true}))
//	todo, _ := m.CreateStack("Todo")
//	_ = m.AddAsset("resolvers/Query.getTodo.req.vtl", vtl)
//	out, err := m.Synthesize(ctx, executor.Config(apiDir))
//
// The root template becomes RootStack and every other template lands in
// Stacks. Assets are split by name: schema.graphql, and the resolvers/,
// pipelineFunctions/ and functions/ prefixes.
package stack
