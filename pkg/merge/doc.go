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

// Package merge folds hand-authored artifacts over generated deployment
// resources.
//
// User resolvers, functions and pipeline functions replace generated entries
// of the same name. Custom stacks are added as nested stack resources of the
// root stack:
//
//	user, err := merge.LoadUserConfig(ctx, apiDir)
//	if err != nil {
//	    return err
//	}
//	out, err = merge.MergeUserConfigWithTransformOutput(user, out, merge.Options{})
//
// A custom stack whose name matches a generated stack, or that redefines a
// parameter another custom stack declared differently, fails with
// errors.ErrCodeStackCollision.
package merge
