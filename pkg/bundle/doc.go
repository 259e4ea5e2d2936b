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

// Package bundle writes DeploymentResources to disk.
//
// The layout is fixed: the schema, one directory per asset kind, one JSON
// file per nested stack under stacks/ and the root stack as
// cloudformation-template.json. A checksums.txt with the SHA256 of every
// file is written last unless disabled:
//
//	w := bundle.NewWriter(bundle.WithVersion(version.Current))
//	res, err := w.Write(ctx, out, "amplify/backend/api/todo/build")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Summary())
//
// VerifyChecksums re-checks a written bundle.
package bundle
