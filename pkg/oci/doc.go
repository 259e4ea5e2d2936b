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

// Package oci packages a written deployment bundle as an OCI artifact.
//
// The bundle directory becomes one reproducible gzip layer of an OCI 1.1
// manifest with ArtifactType, stored in a local OCI image layout:
//
//	ref, err := oci.ParseReference("oci://ghcr.io/org/todo-api:v1.0.0")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Package(ctx, oci.PackageOptions{
//	    SourceDir: "build",
//	    StoreDir:  "build.oci",
//	    Reference: ref,
//	})
//
// The layout can be pushed with any OCI tool such as oras copy. Nothing in
// this package talks to a registry.
package oci
