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

// Package defaults provides the timeouts and limits shared across gqlstack.
//
// Compilation is bound by local CPU and disk only, so the phases carry no
// timeouts. The values here bound OCI packaging and the fan-out of the
// concurrent file reads and writes:
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.PackageTimeout)
//	defer cancel()
//
//	g.SetLimit(defaults.ReadConcurrency)
package defaults
