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

package defaults

import "time"

// Packaging timeouts.
const (
	// PackageTimeout bounds packing a written bundle into an OCI layout.
	// Compilation itself is local and has no timeout.
	PackageTimeout = 2 * time.Minute
)

// File I/O limits.
const (
	// WriteConcurrency is the number of bundle files written in parallel.
	WriteConcurrency = 8

	// ReadConcurrency is the number of stack templates read in parallel.
	ReadConcurrency = 8
)
