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

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	if PackageTimeout < 30*time.Second || PackageTimeout > 10*time.Minute {
		t.Errorf("PackageTimeout (%v) is outside the expected range", PackageTimeout)
	}
}

func TestConcurrencyLimits(t *testing.T) {
	tests := []struct {
		name  string
		value int
	}{
		{"WriteConcurrency", WriteConcurrency},
		{"ReadConcurrency", ReadConcurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value < 1 || tt.value > 64 {
				t.Errorf("%s (%d) is outside [1, 64]", tt.name, tt.value)
			}
		})
	}
}
