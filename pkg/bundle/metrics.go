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

package bundle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	bundlesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlstack_bundles_written_total",
			Help: "Total number of deployment bundles written",
		},
		[]string{"status"}, // success or error
	)

	bundleBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gqlstack_bundle_bytes_total",
			Help: "Total number of bytes written to deployment bundles",
		},
	)

	bundleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gqlstack_bundle_write_duration_seconds",
			Help:    "Time spent writing a deployment bundle",
			Buckets: prometheus.DefBuckets,
		},
	)
)
