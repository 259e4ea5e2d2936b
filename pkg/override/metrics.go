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

package override

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusSkipped = "skipped"
)

var (
	overrideExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlstack_override_executions_total",
			Help: "Total number of override executions",
		},
		[]string{"status"}, // success, error or skipped
	)

	overrideDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gqlstack_override_duration_seconds",
			Help:    "Time taken to load and apply overrides",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	overrideEditsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gqlstack_override_edits_applied_total",
			Help: "Total number of property edits applied by overrides",
		},
	)

	// Artifact cache metrics
	overrideCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gqlstack_override_cache_invalidations_total",
			Help: "Total number of override artifacts dropped because their content changed",
		},
	)

	overrideCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gqlstack_override_cache_hits_total",
			Help: "Total number of override runs that reused a loaded artifact",
		},
	)
)
