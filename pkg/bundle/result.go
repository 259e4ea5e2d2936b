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
	"fmt"
	"time"
)

// Result describes one written bundle.
type Result struct {
	// RunID identifies the compile run that produced the bundle.
	RunID string `json:"run_id" yaml:"run_id"`

	// Version is the compiler version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// OutputDir is the bundle directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Files are the paths of the generated files, sorted.
	Files []string `json:"files" yaml:"files"`

	// Size is the total size in bytes of the generated files.
	Size int64 `json:"size_bytes" yaml:"size_bytes"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// Checksums reports whether checksums.txt was written.
	Checksums bool `json:"checksums" yaml:"checksums"`

	// DryRun reports that nothing was written.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	// Digest and Reference are set once the bundle is packaged as an OCI artifact.
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// NewResult returns an empty Result for the run.
func NewResult(runID, outputDir string) *Result {
	return &Result{
		RunID:     runID,
		OutputDir: outputDir,
		Files:     []string{},
	}
}

// AddFile records a generated file.
func (r *Result) AddFile(path string, size int64) {
	r.Files = append(r.Files, path)
	r.Size += size
}

// SetOCIMetadata records the packaged artifact.
func (r *Result) SetOCIMetadata(digest, reference string) {
	r.Digest = digest
	r.Reference = reference
}

// Summary returns a human-readable summary of the bundle.
func (r *Result) Summary() string {
	verb := "Generated"
	if r.DryRun {
		verb = "Would generate"
	}
	return fmt.Sprintf("%s %d files (%s) in %v.",
		verb, len(r.Files), formatBytes(r.Size), r.Duration.Round(time.Millisecond))
}

// formatBytes formats bytes into human-readable format.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
