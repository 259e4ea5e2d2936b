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

package header

import (
	"time"
)

// APIVersion is the schema version of every document gqlstack emits.
const APIVersion = "gqlstack.nvidia.com/v1alpha1"

// Kind names the type of a gqlstack document.
type Kind string

const (
	KindStackMapping  Kind = "StackMapping"
	KindOverrideTree  Kind = "OverrideTree"
	KindCompileResult Kind = "CompileResult"
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindStackMapping, KindOverrideTree, KindCompileResult:
		return true
	default:
		return false
	}
}

// Header carries the kind, schema version and metadata of a document.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithMetadata adds a metadata key-value pair. Empty values are skipped.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		if value == "" {
			return
		}
		if h.Metadata == nil {
			h.Metadata = make(map[string]string)
		}
		h.Metadata[key] = value
	}
}

// WithVersion records the tool version in the metadata.
func WithVersion(version string) Option {
	return WithMetadata("version", version)
}

// New returns a Header of the given kind stamped with the current time.
func New(kind Kind, opts ...Option) Header {
	h := Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}
