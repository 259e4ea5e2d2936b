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

package serializer

import (
	"context"
	"log/slog"
	"strings"
)

// Format represents the serialization format.
type Format string

const (
	// FormatJSON is indented JSON, the format of every CloudFormation template
	// and project config file the compiler writes.
	FormatJSON Format = "json"
	// FormatYAML is used for override manifests and human-facing output.
	FormatYAML Format = "yaml"
)

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return false
	default:
		return true
	}
}

// SupportedFormats returns all supported formats as strings.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML)}
}

// FormatFromPath determines the format from a file extension.
// .yaml and .yml map to FormatYAML; everything else is treated as JSON.
// Extension matching is case-insensitive.
func FormatFromPath(filePath string) Format {
	lowerPath := strings.ToLower(filePath)
	switch {
	case strings.HasSuffix(lowerPath, ".json"):
		return FormatJSON
	case strings.HasSuffix(lowerPath, ".yaml"), strings.HasSuffix(lowerPath, ".yml"):
		return FormatYAML
	default:
		slog.Debug("unknown file extension, defaulting to JSON", "filePath", filePath)
		return FormatJSON
	}
}

// Serializer writes a value in a configured format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Closer is implemented by Serializers that hold resources such as file handles.
type Closer interface {
	Close() error
}
