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
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Reader deserializes JSON or YAML from an io.Reader.
//
// Close must be called when the Reader was created with NewFileReader.
// Close is idempotent and a no-op for non-closeable inputs.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader creates a Reader for the given format over input.
// If input implements io.Closer it is closed by Reader.Close.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	r := &Reader{
		format: format,
		input:  input,
	}
	if closer, ok := input.(io.Closer); ok {
		r.closer = closer
	}
	return r, nil
}

// NewFileReader opens filePath for deserialization in the given format.
func NewFileReader(format Format, filePath string) (*Reader, error) {
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &Reader{
		format: format,
		input:  file,
		closer: file,
	}, nil
}

// Deserialize decodes the input into v, which must be a pointer.
func (r *Reader) Deserialize(v any) error {
	if r == nil {
		return fmt.Errorf("reader is nil")
	}
	if r.input == nil {
		return fmt.Errorf("input source is nil")
	}

	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(v); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format for deserialization: %s", r.format)
	}
}

// Close releases the underlying file handle, if any.
func (r *Reader) Close() error {
	if r == nil {
		return nil
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// FromFile loads and deserializes a file in one call, detecting the format
// from the file extension.
//
// Example:
//
//	cfg, err := FromFile[config.TransformConfig]("transform.conf.json")
func FromFile[T any](path string) (*T, error) {
	format := FormatFromPath(path)

	ser, err := NewFileReader(format, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create serializer for %q: %w", path, err)
	}
	defer func() {
		if closeErr := ser.Close(); closeErr != nil {
			slog.Warn("failed to close serializer", "error", closeErr)
		}
	}()

	var r T
	if err := ser.Deserialize(&r); err != nil {
		return nil, fmt.Errorf("failed to deserialize object from %q: %w", path, err)
	}

	slog.Debug("successfully loaded object from file", slog.String("path", path))
	return &r, nil
}

// FromBytes deserializes data in the given format into a new T.
func FromBytes[T any](format Format, data []byte) (*T, error) {
	ser, err := NewReader(format, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var r T
	if err := ser.Deserialize(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
