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

package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/serializer"
)

// TransformConfigFileName is the project config file in the API directory.
const TransformConfigFileName = "transform.conf.json"

// TransformConfig is the persisted project configuration of an API.
type TransformConfig struct {
	Version            int `json:"Version,omitempty" yaml:"Version,omitempty"`
	TransformerVersion int `json:"TransformerVersion,omitempty" yaml:"TransformerVersion,omitempty"`

	// StackMapping assigns resource logical ids to the stack they are
	// deployed in.
	StackMapping map[string]string `json:"StackMapping,omitempty" yaml:"StackMapping,omitempty"`
}

// Store loads and saves a TransformConfig.
type Store interface {
	Load(ctx context.Context) (*TransformConfig, error)
	Save(ctx context.Context, cfg *TransformConfig) error
}

// FileStore keeps the TransformConfig in <Dir>/transform.conf.json.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store for the API directory dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the config file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.Dir, TransformConfigFileName)
}

// Load reads the config. A missing file yields an empty config.
func (s *FileStore) Load(ctx context.Context) (*TransformConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := &TransformConfig{}
	if _, err := os.Stat(s.Path()); err == nil {
		cfg, err = serializer.FromFile[TransformConfig](s.Path())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read transform config", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to stat transform config", err)
	}

	if cfg.StackMapping == nil {
		cfg.StackMapping = make(map[string]string)
	}
	return cfg, nil
}

// Save writes cfg. Keys of an existing file that TransformConfig does not
// model are kept.
func (s *FileStore) Save(ctx context.Context, cfg *TransformConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "transform config is required")
	}

	doc := make(map[string]any)
	if _, err := os.Stat(s.Path()); err == nil {
		existing, readErr := serializer.FromFile[map[string]any](s.Path())
		if readErr != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read transform config", readErr)
		}
		if *existing != nil {
			doc = *existing
		}
	}

	data, err := serializer.Marshal(serializer.FormatJSON, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode transform config", err)
	}
	fields, err := serializer.FromBytes[map[string]any](serializer.FormatJSON, data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode transform config", err)
	}
	for k, v := range *fields {
		doc[k] = v
	}

	if err := serializer.WriteFile(s.Path(), doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write transform config", err)
	}
	return nil
}
