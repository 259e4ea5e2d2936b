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

package merge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

// Directories under the API resource directory holding hand-authored artifacts.
const (
	ResolversDir         = "resolvers"
	PipelineFunctionsDir = "pipelineFunctions"
	FunctionsDir         = "functions"
	StacksDir            = "stacks"
)

// LoadUserConfig reads the hand-authored resolvers, pipeline functions,
// functions and custom stacks under apiDir. Missing directories are empty.
// Only .json files are read from the stacks directory.
func LoadUserConfig(ctx context.Context, apiDir string) (*UserConfig, error) {
	cfg := &UserConfig{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := readTextDir(gctx, filepath.Join(apiDir, ResolversDir))
		cfg.Resolvers = m
		return err
	})
	g.Go(func() error {
		m, err := readTextDir(gctx, filepath.Join(apiDir, PipelineFunctionsDir))
		cfg.PipelineFunctions = m
		return err
	})
	g.Go(func() error {
		m, err := readTextDir(gctx, filepath.Join(apiDir, FunctionsDir))
		cfg.Functions = m
		return err
	})
	g.Go(func() error {
		m, err := readStacks(gctx, filepath.Join(apiDir, StacksDir))
		cfg.Stacks = m
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to load user config", err)
	}
	return cfg, nil
}

// readTextDir reads every regular file directly under dir, keyed by name.
func readTextDir(ctx context.Context, dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		out[e.Name()] = string(data)
	}
	return out, nil
}

func readStacks(ctx context.Context, dir string) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			return nil
		}
		t, err := template.ReadFile(path)
		if err != nil {
			return err
		}
		out[d.Name()] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
