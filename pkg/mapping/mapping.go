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

package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gqlstack/pkg/config"
	"github.com/NVIDIA/gqlstack/pkg/defaults"
	"github.com/NVIDIA/gqlstack/pkg/directive"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

// Commands that produce the files stack mapping reads.
const (
	CommandAddAPI  = "amplify add api"
	CommandPull    = "amplify pull"
	CommandCompile = "amplify api gql-compile"
)

const (
	amplifyDir      = "amplify"
	backendDir      = "backend"
	cloudBackendDir = "#current-cloud-backend"
	apiCategory     = "api"
	buildDir        = "build"
)

// Manager keeps AppSync resolvers and functions in the stack file they were
// first deployed in.
type Manager struct {
	projectRoot string
	apiName     string
	store       config.Store
	log         *slog.Logger
}

// Option is a functional option for configuring Manager instances.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager returns a Manager for the API apiName of the project at
// projectRoot. When store is nil the API's transform.conf.json is used.
func NewManager(projectRoot, apiName string, store config.Store, opts ...Option) *Manager {
	m := &Manager{
		projectRoot: projectRoot,
		apiName:     apiName,
		store:       store,
		log:         slog.Default(),
	}
	if m.store == nil {
		m.store = config.NewFileStore(m.APIDir())
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// APIDir returns the local API resource directory.
func (m *Manager) APIDir() string {
	return filepath.Join(m.projectRoot, amplifyDir, backendDir, apiCategory, m.apiName)
}

// CloudBackendStacksDir returns the directory of the last deployed nested stacks.
func (m *Manager) CloudBackendStacksDir() string {
	return filepath.Join(m.projectRoot, amplifyDir, cloudBackendDir, apiCategory, m.apiName, buildDir, template.StacksDir)
}

// LocalStacksDir returns the directory of the freshly built nested stacks.
func (m *Manager) LocalStacksDir() string {
	return filepath.Join(m.APIDir(), buildDir, template.StacksDir)
}

// SnapshotStackMappings records the stack of every resolver and function in
// the last deployed templates. Ids that are already mapped keep their stack.
// It returns the persisted mapping.
func (m *Manager) SnapshotStackMappings(ctx context.Context) (map[string]string, error) {
	cfg, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return copyMapping(cfg.StackMapping), nil
}

// AssignStackMappings snapshots the deployed mapping, then maps every resolver
// and function of the local build that is still unmapped to target.
func (m *Manager) AssignStackMappings(ctx context.Context, target string) (map[string]string, error) {
	if target == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "target stack name is required")
	}

	cfg, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	dir := m.LocalStacksDir()
	if err := requireDir(dir, CommandCompile); err != nil {
		return nil, err
	}
	local, err := extractMappings(ctx, dir)
	if err != nil {
		return nil, err
	}

	assigned := 0
	for _, e := range local {
		if _, ok := cfg.StackMapping[e.logicalID]; ok {
			continue
		}
		cfg.StackMapping[e.logicalID] = target
		assigned++
	}
	mappingsRecorded.WithLabelValues(sourceAssign).Add(float64(assigned))
	m.log.Debug("stack mappings assigned", "target", target, "assigned", assigned)

	if err := m.store.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return copyMapping(cfg.StackMapping), nil
}

func (m *Manager) snapshot(ctx context.Context) (*config.TransformConfig, error) {
	if m.apiName == "" {
		return nil, prerequisite("no API resource found in the project", CommandAddAPI)
	}

	dir := m.CloudBackendStacksDir()
	if err := requireDir(dir, CommandPull); err != nil {
		return nil, err
	}
	deployed, err := extractMappings(ctx, dir)
	if err != nil {
		return nil, err
	}

	cfg, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.StackMapping == nil {
		cfg.StackMapping = make(map[string]string)
	}

	added := 0
	for _, e := range deployed {
		if _, ok := cfg.StackMapping[e.logicalID]; ok {
			continue
		}
		cfg.StackMapping[e.logicalID] = e.stack
		added++
	}
	mappingsRecorded.WithLabelValues(sourceSnapshot).Add(float64(added))
	m.log.Debug("stack mappings snapshot", "api", m.apiName, "deployed", len(deployed), "added", added)
	return cfg, nil
}

type entry struct {
	logicalID string
	stack     string
}

// extractMappings returns the resolver and function ids of every template in
// dir with the base name of the file they are in. Files are read
// concurrently and merged in file name order, the first file naming an id
// wins.
func extractMappings(ctx context.Context, dir string) ([]entry, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list stack templates", err)
	}
	sort.Strings(files)

	perFile := make([][]entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.ReadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := template.ReadFile(f)
			if err != nil {
				return fmt.Errorf("failed to read stack template %s: %w", filepath.Base(f), err)
			}
			perFile[i] = entriesOf(t, strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read stack templates", err)
	}

	seen := make(map[string]bool)
	var out []entry
	for _, entries := range perFile {
		for _, e := range entries {
			if seen[e.logicalID] {
				continue
			}
			seen[e.logicalID] = true
			out = append(out, e)
		}
	}
	return out, nil
}

func entriesOf(t *template.Template, stack string) []entry {
	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []entry
	for _, id := range ids {
		r := t.Resources[id]
		if r == nil {
			continue
		}
		switch directive.KindOf(r.Type) {
		case directive.KindResolver, directive.KindFunctionConfiguration:
			out = append(out, entry{logicalID: id, stack: stack})
		}
	}
	return out
}

func requireDir(dir, command string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}
	return prerequisite(fmt.Sprintf("could not find %s", dir), command)
}

func prerequisite(msg, command string) error {
	return errors.NewWithContext(errors.ErrCodePrerequisite,
		fmt.Sprintf("%s, run '%s' first", msg, command),
		map[string]any{"command": command})
}

func copyMapping(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
