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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gqlstack/pkg/errors"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(WithAPIDir("api"))

	assert.True(t, cfg.IncludeChecksums())
	assert.False(t, cfg.DryRun())
	assert.Equal(t, "transformer-root-stack", cfg.RootStackName())
	assert.Equal(t, "dev", cfg.Version())
	assert.Equal(t, "api", cfg.OverrideDir())
	assert.Equal(t, filepath.Join("api", "build"), cfg.OutputDir())
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithAPIDir("api"),
		WithOutputDir("out"),
		WithOverrideDir("overrides"),
		WithProjectRoot("proj"),
		WithAPIName("todo"),
		WithProject("dev", "todoapp"),
		WithRootStackName("root"),
		WithRootStackName(""),
		WithDisableFunctionOverrides(true),
		WithDisableResolverOverrides(true),
		WithDisablePipelineFunctionOverrides(true),
		WithIncludeChecksums(false),
		WithDryRun(true),
		WithVersion("1.2.3"),
	)

	assert.Equal(t, "out", cfg.OutputDir())
	assert.Equal(t, "overrides", cfg.OverrideDir())
	assert.Equal(t, "proj", cfg.ProjectRoot())
	assert.Equal(t, "todo", cfg.APIName())
	assert.Equal(t, "dev", cfg.EnvName())
	assert.Equal(t, "todoapp", cfg.ProjectName())
	assert.Equal(t, "root", cfg.RootStackName(), "empty name keeps the previous value")
	assert.True(t, cfg.DisableFunctionOverrides())
	assert.True(t, cfg.DisableResolverOverrides())
	assert.True(t, cfg.DisablePipelineFunctionOverrides())
	assert.False(t, cfg.IncludeChecksums())
	assert.True(t, cfg.DryRun())
	assert.Equal(t, "1.2.3", cfg.Version())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "valid", config: NewConfig(WithAPIDir("api"))},
		{name: "missing api dir", config: NewConfig(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cfg.StackMapping, "missing file yields an empty mapping")

	cfg.Version = 5
	cfg.StackMapping["QuerygetTodoResolver"] = "Todo"
	require.NoError(t, store.Save(ctx, cfg))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Version)
	assert.Equal(t, map[string]string{"QuerygetTodoResolver": "Todo"}, got.StackMapping)
}

func TestFileStore_PreservesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(dir)
	require.NoError(t, os.WriteFile(store.Path(),
		[]byte(`{"Version":5,"ElasticsearchWarning":true,"ResolverConfig":{"project":{"ConflictHandler":"AUTOMERGE"}}}`), 0o600))

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	cfg.StackMapping["A"] = "Todo"
	require.NoError(t, store.Save(ctx, cfg))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ElasticsearchWarning": true`)
	assert.Contains(t, string(data), `"ConflictHandler": "AUTOMERGE"`)
	assert.Contains(t, string(data), `"StackMapping"`)
}

func TestFileStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte("{"), 0o600))

	_, err := store.Load(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	assert.True(t, errors.HasCode(store.Save(ctx, nil), errors.ErrCodeInvalidRequest))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Load(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
