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
	"fmt"
	"path/filepath"
)

// DefaultRootStackName is the id of the root stack unless configured.
const DefaultRootStackName = "transformer-root-stack"

// Config holds the settings of one compile run. Values are read through
// getters; use NewConfig with options to build one.
type Config struct {
	// apiDir is the API resource directory holding hand-authored artifacts.
	apiDir string

	// outputDir is where the deployment bundle is written. Defaults to
	// <apiDir>/build.
	outputDir string

	// overrideDir holds build/override.yaml. Defaults to apiDir.
	overrideDir string

	// projectRoot is the directory containing the amplify/ folder.
	projectRoot string

	// apiName is the name of the API resource.
	apiName string

	// envName and projectName are exposed to overrides.
	envName     string
	projectName string

	// rootStackName is the id of the composition root.
	rootStackName string

	disableFunctionOverrides         bool
	disableResolverOverrides         bool
	disablePipelineFunctionOverrides bool

	// includeChecksums writes checksums.txt next to the bundle.
	includeChecksums bool

	// dryRun computes the bundle without writing it.
	dryRun bool

	// version is stamped into the bundle metadata.
	version string
}

// APIDir returns the API resource directory.
func (c *Config) APIDir() string {
	return c.apiDir
}

// OutputDir returns the bundle directory, <apiDir>/build unless set.
func (c *Config) OutputDir() string {
	if c.outputDir == "" && c.apiDir != "" {
		return filepath.Join(c.apiDir, "build")
	}
	return c.outputDir
}

// OverrideDir returns the override directory, the API directory unless set.
func (c *Config) OverrideDir() string {
	if c.overrideDir == "" {
		return c.apiDir
	}
	return c.overrideDir
}

// ProjectRoot returns the project root directory.
func (c *Config) ProjectRoot() string {
	return c.projectRoot
}

// APIName returns the API resource name.
func (c *Config) APIName() string {
	return c.apiName
}

// EnvName returns the environment name.
func (c *Config) EnvName() string {
	return c.envName
}

// ProjectName returns the project name.
func (c *Config) ProjectName() string {
	return c.projectName
}

// RootStackName returns the id of the composition root.
func (c *Config) RootStackName() string {
	return c.rootStackName
}

// DisableFunctionOverrides reports whether user functions are ignored.
func (c *Config) DisableFunctionOverrides() bool {
	return c.disableFunctionOverrides
}

// DisableResolverOverrides reports whether user resolvers are ignored.
func (c *Config) DisableResolverOverrides() bool {
	return c.disableResolverOverrides
}

// DisablePipelineFunctionOverrides reports whether user pipeline functions are ignored.
func (c *Config) DisablePipelineFunctionOverrides() bool {
	return c.disablePipelineFunctionOverrides
}

// IncludeChecksums returns the include checksums setting.
func (c *Config) IncludeChecksums() bool {
	return c.includeChecksums
}

// DryRun returns the dry run setting.
func (c *Config) DryRun() bool {
	return c.dryRun
}

// Version returns the compiler version.
func (c *Config) Version() string {
	return c.version
}

// Validate checks if the Config has valid settings.
func (c *Config) Validate() error {
	if c.apiDir == "" {
		return fmt.Errorf("api directory cannot be empty")
	}
	if c.rootStackName == "" {
		return fmt.Errorf("root stack name cannot be empty")
	}
	return nil
}

type Option func(*Config)

// WithAPIDir sets the API resource directory.
func WithAPIDir(dir string) Option {
	return func(c *Config) {
		c.apiDir = dir
	}
}

// WithOutputDir sets the bundle directory.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.outputDir = dir
	}
}

// WithOverrideDir sets the directory holding build/override.yaml.
func WithOverrideDir(dir string) Option {
	return func(c *Config) {
		c.overrideDir = dir
	}
}

// WithProjectRoot sets the project root used for stack mapping.
func WithProjectRoot(dir string) Option {
	return func(c *Config) {
		c.projectRoot = dir
	}
}

// WithAPIName sets the API resource name.
func WithAPIName(name string) Option {
	return func(c *Config) {
		c.apiName = name
	}
}

// WithProject sets the environment and project names.
func WithProject(envName, projectName string) Option {
	return func(c *Config) {
		c.envName = envName
		c.projectName = projectName
	}
}

// WithRootStackName sets the id of the composition root.
func WithRootStackName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.rootStackName = name
		}
	}
}

// WithDisableFunctionOverrides ignores hand-authored functions.
func WithDisableFunctionOverrides(disabled bool) Option {
	return func(c *Config) {
		c.disableFunctionOverrides = disabled
	}
}

// WithDisableResolverOverrides ignores hand-authored resolvers.
func WithDisableResolverOverrides(disabled bool) Option {
	return func(c *Config) {
		c.disableResolverOverrides = disabled
	}
}

// WithDisablePipelineFunctionOverrides ignores hand-authored pipeline functions.
func WithDisablePipelineFunctionOverrides(disabled bool) Option {
	return func(c *Config) {
		c.disablePipelineFunctionOverrides = disabled
	}
}

// WithIncludeChecksums sets whether a checksums file is written with the bundle.
func WithIncludeChecksums(enabled bool) Option {
	return func(c *Config) {
		c.includeChecksums = enabled
	}
}

// WithDryRun sets whether the bundle is written.
func WithDryRun(enabled bool) Option {
	return func(c *Config) {
		c.dryRun = enabled
	}
}

// WithVersion sets the compiler version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.version = version
	}
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		includeChecksums: true,
		rootStackName:    DefaultRootStackName,
		version:          "dev",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
