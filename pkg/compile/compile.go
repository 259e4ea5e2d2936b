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

package compile

import (
	"context"
	"log/slog"
	"time"

	"github.com/NVIDIA/gqlstack/pkg/bundle"
	"github.com/NVIDIA/gqlstack/pkg/config"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/merge"
	"github.com/NVIDIA/gqlstack/pkg/override"
	"github.com/NVIDIA/gqlstack/pkg/stack"
)

// Output is the result of a compile run.
type Output struct {
	// Resources is the merged deployment bundle content.
	Resources *stack.DeploymentResources

	// Result describes the files written.
	Result *bundle.Result

	// OverrideDiff is the template diff produced by the override, if any.
	OverrideDiff string
}

// Compiler runs the compile phases against one API.
type Compiler struct {
	store config.Store
	log   *slog.Logger
}

// Option is a functional option for configuring Compiler instances.
type Option func(*Compiler)

// WithStore sets the transform config store. Defaults to a FileStore in the
// API directory.
func WithStore(s config.Store) Option {
	return func(c *Compiler) {
		c.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCompiler creates a Compiler with the given options.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run populates the stack manager from in, applies the file based override,
// synthesizes, merges the user's hand-authored artifacts over the result and
// writes the bundle to the configured output directory.
func (c *Compiler) Run(ctx context.Context, cfg *config.Config, in *Input) (out *Output, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		compileRuns.WithLabelValues(status).Inc()
		compileDuration.Observe(time.Since(start).Seconds())
	}()

	if cfg == nil || in == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "config and input are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid config", err)
	}

	store := c.store
	if store == nil {
		store = config.NewFileStore(cfg.APIDir())
	}
	transformCfg, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	m := stack.NewManager(
		stack.WithRootStackName(cfg.RootStackName()),
		stack.WithAPIName(cfg.APIName()),
		stack.WithEnvName(cfg.EnvName()),
		stack.WithAuthConfig(in.Auth.config()),
		stack.WithStackMapping(transformCfg.StackMapping),
		stack.WithLogger(c.log),
	)
	if err := in.Populate(m); err != nil {
		return nil, err
	}

	exec := override.NewExecutor(
		override.WithProject(override.ProjectInfo{
			EnvName:     cfg.EnvName(),
			ProjectName: cfg.ProjectName(),
		}),
		override.WithLogger(c.log),
	)
	synthesized, err := m.Synthesize(ctx, exec.Config(cfg.OverrideDir()))
	if err != nil {
		return nil, err
	}

	user, err := merge.LoadUserConfig(ctx, cfg.APIDir())
	if err != nil {
		return nil, err
	}
	merged, err := merge.MergeUserConfigWithTransformOutput(user, synthesized, merge.Options{
		DisableFunctionOverrides:         cfg.DisableFunctionOverrides(),
		DisableResolverOverrides:         cfg.DisableResolverOverrides(),
		DisablePipelineFunctionOverrides: cfg.DisablePipelineFunctionOverrides(),
	})
	if err != nil {
		return nil, err
	}
	merged.StackMapping = transformCfg.StackMapping

	w := bundle.NewWriter(
		bundle.WithChecksums(cfg.IncludeChecksums()),
		bundle.WithDryRun(cfg.DryRun()),
		bundle.WithVersion(cfg.Version()),
		bundle.WithLogger(c.log),
	)
	res, err := w.Write(ctx, merged, cfg.OutputDir())
	if err != nil {
		return nil, err
	}

	c.log.Info("compile complete",
		"api", cfg.APIName(),
		"stacks", len(merged.Stacks),
		"userOverrides", len(merged.UserOverriddenSlots),
		"files", len(res.Files),
		"duration", time.Since(start))

	return &Output{
		Resources:    merged,
		Result:       res,
		OverrideDiff: m.OverrideDiff(),
	}, nil
}
