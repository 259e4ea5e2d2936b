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

package override

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/directive"
	"github.com/NVIDIA/gqlstack/pkg/errors"
)

const (
	// BuildDir is the directory under the override directory holding the
	// compiled override artifact.
	BuildDir = "build"

	// ArtifactName is the file name of the override artifact.
	ArtifactName = "override.yaml"

	// Resolution is the remediation hint attached to every override failure.
	Resolution = "There may be errors in your overrides file. If so, fix the errors and try again."
)

// ProjectInfo identifies the project and environment an override runs for.
type ProjectInfo struct {
	EnvName     string `json:"envName" yaml:"envName"`
	ProjectName string `json:"projectName" yaml:"projectName"`
}

// Func is a loaded override. It reads the tree and records edits through
// its handles; it must not retain the tree after returning.
type Func func(ctx context.Context, tree *directive.ResourceTree, project ProjectInfo) error

// Loader loads the override artifact at path. A nil Func with a nil error
// means the artifact exports no override and is ignored.
type Loader interface {
	Load(ctx context.Context, path string) (Func, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (Func, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) (Func, error) {
	return f(ctx, path)
}

// Config tells the stack manager whether and how to apply overrides before
// final synthesis.
type Config struct {
	Enabled bool
	Apply   func(ctx context.Context, scope *construct.Node) (*directive.ResourceTree, error)
}

// Executor runs override artifacts against a construct tree.
type Executor struct {
	loader  Loader
	project ProjectInfo
	log     *slog.Logger
	cache   *artifactCache
}

// Option is a functional option for configuring Executor instances.
type Option func(*Executor)

// WithLoader sets the artifact loader. Defaults to the manifest loader.
func WithLoader(l Loader) Option {
	return func(e *Executor) {
		if l != nil {
			e.loader = l
		}
	}
}

// WithProject sets the project identity passed to overrides.
func WithProject(p ProjectInfo) Option {
	return func(e *Executor) {
		e.project = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		loader: ManifestLoader{},
		log:    slog.Default(),
		cache:  defaultCache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultOverrideDir returns the override directory used when none is given.
func DefaultOverrideDir(apiResourceDir string) string {
	return apiResourceDir
}

// ArtifactPath returns the location of the override artifact under dir.
func ArtifactPath(overrideDir string) string {
	return filepath.Join(overrideDir, BuildDir, ArtifactName)
}

// Config returns an override configuration bound to overrideDir. Overrides
// are enabled only when the artifact exists.
func (e *Executor) Config(overrideDir string) *Config {
	_, err := os.Stat(ArtifactPath(overrideDir))
	return &Config{
		Enabled: err == nil,
		Apply: func(ctx context.Context, scope *construct.Node) (*directive.ResourceTree, error) {
			return e.ApplyFileBasedOverride(ctx, scope, overrideDir)
		},
	}
}

// ApplyFileBasedOverride loads the override artifact from overrideDir and
// runs it against the resources under scope. When no artifact exists, even
// when overrideDir itself is missing, it returns an empty tree and no error.
//
// The override sees snapshots; the edits it records are applied to the live
// resources once it returns. Any load, execution or edit failure is returned
// as a single INVALID_OVERRIDE error.
func (e *Executor) ApplyFileBasedOverride(ctx context.Context, scope *construct.Node, overrideDir string) (*directive.ResourceTree, error) {
	path := ArtifactPath(overrideDir)
	if _, err := os.Stat(path); err != nil {
		e.log.Debug("no override artifact", "path", path)
		return &directive.ResourceTree{}, nil
	}

	start := time.Now()
	defer func() {
		overrideDuration.Observe(time.Since(start).Seconds())
	}()

	edits := &directive.EditLog{}
	tree := directive.Build(scope, edits, e.log)

	fn, err := e.load(ctx, path)
	if err != nil {
		return nil, e.fail(path, err)
	}
	if fn == nil {
		e.log.Debug("override artifact exports no override", "path", path)
		overrideExecutions.WithLabelValues(statusSkipped).Inc()
		return tree, nil
	}

	if err := run(ctx, fn, tree, e.project); err != nil {
		return nil, e.fail(path, err)
	}

	n, err := directive.ApplyEdits(scope, edits.Edits())
	if err != nil {
		return nil, e.fail(path, err)
	}

	overrideExecutions.WithLabelValues(statusSuccess).Inc()
	overrideEditsApplied.Add(float64(n))
	e.log.Info("overrides applied",
		"path", path,
		"edits", n,
		"duration", time.Since(start))
	return tree, nil
}

// load returns the override at path, reusing the cached one while the
// artifact content is unchanged.
func (e *Executor) load(ctx context.Context, path string) (Func, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	digest := contentDigest(data)
	if fn, ok := e.cache.get(path, digest); ok {
		e.log.Debug("reusing loaded override artifact", "path", path)
		return fn, nil
	}

	fn, err := e.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	e.cache.put(path, digest, fn)
	return fn, nil
}

func (e *Executor) fail(path string, cause error) error {
	overrideExecutions.WithLabelValues(statusError).Inc()
	e.log.Error("override failed", "path", path, "error", cause)
	return errors.WrapWithContext(errors.ErrCodeInvalidOverride, "executing overrides failed", cause, map[string]any{
		"details":    cause.Error(),
		"resolution": Resolution,
		"path":       path,
	})
}

// run invokes fn, turning a panic into an error.
func run(ctx context.Context, fn Func, tree *directive.ResourceTree, project ProjectInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(ctx, tree, project)
}
