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

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/gqlstack/pkg/defaults"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/serializer"
	"github.com/NVIDIA/gqlstack/pkg/stack"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

// RootTemplateFileName is the file the root stack is written to.
const RootTemplateFileName = "cloudformation-template.json"

// Bundle directories.
const (
	ResolversDir         = "resolvers"
	PipelineFunctionsDir = "pipelineFunctions"
	FunctionsDir         = "functions"
)


// Writer lays DeploymentResources out on disk.
type Writer struct {
	checksums   bool
	dryRun      bool
	version     string
	concurrency int
	log         *slog.Logger
}

// Option is a functional option for configuring Writer instances.
type Option func(*Writer)

// WithChecksums sets whether checksums.txt is written.
func WithChecksums(enabled bool) Option {
	return func(w *Writer) {
		w.checksums = enabled
	}
}

// WithDryRun computes the bundle without writing it.
func WithDryRun(enabled bool) Option {
	return func(w *Writer) {
		w.dryRun = enabled
	}
}

// WithVersion sets the compiler version recorded in the Result.
func WithVersion(v string) Option {
	return func(w *Writer) {
		w.version = v
	}
}

// WithConcurrency limits the number of files written at once.
func WithConcurrency(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWriter returns a Writer that writes checksums by default.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		checksums:   true,
		concurrency: defaults.WriteConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type file struct {
	rel  string
	data []byte
}

// Write writes res into dir:
//
//	schema.graphql
//	resolvers/<file>
//	pipelineFunctions/<file>
//	functions/<name>
//	stacks/<StackName>.json
//	cloudformation-template.json
//
// Every file is written atomically. Asset names must be plain file names.
func (w *Writer) Write(ctx context.Context, res *stack.DeploymentResources, dir string) (*Result, error) {
	start := time.Now()
	if res == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "deployment resources are required")
	}
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory is required")
	}

	files, err := layout(res)
	if err != nil {
		return nil, err
	}

	result := NewResult(uuid.New().String(), dir)
	result.Version = w.version
	result.DryRun = w.dryRun
	for _, f := range files {
		result.AddFile(filepath.Join(dir, filepath.FromSlash(f.rel)), int64(len(f.data)))
	}

	if w.dryRun {
		result.Duration = time.Since(start)
		w.log.Info("bundle dry run", "run_id", result.RunID, "files", len(result.Files), "size_bytes", result.Size)
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, f := range files {
		path := result.Files[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return serializer.WriteToFile(path, f.data)
		})
	}
	if err := g.Wait(); err != nil {
		bundlesWritten.WithLabelValues(statusError).Inc()
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write bundle", err)
	}

	if w.checksums {
		if err := GenerateChecksums(ctx, dir, result.Files); err != nil {
			bundlesWritten.WithLabelValues(statusError).Inc()
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write checksums", err)
		}
		result.Checksums = true
	}

	result.Duration = time.Since(start)
	bundlesWritten.WithLabelValues(statusSuccess).Inc()
	bundleBytes.Add(float64(result.Size))
	bundleDuration.Observe(result.Duration.Seconds())

	w.log.Debug("bundle written",
		"run_id", result.RunID,
		"dir", dir,
		"files", len(result.Files),
		"size_bytes", result.Size,
	)
	return result, nil
}

// layout returns the files of res sorted by relative path.
func layout(res *stack.DeploymentResources) ([]file, error) {
	var files []file

	if res.Schema != "" {
		files = append(files, file{rel: stack.SchemaAsset, data: []byte(res.Schema)})
	}

	for _, group := range []struct {
		dir    string
		assets map[string]string
	}{
		{ResolversDir, res.Resolvers},
		{PipelineFunctionsDir, res.PipelineFunctions},
		{FunctionsDir, res.Functions},
	} {
		for name, content := range group.assets {
			if err := validName(name); err != nil {
				return nil, err
			}
			files = append(files, file{rel: group.dir + "/" + name, data: []byte(content)})
		}
	}

	for name, t := range res.Stacks {
		if err := validName(name); err != nil {
			return nil, err
		}
		data, err := serializer.Marshal(serializer.FormatJSON, t)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to encode stack %s", name), err)
		}
		files = append(files, file{rel: template.StacksDir + "/" + template.StackFileName(name), data: data})
	}

	if res.RootStack != nil {
		data, err := serializer.Marshal(serializer.FormatJSON, res.RootStack)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to encode root stack", err)
		}
		files = append(files, file{rel: RootTemplateFileName, data: data})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid bundle file name %q", name), map[string]any{"name": name})
	}
	return nil
}
