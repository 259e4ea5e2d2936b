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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gqlstack/pkg/bundle"
	"github.com/NVIDIA/gqlstack/pkg/compile"
	"github.com/NVIDIA/gqlstack/pkg/config"
	"github.com/NVIDIA/gqlstack/pkg/defaults"
	"github.com/NVIDIA/gqlstack/pkg/oci"
	"github.com/NVIDIA/gqlstack/pkg/version"
)

const (
	defaultOCITag = "latest"
	ociStoreExt   = ".oci"
)

// compileCmdOptions holds parsed options for the compile command.
type compileCmdOptions struct {
	config    *config.Config
	inputPath string
	reference *oci.Reference
}

// parseCompileCmdOptions parses and validates command options.
func parseCompileCmdOptions(cmd *cli.Command) (*compileCmdOptions, error) {
	apiDir := cmd.String("api-dir")
	if apiDir == "" {
		return nil, fmt.Errorf("--api-dir is required")
	}

	cfg := config.NewConfig(
		config.WithAPIDir(apiDir),
		config.WithOutputDir(cmd.String("output-dir")),
		config.WithOverrideDir(cmd.String("override-dir")),
		config.WithAPIName(cmd.String("api-name")),
		config.WithProject(cmd.String("env"), cmd.String("project")),
		config.WithRootStackName(cmd.String("root-stack")),
		config.WithDisableFunctionOverrides(cmd.Bool("disable-function-overrides")),
		config.WithDisableResolverOverrides(cmd.Bool("disable-resolver-overrides")),
		config.WithDisablePipelineFunctionOverrides(cmd.Bool("disable-pipeline-function-overrides")),
		config.WithIncludeChecksums(!cmd.Bool("no-checksums")),
		config.WithDryRun(cmd.Bool("dry-run")),
		config.WithVersion(version.Current),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts := &compileCmdOptions{
		config:    cfg,
		inputPath: cmd.String("input"),
	}
	if opts.inputPath == "" {
		opts.inputPath = filepath.Join(apiDir, "build", compile.DefaultInputFile)
	}

	if target := cmd.String("package"); target != "" {
		ref, err := oci.ParseReference(target)
		if err != nil {
			return nil, err
		}
		if ref.Tag == "" {
			ref = ref.WithTag(version.TagOrDefault(version.Current, defaultOCITag))
		}
		opts.reference = ref
	}
	return opts, nil
}

func compileCmd() *cli.Command {
	return &cli.Command{
		Name:                  "compile",
		EnableShellCompletion: true,
		Usage:                 "Compile a transformed API into a deployment bundle",
		Description: `Compiles the construct description of a transformed API into a deployment
bundle. The bundle contains:

  - cloudformation-template.json: the root stack
  - stacks/<name>.json: one template per nested stack, custom stacks included
  - resolvers/, pipelineFunctions/, functions/: resolver templates and function code
  - schema.graphql: the transformed schema
  - checksums.txt: SHA256 of every file (unless --no-checksums)

Before synthesis the override at <override-dir>/build/override.yaml runs
against the resource tree. Files under <api-dir>/resolvers, functions and
stacks replace generated ones with the same name.

# Examples

Compile into <api-dir>/build:
  gqlstack compile --api-dir amplify/backend/api/todo --env dev

Package the bundle as an OCI image layout next to the output:
  gqlstack compile --api-dir amplify/backend/api/todo --package oci://ghcr.io/acme/todo-stack:v1.0.0`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "api-dir",
				Aliases:  []string{"d"},
				Usage:    "API resource directory holding hand-authored resolvers, functions and stacks",
				Sources:  envVars("API_DIR"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   fmt.Sprintf("Construct description (default: <api-dir>/build/%s)", compile.DefaultInputFile),
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Bundle output directory (default: <api-dir>/build)",
			},
			&cli.StringFlag{
				Name:  "override-dir",
				Usage: "Directory holding build/override.yaml (default: <api-dir>)",
			},
			&cli.StringFlag{
				Name:    "api-name",
				Usage:   "Name of the API",
				Sources: envVars("API_NAME"),
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Value:   "NONE",
				Usage:   "Environment name passed to overrides and used as the env parameter default",
				Sources: envVars("ENV"),
			},
			&cli.StringFlag{
				Name:    "project",
				Usage:   "Project name passed to overrides",
				Sources: envVars("PROJECT"),
			},
			&cli.StringFlag{
				Name:  "root-stack",
				Value: config.DefaultRootStackName,
				Usage: "Id of the root stack",
			},
			&cli.BoolFlag{
				Name:  "disable-function-overrides",
				Usage: "Ignore hand-authored files under functions/",
			},
			&cli.BoolFlag{
				Name:  "disable-resolver-overrides",
				Usage: "Ignore hand-authored files under resolvers/",
			},
			&cli.BoolFlag{
				Name:  "disable-pipeline-function-overrides",
				Usage: "Ignore hand-authored files under pipelineFunctions/",
			},
			&cli.BoolFlag{
				Name:  "no-checksums",
				Usage: "Do not write checksums.txt",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compile without writing the bundle",
			},
			&cli.StringFlag{
				Name: "package",
				Usage: fmt.Sprintf(`Package the bundle into an OCI image layout at <output-dir>%s
	(format: oci://registry/repository[:tag], default tag: version or %s)`, ociStoreExt, defaultOCITag),
			},
			&cli.StringFlag{
				Name:  "result",
				Usage: "Write the compile result document to this file",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := parseCompileCmdOptions(cmd)
			if err != nil {
				return err
			}

			in, err := compile.LoadInput(opts.inputPath)
			if err != nil {
				return err
			}

			out, err := compile.NewCompiler().Run(ctx, opts.config, in)
			if err != nil {
				return fmt.Errorf("compile failed: %w", err)
			}

			if opts.reference != nil {
				if err := packageBundle(ctx, opts, out.Result); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.Root().Writer, out.Result.Summary())
			if path := cmd.String("result"); path != "" {
				return writeOutput(ctx, cmd, path, newCompileResultDocument(opts.config, out))
			}
			return nil
		},
	}
}

// packageBundle packs the written bundle into <output-dir>.oci and records
// the digest on res. Dry runs write nothing to package.
func packageBundle(ctx context.Context, opts *compileCmdOptions, res *bundle.Result) error {
	if opts.config.DryRun() {
		slog.Info("dry run, skipping packaging", "reference", opts.reference.String())
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.PackageTimeout)
	defer cancel()

	outDir := opts.config.OutputDir()
	pkg, err := oci.Package(ctx, oci.PackageOptions{
		SourceDir: outDir,
		StoreDir:  strings.TrimRight(outDir, string(filepath.Separator)) + ociStoreExt,
		Reference: opts.reference,
		Version:   version.Current,
	})
	if err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}
	res.SetOCIMetadata(pkg.Digest, pkg.Reference)
	slog.Info("bundle packaged", "reference", pkg.Reference, "digest", pkg.Digest, "store", pkg.StorePath)
	return nil
}
