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
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gqlstack/pkg/logging"
	"github.com/NVIDIA/gqlstack/pkg/serializer"
	"github.com/NVIDIA/gqlstack/pkg/version"
)

const (
	name      = "gqlstack"
	envPrefix = "GQLSTACK_"
)

// Flags shared by several commands are built per command since parsed
// values are kept on the flag.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %s)", serializer.SupportedFormats()),
	}
}

func envVars(flag string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + flag)
}

// Execute runs the root command with signal aware context. It is called by
// main.main().
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Compose and override AppSync deployment stacks",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version.Current, version.Commit, version.Date),
		EnableShellCompletion: true,
		Description: `gqlstack turns a transformed GraphQL API into a CloudFormation deployment
bundle: nested stacks, resolvers, functions and the root template.

compile   - synthesize stacks, apply overrides and merge hand-authored files
mapping   - keep resolvers and functions in the stack they were deployed in
overrides - list the resource addresses an override can select`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(envPrefix+"LOG_LEVEL", logging.EnvLogLevel),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version.Current, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version.Current,
				"commit", version.Commit,
				"date", version.Date)
			return ctx, nil
		},
		Commands: []*cli.Command{
			compileCmd(),
			mappingCmd(),
			overridesCmd(),
		},
	}
}

// parseOutputFormat returns the validated --format value.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// writeOutput serializes v in the --format format to path, or to stdout
// when path is empty.
func writeOutput(ctx context.Context, cmd *cli.Command, path string, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}
	w := serializer.NewFileWriterOrStdout(format, path)
	defer func() {
		if cerr := w.Close(); cerr != nil {
			slog.Warn("failed to close output", "error", cerr)
		}
	}()
	return w.Serialize(ctx, v)
}
