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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gqlstack/pkg/mapping"
)

func projectRootFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "project-root",
		Aliases: []string{"p"},
		Value:   ".",
		Usage:   "Project directory containing the amplify/ folder",
		Sources: envVars("PROJECT_ROOT"),
	}
}

func apiNameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "api-name",
		Aliases: []string{"a"},
		Usage:   "Name of the API",
		Sources: envVars("API_NAME"),
	}
}

func newMappingManager(cmd *cli.Command) *mapping.Manager {
	return mapping.NewManager(cmd.String("project-root"), cmd.String("api-name"), nil)
}

func mappingCmd() *cli.Command {
	return &cli.Command{
		Name:                  "mapping",
		EnableShellCompletion: true,
		Usage:                 "Manage the stack mapping of resolvers and functions",
		Description: `The stack mapping in transform.conf.json pins resolvers and functions to the
stack they were deployed in, so that moving them between nested stacks does
not break a deployment.

snapshot records the stacks of the last deployment (requires 'amplify pull').
assign additionally maps every resolver and function of the current build
that has no stack yet to --target (requires 'amplify api gql-compile').`,
		Commands: []*cli.Command{
			{
				Name:  "snapshot",
				Usage: "Record the deployed stack of every resolver and function",
				Flags: []cli.Flag{projectRootFlag(), apiNameFlag(), outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					mappings, err := newMappingManager(cmd).SnapshotStackMappings(ctx)
					if err != nil {
						return fmt.Errorf("snapshot failed: %w", err)
					}
					return writeOutput(ctx, cmd, cmd.String("output"), newStackMappingDocument(cmd.String("api-name"), mappings))
				},
			},
			{
				Name:  "assign",
				Usage: "Map unmapped resolvers and functions to a target stack",
				Flags: []cli.Flag{
					projectRootFlag(),
					apiNameFlag(),
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Stack that receives every unmapped resolver and function",
						Required: true,
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					mappings, err := newMappingManager(cmd).AssignStackMappings(ctx, cmd.String("target"))
					if err != nil {
						return fmt.Errorf("assign failed: %w", err)
					}
					return writeOutput(ctx, cmd, cmd.String("output"), newStackMappingDocument(cmd.String("api-name"), mappings))
				},
			},
		},
	}
}
