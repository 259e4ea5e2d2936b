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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/gqlstack/pkg/compile"
	"github.com/NVIDIA/gqlstack/pkg/directive"
	"github.com/NVIDIA/gqlstack/pkg/stack"
)

// overrideEntry is one selectable resource of the override tree.
type overrideEntry struct {
	Address   string `json:"address" yaml:"address"`
	LogicalID string `json:"logicalId" yaml:"logicalId"`
	Type      string `json:"type" yaml:"type"`
	Kind      string `json:"kind" yaml:"kind"`
	Path      string `json:"path" yaml:"path"`
}

// listOverrideEntries builds the override tree of in and returns the
// entries matching selector, or all entries when selector is empty.
func listOverrideEntries(in *compile.Input, selector string) ([]overrideEntry, error) {
	m := stack.NewManager()
	if err := in.Populate(m); err != nil {
		return nil, err
	}

	tree := directive.Build(m.Root(), &directive.EditLog{}, slog.Default())
	entries := tree.Entries()
	if selector != "" {
		var err error
		if entries, err = tree.Select(selector); err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
		}
	}

	out := make([]overrideEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, overrideEntry{
			Address:   e.Address,
			LogicalID: e.Handle.LogicalID(),
			Type:      e.Handle.Type(),
			Kind:      string(e.Handle.Kind()),
			Path:      e.Handle.Path().String(),
		})
	}
	return out, nil
}

func overridesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "overrides",
		EnableShellCompletion: true,
		Usage:                 "Inspect the resources an override can select",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "List the override tree addresses of a transformed API",
				Description: `Lists every resource of the override tree with its address, the value an
override manifest uses in 'select'. Addresses may be filtered with a selector:

  gqlstack overrides show --input build/constructs.yaml --select 'models.*.modelDDBTable'`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Construct description of the transformed API",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "select",
						Aliases: []string{"s"},
						Usage:   "Only list addresses matching this selector",
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					in, err := compile.LoadInput(cmd.String("input"))
					if err != nil {
						return err
					}
					entries, err := listOverrideEntries(in, cmd.String("select"))
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, cmd.String("output"), newOverrideTreeDocument(cmd.String("select"), entries))
				},
			},
		},
	}
}
