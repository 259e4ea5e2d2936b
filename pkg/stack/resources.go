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

package stack

import (
	"fmt"
	"maps"
	"sort"

	"github.com/NVIDIA/gqlstack/pkg/template"
)

// Asset naming convention shared by the transform phases and the bundle writer.
const (
	ResolversPrefix         = "resolvers/"
	PipelineFunctionsPrefix = "pipelineFunctions/"
	FunctionsPrefix         = "functions/"
	SchemaAsset             = "schema.graphql"
)

// DeploymentResources is the assembled output of one composition run.
type DeploymentResources struct {
	Schema              string                        `json:"schema" yaml:"schema"`
	Resolvers           map[string]string             `json:"resolvers" yaml:"resolvers"`
	PipelineFunctions   map[string]string             `json:"pipelineFunctions" yaml:"pipelineFunctions"`
	Functions           map[string]string             `json:"functions" yaml:"functions"`
	Stacks              map[string]*template.Template `json:"stacks" yaml:"stacks"`
	RootStack           *template.Template            `json:"rootStack" yaml:"rootStack"`
	StackMapping        map[string]string             `json:"stackMapping" yaml:"stackMapping"`
	UserOverriddenSlots []string                      `json:"userOverriddenSlots" yaml:"userOverriddenSlots"`
}

// NewDeploymentResources returns resources with every map allocated and an
// empty root stack.
func NewDeploymentResources() *DeploymentResources {
	return &DeploymentResources{
		Resolvers:         make(map[string]string),
		PipelineFunctions: make(map[string]string),
		Functions:         make(map[string]string),
		Stacks:            make(map[string]*template.Template),
		RootStack:         template.New(""),
		StackMapping:      make(map[string]string),
	}
}

// Clone deep copies the resources.
func (d *DeploymentResources) Clone() (*DeploymentResources, error) {
	if d == nil {
		return nil, nil
	}
	out := &DeploymentResources{
		Schema:              d.Schema,
		Resolvers:           cloneStrings(d.Resolvers),
		PipelineFunctions:   cloneStrings(d.PipelineFunctions),
		Functions:           cloneStrings(d.Functions),
		Stacks:              make(map[string]*template.Template, len(d.Stacks)),
		StackMapping:        cloneStrings(d.StackMapping),
		UserOverriddenSlots: append([]string(nil), d.UserOverriddenSlots...),
	}
	for name, t := range d.Stacks {
		cp, err := t.Clone()
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", name, err)
		}
		out.Stacks[name] = cp
	}
	root, err := d.RootStack.Clone()
	if err != nil {
		return nil, fmt.Errorf("root stack: %w", err)
	}
	if root == nil {
		root = template.New("")
	}
	out.RootStack = root
	return out, nil
}

// StackNames returns the sorted nested stack names.
func (d *DeploymentResources) StackNames() []string {
	names := make([]string, 0, len(d.Stacks))
	for name := range d.Stacks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}
