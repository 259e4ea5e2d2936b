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
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/serializer"
	"github.com/NVIDIA/gqlstack/pkg/stack"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

// DefaultInputFile is the construct description the schema transformer
// leaves in the API build directory.
const DefaultInputFile = "constructs.yaml"

// Input describes the construct tree produced by the schema transformer.
type Input struct {
	// Schema is the transformed GraphQL schema.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	Auth Auth `json:"auth,omitempty" yaml:"auth,omitempty"`

	// Stacks are the nested stacks created under the root, in order.
	Stacks []string `json:"stacks,omitempty" yaml:"stacks,omitempty"`

	// Parameters are declared per stack id. The root stack id is the root
	// stack name.
	Parameters map[string]map[string]template.Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Outputs are declared per stack id, like Parameters.
	Outputs map[string]map[string]template.Output `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	Resources []ResourceSpec `json:"resources,omitempty" yaml:"resources,omitempty"`

	// Assets are keyed by bundle path, e.g. resolvers/Query.getTodo.req.vtl.
	Assets map[string]string `json:"assets,omitempty" yaml:"assets,omitempty"`
}

// Auth lists the additional authorization modes of the API.
type Auth struct {
	IAM      bool `json:"iam,omitempty" yaml:"iam,omitempty"`
	UserPool bool `json:"userPool,omitempty" yaml:"userPool,omitempty"`
}

func (a Auth) config() stack.AuthConfig {
	return stack.AuthConfig{IAM: a.IAM, UserPool: a.UserPool}
}

// ResourceSpec places one resource in the tree.
type ResourceSpec struct {
	// Path is the construct path below the root, slash separated, ending in
	// the resource id, e.g. "Todo/TodoTable/Resource". A first segment that
	// names a stack places the resource in that stack.
	Path       string         `json:"path" yaml:"path"`
	LogicalID  string         `json:"logicalId,omitempty" yaml:"logicalId,omitempty"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	DependsOn  []string       `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Condition  string         `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// LoadInput reads an Input from a YAML or JSON file.
func LoadInput(path string) (*Input, error) {
	in, err := serializer.FromFile[Input](path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to load %s", filepath.Base(path)), err)
	}
	return in, nil
}

// Populate creates the stacks, parameters, resources and assets of in
// through the factories of m.
func (in *Input) Populate(m *stack.Manager) error {
	if in.Schema != "" {
		if err := m.AddAsset(stack.SchemaAsset, in.Schema); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid schema", err)
		}
	}

	for _, name := range in.Stacks {
		if _, err := m.CreateStack(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid stack", err)
		}
	}

	for _, stackID := range sortedKeys(in.Parameters) {
		params := in.Parameters[stackID]
		for _, name := range sortedKeys(params) {
			if err := m.AddParameter(stackID, name, params[name]); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid parameter", err)
			}
		}
	}

	for _, stackID := range sortedKeys(in.Outputs) {
		outputs := in.Outputs[stackID]
		for _, name := range sortedKeys(outputs) {
			o := outputs[name]
			m.AddOutput(stackID, name, &o)
		}
	}

	for i, spec := range in.Resources {
		if err := place(m, spec); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid resource", err,
				map[string]any{"index": i, "path": spec.Path})
		}
	}

	for _, name := range sortedKeys(in.Assets) {
		if err := m.AddAsset(name, in.Assets[name]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid asset", err)
		}
	}
	return nil
}

func place(m *stack.Manager, spec ResourceSpec) error {
	segs := strings.Split(strings.Trim(spec.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return fmt.Errorf("resource path is empty")
	}

	segs, logicalID, err := relocate(m, segs, spec)
	if err != nil {
		return err
	}

	parent := m.Root()
	for _, seg := range segs[:len(segs)-1] {
		if child, ok := parent.Child(seg); ok {
			parent = child
			continue
		}
		child, err := parent.AddChild(seg)
		if err != nil {
			return err
		}
		parent = child
	}

	r, err := parent.AddResource(segs[len(segs)-1], logicalID, spec.Type, spec.Properties)
	if err != nil {
		return err
	}
	r.DependsOn = append([]string(nil), spec.DependsOn...)
	r.Condition = spec.Condition
	return nil
}

// relocate moves resolvers and functions to the stack recorded in the stack
// mapping, so a resource deployed in one stack is never replaced by a copy in
// another. The path below the stack and the logical id are kept.
func relocate(m *stack.Manager, segs []string, spec ResourceSpec) ([]string, string, error) {
	if spec.Type != template.TypeResolver && spec.Type != template.TypeFunctionConfiguration {
		return segs, spec.LogicalID, nil
	}

	rootName := m.Root().ID()
	current, rel := rootName, segs
	if len(segs) > 1 {
		if _, ok := m.GetStack(segs[0]); ok {
			current, rel = segs[0], segs[1:]
		}
	}

	logicalID := spec.LogicalID
	if logicalID == "" {
		logicalID = relativeLogicalID(rel)
	}

	target := m.StackFor(logicalID, current)
	switch {
	case target == current:
		return segs, spec.LogicalID, nil
	case target == rootName:
		return rel, logicalID, nil
	}
	if _, ok := m.GetStack(target); !ok {
		if _, err := m.CreateStack(target); err != nil {
			return nil, "", fmt.Errorf("mapped stack %s for %s: %w", target, logicalID, err)
		}
	}
	return append([]string{target}, rel...), logicalID, nil
}

// relativeLogicalID derives the logical id of a resource from its path below
// the owning stack.
func relativeLogicalID(rel []string) string {
	var b strings.Builder
	for i, seg := range rel {
		if i == len(rel)-1 && seg == construct.WrapperID {
			continue
		}
		b.WriteString(construct.SanitizeID(seg))
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
