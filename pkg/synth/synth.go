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

package synth

import (
	"context"
	"fmt"
	"sort"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

// Input is everything a synthesizer turns into templates.
type Input struct {
	// Root is the composition root.
	Root *construct.Node

	// Parameters and Outputs are declared per stack id.
	Parameters map[string]map[string]template.Parameter
	Outputs    map[string]map[string]*template.Output

	// Description is set on every template.
	Description string
}

// Synthesizer renders a construct tree into one template per stack, keyed
// by stack id. The root stack is keyed by the root id.
type Synthesizer interface {
	Synthesize(ctx context.Context, in Input) (map[string]*template.Template, error)
}

// Default is the reference synthesizer.
type Default struct{}

// Synthesize walks every stack under in.Root. Resource properties are deep
// copied, so later edits to the tree do not alter returned templates.
func (Default) Synthesize(ctx context.Context, in Input) (map[string]*template.Template, error) {
	if in.Root == nil {
		return nil, fmt.Errorf("synthesis requires a composition root")
	}

	out := make(map[string]*template.Template)
	for _, s := range construct.Stacks(in.Root) {
		t := template.New(in.Description)
		for name, p := range in.Parameters[s.ID()] {
			t.Parameters[name] = p
		}
		for name, o := range in.Outputs[s.ID()] {
			t.Outputs[name] = o
		}
		out[s.ID()] = t
	}

	err := construct.Walk(in.Root, func(n *construct.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := n.Resource()
		if r == nil {
			return nil
		}
		owner := n.Stack()
		t := out[owner.ID()]
		if _, dup := t.Resources[r.LogicalID]; dup {
			return fmt.Errorf("stack %s: duplicate logical id %s at %s", owner.ID(), r.LogicalID, r.Path)
		}
		t.Resources[r.LogicalID] = toTemplateResource(r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, s := range construct.Stacks(in.Root) {
		if s.IsRoot() {
			continue
		}
		wireNestedStack(s, out[s.Stack().ID()], out[s.ID()])
	}
	return out, nil
}

// wireNestedStack fills the TemplateURL and parameters of the resource that
// deploys s from its parent, unless they were set explicitly.
func wireNestedStack(s *construct.Node, parent, child *template.Template) {
	sr := s.StackResource()
	if sr == nil {
		return
	}
	res, ok := parent.Resources[sr.LogicalID]
	if !ok {
		return
	}
	if res.Properties == nil {
		res.Properties = make(map[string]any)
	}
	if _, set := res.Properties["TemplateURL"]; !set {
		res.Properties["TemplateURL"] = template.StackTemplateURL(template.StackFileName(s.ID()))
	}
	if _, set := res.Properties["Parameters"]; set {
		return
	}

	params := make(map[string]any)
	for _, name := range child.ParameterNames() {
		if _, shared := parent.Parameters[name]; shared {
			params[name] = template.Ref(name)
		}
	}
	if len(params) > 0 {
		res.Properties["Parameters"] = params
	}
}

func toTemplateResource(r *construct.Resource) *template.Resource {
	props := copyMap(r.Properties)
	var dependsOn []string
	if len(r.DependsOn) > 0 {
		dependsOn = append(dependsOn, r.DependsOn...)
		sort.Strings(dependsOn)
	}
	return &template.Resource{
		Type:       r.Type,
		Properties: props,
		DependsOn:  dependsOn,
		Condition:  r.Condition,
	}
}

func copyMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
