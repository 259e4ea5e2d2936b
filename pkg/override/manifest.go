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
	"os"
	"sort"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/gqlstack/pkg/directive"
)

// manifestKey is the top-level key holding the override rules.
const manifestKey = "override"

// Rule is one override manifest entry. Select addresses tree entries; When,
// when set, must evaluate to true for the rule to apply to an entry.
type Rule struct {
	Select  string            `yaml:"select"`
	When    string            `yaml:"when,omitempty"`
	Set     map[string]any    `yaml:"set,omitempty"`
	SetExpr map[string]string `yaml:"setExpr,omitempty"`
	Delete  []string          `yaml:"delete,omitempty"`
}

// ManifestLoader loads YAML override manifests.
type ManifestLoader struct{}

// Load parses the manifest at path and compiles its expressions. A manifest
// without an override list yields a nil Func.
func (ManifestLoader) Load(ctx context.Context, path string) (Func, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest compiles manifest data into an override function. A missing
// or non-list override key is ignored.
func ParseManifest(data []byte) (Func, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse override manifest: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}

	var list *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == manifestKey {
			list = root.Content[i+1]
			break
		}
	}
	if list == nil || list.Kind != yaml.SequenceNode {
		return nil, nil
	}

	var rules []Rule
	if err := list.Decode(&rules); err != nil {
		return nil, fmt.Errorf("invalid override rules: %w", err)
	}

	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return compiled.apply, nil
}

type compiledRule struct {
	Rule
	when    cel.Program
	setExpr map[string]cel.Program
}

type ruleSet []compiledRule

func compileRules(rules []Rule) (ruleSet, error) {
	env, err := newEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}

	out := make(ruleSet, 0, len(rules))
	for i, r := range rules {
		if err := directive.ValidateSelector(r.Select); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		c := compiledRule{Rule: r, setExpr: make(map[string]cel.Program, len(r.SetExpr))}
		if r.When != "" {
			if c.when, err = compile(env, r.When); err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
		}
		for prop, expr := range r.SetExpr {
			prg, err := compile(env, expr)
			if err != nil {
				return nil, fmt.Errorf("rule %d %s: %w", i, prop, err)
			}
			c.setExpr[prop] = prg
		}
		out = append(out, c)
	}
	return out, nil
}

// apply records the edits of every rule in order.
func (rs ruleSet) apply(ctx context.Context, tree *directive.ResourceTree, project ProjectInfo) error {
	projectVar := map[string]any{
		"envName":     project.EnvName,
		"projectName": project.ProjectName,
	}

	for i, r := range rs {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := tree.Select(r.Select)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		for _, e := range entries {
			if err := r.applyTo(e.Handle, projectVar); err != nil {
				return fmt.Errorf("rule %d on %s: %w", i, e.Address, err)
			}
		}
	}
	return nil
}

func (r compiledRule) applyTo(h *directive.Handle, project map[string]any) error {
	vars := map[string]any{
		varResource: h.Value(),
		varProject:  project,
	}

	if r.when != nil {
		ok, err := evalBool(r.when, vars)
		if err != nil {
			return fmt.Errorf("when: %w", err)
		}
		if !ok {
			return nil
		}
	}

	for _, prop := range sortedKeys(r.Set) {
		h.Set(prop, r.Set[prop])
	}
	for _, prop := range sortedKeys(r.setExpr) {
		v, err := eval(r.setExpr[prop], vars)
		if err != nil {
			return fmt.Errorf("setExpr %s: %w", prop, err)
		}
		h.Set(prop, v)
	}
	for _, prop := range r.Delete {
		h.Delete(prop)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
