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

package merge

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/stack"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

const (
	// readmeKey is shipped in the resolvers directory and is never a resolver.
	readmeKey = "README.md"

	// ParamAppSyncAPIID is shared with every custom stack.
	ParamAppSyncAPIID = "AppSyncApiId"

	// GraphQLAPILogicalID is the logical id of the generated API.
	GraphQLAPILogicalID = "GraphQLAPI"
)

// UserConfig holds the artifacts a customer authored by hand.
type UserConfig struct {
	Functions         map[string]string             `json:"functions,omitempty" yaml:"functions,omitempty"`
	Resolvers         map[string]string             `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
	PipelineFunctions map[string]string             `json:"pipelineFunctions,omitempty" yaml:"pipelineFunctions,omitempty"`
	Stacks            map[string]*template.Template `json:"stacks,omitempty" yaml:"stacks,omitempty"`
}

// Options disable individual merges.
type Options struct {
	DisableFunctionOverrides         bool
	DisableResolverOverrides         bool
	DisablePipelineFunctionOverrides bool
}

// MergeUserConfigWithTransformOutput returns out with the user's artifacts
// merged over it. User entries win on key collision. README.md is never
// taken as a resolver, and pipeline functions, a legacy alias, are merged
// into the resolvers. Custom stacks are wired into the root stack by
// OverrideUserDefinedStacks.
//
// out is not modified; on error nothing is returned.
func MergeUserConfigWithTransformOutput(user *UserConfig, out *stack.DeploymentResources, opts Options) (*stack.DeploymentResources, error) {
	if out == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "transform output is required")
	}
	if user == nil {
		user = &UserConfig{}
	}

	merged, err := out.Clone()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to copy transform output", err)
	}

	slots := make(map[string]bool)
	for _, s := range merged.UserOverriddenSlots {
		slots[s] = true
	}

	if !opts.DisableFunctionOverrides {
		for name, content := range user.Functions {
			merged.Functions[name] = content
			mergedArtifacts.WithLabelValues(kindFunction).Inc()
		}
	}

	if !opts.DisablePipelineFunctionOverrides && len(user.PipelineFunctions) > 0 {
		slog.Warn("pipelineFunctions is deprecated, move these files to the resolvers directory",
			"count", len(user.PipelineFunctions))
		for name, content := range user.PipelineFunctions {
			merged.Resolvers[name] = content
			slots[name] = true
			mergedArtifacts.WithLabelValues(kindPipelineFunction).Inc()
		}
	}

	if !opts.DisableResolverOverrides {
		for name, content := range user.Resolvers {
			if name == readmeKey {
				continue
			}
			merged.Resolvers[name] = content
			slots[name] = true
			mergedArtifacts.WithLabelValues(kindResolver).Inc()
		}
	}

	stacks, err := OverrideUserDefinedStacks(user, merged)
	if err != nil {
		return nil, err
	}
	merged.Stacks = stacks

	merged.UserOverriddenSlots = make([]string, 0, len(slots))
	for s := range slots {
		merged.UserOverriddenSlots = append(merged.UserOverriddenSlots, s)
	}
	sort.Strings(merged.UserOverriddenSlots)
	return merged, nil
}

// OverrideUserDefinedStacks adds every custom stack in user to out. Each
// becomes a nested stack resource in the root stack that receives the root
// parameters it declares plus AppSyncApiId, and depends on every generated
// stack, API and schema. Parameters a custom stack declares that the root
// does not have are added to the root.
//
// It returns the generated stacks together with the custom ones. The root
// stack of out is replaced only when every custom stack is valid.
func OverrideUserDefinedStacks(user *UserConfig, out *stack.DeploymentResources) (map[string]*template.Template, error) {
	if out == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "transform output is required")
	}
	stacks := make(map[string]*template.Template, len(out.Stacks))
	for name, t := range out.Stacks {
		stacks[name] = t
	}
	if user == nil || len(user.Stacks) == 0 {
		return stacks, nil
	}

	root, err := out.RootStack.Clone()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to copy root stack", err)
	}
	if root == nil {
		root = template.New("")
	}

	generated := make(map[string]bool, len(out.Stacks))
	for name := range out.Stacks {
		generated[stackBaseName(name)] = true
	}

	shared := make(map[string]any, len(root.Parameters)+1)
	for _, name := range root.ParameterNames() {
		shared[name] = template.Ref(name)
	}
	shared[ParamAppSyncAPIID] = template.GetAtt(GraphQLAPILogicalID, "ApiId")

	// Computed before any custom stack is added so custom stacks never
	// depend on each other.
	dependsOn := root.ResourceIDsOfType(template.TypeStack, template.TypeGraphQLAPI, template.TypeGraphQLSchema)

	added := make(map[string]template.Parameter)
	for _, name := range sortedStackNames(user.Stacks) {
		custom := user.Stacks[name]
		if custom == nil {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("custom stack %s is empty", name), map[string]any{"stack": name})
		}
		if generated[stackBaseName(name)] {
			return nil, errors.NewWithContext(errors.ErrCodeStackCollision,
				fmt.Sprintf("invalid user stack name %s, it collides with a generated stack of the same name", name),
				map[string]any{"stack": name})
		}

		params := make(map[string]any, len(custom.Parameters))
		for _, pname := range custom.ParameterNames() {
			decl := custom.Parameters[pname]
			if prev, ok := added[pname]; ok && !reflect.DeepEqual(prev, decl) {
				return nil, errors.NewWithContext(errors.ErrCodeStackCollision,
					fmt.Sprintf("custom stack %s redefines parameter %s declared by another custom stack", name, pname),
					map[string]any{"stack": name, "parameter": pname})
			}
			if _, ok := shared[pname]; !ok {
				root.Parameters[pname] = decl
				added[pname] = decl
				shared[pname] = template.Ref(pname)
			}
			params[pname] = shared[pname]
		}

		resourceID := construct.SanitizeID(stackBaseName(name))
		if resourceID == "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("custom stack name %s has no letters or digits", name), map[string]any{"stack": name})
		}
		if _, exists := root.Resources[resourceID]; exists {
			return nil, errors.NewWithContext(errors.ErrCodeStackCollision,
				fmt.Sprintf("custom stack %s maps to resource %s, which already exists in the root stack", name, resourceID),
				map[string]any{"stack": name, "resource": resourceID})
		}

		props := map[string]any{
			"TemplateURL": template.StackTemplateURL(template.StackFileName(name)),
		}
		if len(params) > 0 {
			props["Parameters"] = params
		}
		root.Resources[resourceID] = &template.Resource{
			Type:       template.TypeStack,
			Properties: props,
			DependsOn:  append([]string(nil), dependsOn...),
		}
		stacks[name] = custom
		mergedArtifacts.WithLabelValues(kindStack).Inc()
		slog.Debug("custom stack added", "stack", name, "resource", resourceID, "parameters", len(params))
	}

	out.RootStack = root
	return stacks, nil
}

// stackBaseName strips the .json extension stacks may be keyed with.
func stackBaseName(name string) string {
	return strings.TrimSuffix(name, ".json")
}

func sortedStackNames(m map[string]*template.Template) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
