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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/stack"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

func transformOutput() *stack.DeploymentResources {
	out := stack.NewDeploymentResources()
	out.Resolvers = map[string]string{
		"Query.listTodos.req.vtl": "B",
		"Query.getTodo.req.vtl":   "C",
	}
	out.Functions = map[string]string{"echo.zip": "generated"}
	out.PipelineFunctions = map[string]string{"Query.getTodo.auth.1.req.vtl": "auth"}

	root := template.New("root")
	root.Parameters["env"] = template.Parameter{Type: "String"}
	root.Parameters[template.ParamDeploymentBucket] = template.Parameter{Type: "String"}
	root.Parameters[template.ParamDeploymentRootKey] = template.Parameter{Type: "String"}
	root.Resources["GraphQLAPI"] = &template.Resource{Type: template.TypeGraphQLAPI}
	root.Resources["GraphQLAPITransformerSchema"] = &template.Resource{Type: template.TypeGraphQLSchema}
	root.Resources["Todo"] = &template.Resource{Type: template.TypeStack}
	root.Resources["GraphQLAPIDefaultApiKey"] = &template.Resource{Type: "AWS::AppSync::ApiKey"}
	out.RootStack = root

	out.Stacks["Todo"] = template.New("todo")
	return out
}

func customStack(params ...string) *template.Template {
	t := template.New("custom")
	for _, p := range params {
		t.Parameters[p] = template.Parameter{Type: "String"}
	}
	t.Resources["QueryEcho"] = &template.Resource{Type: template.TypeResolver}
	return t
}

func TestMerge_UserResolverWins(t *testing.T) {
	user := &UserConfig{Resolvers: map[string]string{"Query.listTodos.req.vtl": "A"}}
	out := transformOutput()

	merged, err := MergeUserConfigWithTransformOutput(user, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Query.listTodos.req.vtl": "A",
		"Query.getTodo.req.vtl":   "C",
	}, merged.Resolvers)
	assert.Equal(t, []string{"Query.listTodos.req.vtl"}, merged.UserOverriddenSlots)
	assert.Equal(t, "B", out.Resolvers["Query.listTodos.req.vtl"], "input is not modified")
}

func TestMerge_EmptyUserConfig(t *testing.T) {
	out := transformOutput()
	for _, user := range []*UserConfig{nil, {}, {Resolvers: map[string]string{}, Functions: map[string]string{}, PipelineFunctions: map[string]string{}}} {
		merged, err := MergeUserConfigWithTransformOutput(user, out, Options{})
		require.NoError(t, err)
		assert.Equal(t, out.Resolvers, merged.Resolvers)
		assert.Equal(t, out.Functions, merged.Functions)
		assert.Equal(t, out.PipelineFunctions, merged.PipelineFunctions)
		assert.Empty(t, merged.UserOverriddenSlots)
	}
}

func TestMerge_Rules(t *testing.T) {
	user := &UserConfig{
		Functions:         map[string]string{"echo.zip": "custom", "new.zip": "new"},
		Resolvers:         map[string]string{"README.md": "docs", "Mutation.createTodo.req.vtl": "R"},
		PipelineFunctions: map[string]string{"Query.getTodo.req.vtl": "P"},
	}

	tests := []struct {
		name          string
		opts          Options
		wantResolvers map[string]string
		wantFunctions map[string]string
	}{
		{
			name: "all merges",
			wantResolvers: map[string]string{
				"Query.listTodos.req.vtl":     "B",
				"Query.getTodo.req.vtl":       "P",
				"Mutation.createTodo.req.vtl": "R",
			},
			wantFunctions: map[string]string{"echo.zip": "custom", "new.zip": "new"},
		},
		{
			name: "disabled",
			opts: Options{DisableFunctionOverrides: true, DisableResolverOverrides: true, DisablePipelineFunctionOverrides: true},
			wantResolvers: map[string]string{
				"Query.listTodos.req.vtl": "B",
				"Query.getTodo.req.vtl":   "C",
			},
			wantFunctions: map[string]string{"echo.zip": "generated"},
		},
		{
			name: "pipeline functions only",
			opts: Options{DisableFunctionOverrides: true, DisableResolverOverrides: true},
			wantResolvers: map[string]string{
				"Query.listTodos.req.vtl": "B",
				"Query.getTodo.req.vtl":   "P",
			},
			wantFunctions: map[string]string{"echo.zip": "generated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := MergeUserConfigWithTransformOutput(user, transformOutput(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResolvers, merged.Resolvers)
			assert.Equal(t, tt.wantFunctions, merged.Functions)
			assert.NotContains(t, merged.Resolvers, "README.md")
			assert.Equal(t, map[string]string{"Query.getTodo.auth.1.req.vtl": "auth"}, merged.PipelineFunctions)
		})
	}
}

func TestOverrideUserDefinedStacks(t *testing.T) {
	out := transformOutput()
	user := &UserConfig{Stacks: map[string]*template.Template{
		"CustomResources.json": customStack("env", ParamAppSyncAPIID, "DomainName"),
	}}

	stacks, err := OverrideUserDefinedStacks(user, out)
	require.NoError(t, err)
	assert.Contains(t, stacks, "Todo")
	assert.Contains(t, stacks, "CustomResources.json")

	res := out.RootStack.Resources["CustomResources"]
	require.NotNil(t, res)
	assert.Equal(t, template.TypeStack, res.Type)
	assert.Equal(t, []string{"GraphQLAPI", "GraphQLAPITransformerSchema", "Todo"}, res.DependsOn)
	assert.Equal(t, template.StackTemplateURL("CustomResources.json"), res.Properties["TemplateURL"])
	assert.Equal(t, map[string]any{
		"env":             template.Ref("env"),
		ParamAppSyncAPIID: template.GetAtt("GraphQLAPI", "ApiId"),
		"DomainName":      template.Ref("DomainName"),
	}, res.Properties["Parameters"])

	assert.Contains(t, out.RootStack.Parameters, "DomainName", "new custom parameters are added to the root")
	assert.NotContains(t, out.RootStack.Parameters, ParamAppSyncAPIID)
}

func TestOverrideUserDefinedStacks_ResourceKeyIsSanitized(t *testing.T) {
	out := transformOutput()
	_, err := OverrideUserDefinedStacks(&UserConfig{Stacks: map[string]*template.Template{
		"my-stack_1.json": customStack(),
	}}, out)
	require.NoError(t, err)
	require.Contains(t, out.RootStack.Resources, "mystack1")
	assert.Equal(t, template.StackTemplateURL("my-stack_1.json"), out.RootStack.Resources["mystack1"].Properties["TemplateURL"])
}

func TestOverrideUserDefinedStacks_SharedParameterAcrossStacks(t *testing.T) {
	out := transformOutput()
	user := &UserConfig{Stacks: map[string]*template.Template{
		"A.json": customStack("DomainName"),
		"B.json": customStack("DomainName"),
	}}

	_, err := OverrideUserDefinedStacks(user, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"GraphQLAPI", "GraphQLAPITransformerSchema", "Todo"}, out.RootStack.Resources["B"].DependsOn,
		"custom stacks do not depend on each other")
}

func TestOverrideUserDefinedStacks_Errors(t *testing.T) {
	conflicting := customStack()
	conflicting.Parameters["DomainName"] = template.Parameter{Type: "Number"}

	tests := []struct {
		name   string
		stacks map[string]*template.Template
		code   errors.ErrorCode
	}{
		{
			name:   "collides with generated stack",
			stacks: map[string]*template.Template{"Todo": customStack()},
			code:   errors.ErrCodeStackCollision,
		},
		{
			name:   "collides with generated stack file name",
			stacks: map[string]*template.Template{"Todo.json": customStack()},
			code:   errors.ErrCodeStackCollision,
		},
		{
			name: "parameter redefined across custom stacks",
			stacks: map[string]*template.Template{
				"A.json": customStack("DomainName"),
				"B.json": conflicting,
			},
			code: errors.ErrCodeStackCollision,
		},
		{
			name:   "resource key collides with root resource",
			stacks: map[string]*template.Template{"GraphQL-API.json": customStack()},
			code:   errors.ErrCodeStackCollision,
		},
		{
			name:   "empty name",
			stacks: map[string]*template.Template{"--.json": customStack()},
			code:   errors.ErrCodeInvalidRequest,
		},
		{
			name:   "nil template",
			stacks: map[string]*template.Template{"A.json": nil},
			code:   errors.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := transformOutput()
			before := len(out.RootStack.Resources)

			_, err := OverrideUserDefinedStacks(&UserConfig{Stacks: tt.stacks}, out)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), err.Error())
			assert.Len(t, out.RootStack.Resources, before, "root stack is untouched on failure")
			assert.NotContains(t, out.RootStack.Parameters, "DomainName")
		})
	}
}

func TestMerge_StackCollisionAbortsMerge(t *testing.T) {
	user := &UserConfig{
		Resolvers: map[string]string{"Query.listTodos.req.vtl": "A"},
		Stacks:    map[string]*template.Template{"Todo": customStack()},
	}
	merged, err := MergeUserConfigWithTransformOutput(user, transformOutput(), Options{})
	assert.Nil(t, merged)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStackCollision))
}

func TestLoadUserConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	write("resolvers/Query.listTodos.req.vtl", "A")
	write("resolvers/README.md", "docs")
	write("functions/echo.zip", "zip")
	write("stacks/CustomResources.json", `{"Parameters":{"env":{"Type":"String"}},"Resources":{"X":{"Type":"AWS::SNS::Topic"}}}`)
	write("stacks/notes.txt", "ignored")

	cfg, err := LoadUserConfig(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Query.listTodos.req.vtl": "A", "README.md": "docs"}, cfg.Resolvers)
	assert.Equal(t, map[string]string{"echo.zip": "zip"}, cfg.Functions)
	assert.Empty(t, cfg.PipelineFunctions)
	require.Contains(t, cfg.Stacks, "CustomResources.json")
	assert.NotContains(t, cfg.Stacks, "notes.txt")
	assert.Equal(t, "AWS::SNS::Topic", cfg.Stacks["CustomResources.json"].Resources["X"].Type)
}

func TestLoadUserConfig_Errors(t *testing.T) {
	cfg, err := LoadUserConfig(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Resolvers)
	assert.Empty(t, cfg.Stacks)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, StacksDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StacksDir, "Bad.json"), []byte("{"), 0o600))
	_, err = LoadUserConfig(context.Background(), dir)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}
