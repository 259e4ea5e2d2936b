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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gqlstack/pkg/config"
	"github.com/NVIDIA/gqlstack/pkg/errors"
	"github.com/NVIDIA/gqlstack/pkg/stack"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

const inputYAML = `
schema: "type Todo { id: ID! }"
auth:
  iam: true
stacks:
  - Todo
parameters:
  Todo:
    DynamoDBBillingMode:
      Type: String
      Default: PAY_PER_REQUEST
resources:
  - path: GraphQLAPI/Resource
    type: AWS::AppSync::GraphQLApi
    properties:
      Name: todo
  - path: Todo/TodoTable/Resource
    type: AWS::DynamoDB::Table
    properties:
      BillingMode: PAY_PER_REQUEST
  - path: Todo/QuerygetTodoResolver
    logicalId: QuerygetTodoResolver
    type: AWS::AppSync::Resolver
    dependsOn:
      - TodoTable
assets:
  resolvers/Query.getTodo.req.vtl: generated
  resolvers/Query.listTodos.req.vtl: generated
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func loadTestInput(t *testing.T) *Input {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultInputFile)
	writeFile(t, path, inputYAML)
	in, err := LoadInput(path)
	require.NoError(t, err)
	return in
}

func TestLoadInput(t *testing.T) {
	in := loadTestInput(t)
	assert.Equal(t, []string{"Todo"}, in.Stacks)
	assert.True(t, in.Auth.IAM)
	assert.False(t, in.Auth.UserPool)
	require.Len(t, in.Resources, 3)
	assert.Equal(t, "Todo/TodoTable/Resource", in.Resources[1].Path)
	assert.Equal(t, []string{"TodoTable"}, in.Resources[2].DependsOn)
	assert.Equal(t, "PAY_PER_REQUEST", in.Parameters["Todo"]["DynamoDBBillingMode"].Default)

	_, err := LoadInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestPopulate(t *testing.T) {
	m := stack.NewManager()
	require.NoError(t, loadTestInput(t).Populate(m))

	todo, ok := m.GetStack("Todo")
	require.True(t, ok)
	table, ok := todo.Child("TodoTable")
	require.True(t, ok)
	assert.Nil(t, table.Resource(), "intermediate path segments are plain constructs")
	wrapper, ok := table.Child("Resource")
	require.True(t, ok)
	require.NotNil(t, wrapper.Resource())
	assert.Equal(t, "AWS::DynamoDB::Table", wrapper.Resource().Type)
	assert.Equal(t, "TodoTable", wrapper.Resource().LogicalID)

	resolver, ok := todo.Child("QuerygetTodoResolver")
	require.True(t, ok)
	assert.Equal(t, []string{"TodoTable"}, resolver.Resource().DependsOn)

	_, ok = m.Parameter("Todo", "DynamoDBBillingMode")
	assert.True(t, ok)
}

func TestPopulate_Outputs(t *testing.T) {
	m := stack.NewManager()
	in := &Input{
		Stacks: []string{"Todo"},
		Outputs: map[string]map[string]template.Output{
			"Todo": {"TableName": {Value: template.Ref("TodoTable")}},
		},
		Resources: []ResourceSpec{{Path: "Todo/TodoTable/Resource", Type: "AWS::DynamoDB::Table"}},
	}
	require.NoError(t, in.Populate(m))

	out, err := m.Synthesize(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, out.Stacks["Todo"].Outputs, "TableName")
	assert.Equal(t, template.Ref("TodoTable"), out.Stacks["Todo"].Outputs["TableName"].Value)
}

func TestPopulate_StackMapping(t *testing.T) {
	tests := []struct {
		name      string
		spec      ResourceSpec
		mapping   map[string]string
		wantStack string
		wantPath  []string
	}{
		{
			name:      "unmapped resolver stays in place",
			spec:      ResourceSpec{Path: "ConnectionStack/QuerylistTodosResolver", Type: template.TypeResolver},
			wantStack: "ConnectionStack",
			wantPath:  []string{"ConnectionStack", "QuerylistTodosResolver"},
		},
		{
			name:      "mapped resolver moves to its recorded stack",
			spec:      ResourceSpec{Path: "ConnectionStack/QuerygetTodoResolver", Type: template.TypeResolver},
			mapping:   map[string]string{"QuerygetTodoResolver": "Todo"},
			wantStack: "Todo",
			wantPath:  []string{"Todo", "QuerygetTodoResolver"},
		},
		{
			name:      "mapped function with wrapper id",
			spec:      ResourceSpec{Path: "ConnectionStack/AuthFunction/Resource", Type: template.TypeFunctionConfiguration},
			mapping:   map[string]string{"AuthFunction": "Todo"},
			wantStack: "Todo",
			wantPath:  []string{"Todo", "AuthFunction", "Resource"},
		},
		{
			name:      "missing mapped stack is created",
			spec:      ResourceSpec{Path: "Todo/QuerygetTodoResolver", Type: template.TypeResolver},
			mapping:   map[string]string{"QuerygetTodoResolver": "CustomStack"},
			wantStack: "CustomStack",
			wantPath:  []string{"CustomStack", "QuerygetTodoResolver"},
		},
		{
			name:      "mapped to the root stack",
			spec:      ResourceSpec{Path: "Todo/QuerygetTodoResolver", Type: template.TypeResolver},
			mapping:   map[string]string{"QuerygetTodoResolver": stack.DefaultRootStackName},
			wantStack: stack.DefaultRootStackName,
			wantPath:  []string{"QuerygetTodoResolver"},
		},
		{
			name:      "other resource types ignore the mapping",
			spec:      ResourceSpec{Path: "Todo/TodoTable/Resource", Type: "AWS::DynamoDB::Table"},
			mapping:   map[string]string{"TodoTable": "ConnectionStack"},
			wantStack: "Todo",
			wantPath:  []string{"Todo", "TodoTable", "Resource"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := stack.NewManager(stack.WithStackMapping(tt.mapping))
			in := &Input{Stacks: []string{"Todo", "ConnectionStack"}, Resources: []ResourceSpec{tt.spec}}
			require.NoError(t, in.Populate(m))

			node := m.Root()
			for _, seg := range tt.wantPath {
				child, ok := node.Child(seg)
				require.True(t, ok, "missing %s", seg)
				node = child
			}
			require.NotNil(t, node.Resource())
			assert.Equal(t, tt.wantStack, node.Stack().ID())
		})
	}
}

func TestPopulate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      *Input
		mapping map[string]string
	}{
		{
			name: "empty path",
			in:   &Input{Resources: []ResourceSpec{{Path: "/", Type: "AWS::SNS::Topic"}}},
		},
		{
			name: "missing type",
			in:   &Input{Resources: []ResourceSpec{{Path: "Topic/Resource"}}},
		},
		{
			name: "duplicate resource",
			in: &Input{Resources: []ResourceSpec{
				{Path: "Topic/Resource", Type: "AWS::SNS::Topic"},
				{Path: "Topic/Resource", Type: "AWS::SNS::Topic"},
			}},
		},
		{
			name: "duplicate stack",
			in:   &Input{Stacks: []string{"Todo", "Todo"}},
		},
		{
			name: "invalid stack name",
			in:   &Input{Stacks: []string{"To-do"}},
		},
		{
			name: "mapped stack name is invalid",
			in: &Input{
				Stacks:    []string{"Todo"},
				Resources: []ResourceSpec{{Path: "Todo/Query-get/Resource", LogicalID: "QueryGet", Type: template.TypeResolver}},
			},
			mapping: map[string]string{"QueryGet": "Bad-Stack"},
		},
		{
			name: "duplicate root parameter",
			in: &Input{Parameters: map[string]map[string]template.Parameter{
				stack.DefaultRootStackName: {stack.ParamEnv: {Type: "String"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Populate(stack.NewManager(stack.WithStackMapping(tt.mapping)))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest), err.Error())
		})
	}
}

func newAPIDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build", "override.yaml"), `
override:
  - select: models.Todo.modelDDBTable
    set:
      BillingMode: PROVISIONED
`)
	writeFile(t, filepath.Join(dir, "resolvers", "Query.getTodo.req.vtl"), "user")
	writeFile(t, filepath.Join(dir, "resolvers", "README.md"), "docs")
	writeFile(t, filepath.Join(dir, "stacks", "CustomResources.json"),
		`{"Parameters":{"env":{"Type":"String"}},"Resources":{"Topic":{"Type":"AWS::SNS::Topic"}}}`)
	writeFile(t, filepath.Join(dir, config.TransformConfigFileName),
		`{"Version":5,"StackMapping":{"QuerygetTodoResolver":"Todo"}}`)
	return dir
}

func TestRun(t *testing.T) {
	apiDir := newAPIDir(t)
	cfg := config.NewConfig(
		config.WithAPIDir(apiDir),
		config.WithAPIName("todo"),
		config.WithProject("dev", "todoapp"),
		config.WithVersion("v1.2.0"),
	)

	out, err := NewCompiler().Run(context.Background(), cfg, loadTestInput(t))
	require.NoError(t, err)

	res := out.Resources
	assert.Equal(t, "PROVISIONED", res.Stacks["Todo"].Resources["TodoTable"].Properties["BillingMode"],
		"override edits reach the synthesized template")
	assert.Contains(t, out.OverrideDiff, "PROVISIONED")

	assert.Equal(t, "user", res.Resolvers["Query.getTodo.req.vtl"])
	assert.Equal(t, "generated", res.Resolvers["Query.listTodos.req.vtl"])
	assert.NotContains(t, res.Resolvers, "README.md")
	assert.Equal(t, []string{"Query.getTodo.req.vtl"}, res.UserOverriddenSlots)

	assert.Contains(t, res.Stacks, "CustomResources.json")
	assert.Equal(t, template.TypeStack, res.RootStack.Resources["CustomResources"].Type)
	assert.Equal(t, "dev", res.RootStack.Parameters[stack.ParamEnv].Default)
	assert.Contains(t, res.RootStack.Parameters, stack.ParamAuthRoleName)
	assert.Equal(t, map[string]string{"QuerygetTodoResolver": "Todo"}, res.StackMapping)

	assert.Equal(t, "v1.2.0", out.Result.Version)
	assert.Equal(t, filepath.Join(apiDir, "build"), out.Result.OutputDir)

	data, err := os.ReadFile(filepath.Join(apiDir, "build", "resolvers", "Query.getTodo.req.vtl"))
	require.NoError(t, err)
	assert.Equal(t, "user", string(data))
	assert.FileExists(t, filepath.Join(apiDir, "build", "stacks", "Todo.json"))
	assert.FileExists(t, filepath.Join(apiDir, "build", "stacks", "CustomResources.json"))
	assert.FileExists(t, filepath.Join(apiDir, "build", "checksums.txt"))
}

func TestRun_MappedResolverKeepsItsStack(t *testing.T) {
	apiDir := newAPIDir(t)
	cfg := config.NewConfig(config.WithAPIDir(apiDir), config.WithDryRun(true))

	in := loadTestInput(t)
	in.Stacks = append(in.Stacks, "ConnectionStack")
	in.Resources[2].Path = "ConnectionStack/QuerygetTodoResolver"

	out, err := NewCompiler().Run(context.Background(), cfg, in)
	require.NoError(t, err)
	assert.Contains(t, out.Resources.Stacks["Todo"].Resources, "QuerygetTodoResolver")
	assert.NotContains(t, out.Resources.Stacks["ConnectionStack"].Resources, "QuerygetTodoResolver")
}

func TestRun_DryRunAndDisabledOverrides(t *testing.T) {
	apiDir := newAPIDir(t)
	outDir := filepath.Join(t.TempDir(), "out")
	cfg := config.NewConfig(
		config.WithAPIDir(apiDir),
		config.WithOutputDir(outDir),
		config.WithDisableResolverOverrides(true),
		config.WithDryRun(true),
	)

	out, err := NewCompiler().Run(context.Background(), cfg, loadTestInput(t))
	require.NoError(t, err)
	assert.Equal(t, "generated", out.Resources.Resolvers["Query.getTodo.req.vtl"])
	assert.Empty(t, out.Resources.UserOverriddenSlots)
	assert.True(t, out.Result.DryRun)
	assert.NoDirExists(t, outDir)
}

type memStore struct {
	cfg *config.TransformConfig
}

func (s *memStore) Load(context.Context) (*config.TransformConfig, error) { return s.cfg, nil }

func (s *memStore) Save(_ context.Context, cfg *config.TransformConfig) error {
	s.cfg = cfg
	return nil
}

func TestRun_WithStore(t *testing.T) {
	apiDir := newAPIDir(t)
	store := &memStore{cfg: &config.TransformConfig{StackMapping: map[string]string{"TodoTable": "Custom"}}}
	cfg := config.NewConfig(config.WithAPIDir(apiDir), config.WithDryRun(true))

	out, err := NewCompiler(WithStore(store)).Run(context.Background(), cfg, loadTestInput(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TodoTable": "Custom"}, out.Resources.StackMapping)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil input", func(t *testing.T) {
		_, err := NewCompiler().Run(ctx, config.NewConfig(config.WithAPIDir(t.TempDir())), nil)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewCompiler().Run(ctx, config.NewConfig(), loadTestInput(t))
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("invalid override", func(t *testing.T) {
		apiDir := newAPIDir(t)
		writeFile(t, filepath.Join(apiDir, "build", "override.yaml"), "override:\n  - select: [\n")
		_, err := NewCompiler().Run(ctx, config.NewConfig(config.WithAPIDir(apiDir)), loadTestInput(t))
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOverride))
	})

	t.Run("custom stack collides with generated stack", func(t *testing.T) {
		apiDir := newAPIDir(t)
		writeFile(t, filepath.Join(apiDir, "stacks", "Todo.json"), `{"Resources":{}}`)
		_, err := NewCompiler().Run(ctx, config.NewConfig(config.WithAPIDir(apiDir)), loadTestInput(t))
		assert.True(t, errors.HasCode(err, errors.ErrCodeStackCollision))
	})
}
