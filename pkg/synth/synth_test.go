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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gqlstack/pkg/construct"
	"github.com/NVIDIA/gqlstack/pkg/template"
)

func TestDefault_Synthesize(t *testing.T) {
	root := construct.NewScope("root")
	api, err := root.AddChild("GraphQLAPI")
	require.NoError(t, err)
	_, err = api.AddResource(construct.WrapperID, "", template.TypeGraphQLAPI, map[string]any{"Name": "api"})
	require.NoError(t, err)

	todo, err := root.AddNestedStack("Todo")
	require.NoError(t, err)
	table, err := todo.AddResource("TodoTable", "", "AWS::DynamoDB::Table", map[string]any{
		"KeySchema": []any{map[string]any{"AttributeName": "id", "KeyType": "HASH"}},
	})
	require.NoError(t, err)
	table.DependsOn = []string{"B", "A"}

	in := Input{
		Root: root,
		Parameters: map[string]map[string]template.Parameter{
			"root": {"env": {Type: "String"}, "Unrelated": {Type: "String"}},
			"Todo": {"env": {Type: "String"}, "Local": {Type: "String"}},
		},
	}
	out, err := Default{}.Synthesize(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 2)

	rootTmpl := out["root"]
	assert.Contains(t, rootTmpl.Resources, "GraphQLAPI")
	require.Contains(t, rootTmpl.Resources, "Todo")
	stackRes := rootTmpl.Resources["Todo"]
	assert.Equal(t, template.TypeStack, stackRes.Type)
	assert.Equal(t, template.StackTemplateURL("Todo.json"), stackRes.Properties["TemplateURL"])
	assert.Equal(t, map[string]any{"env": template.Ref("env")}, stackRes.Properties["Parameters"])

	todoTmpl := out["Todo"]
	require.Contains(t, todoTmpl.Resources, "TodoTable")
	assert.Equal(t, []string{"A", "B"}, todoTmpl.Resources["TodoTable"].DependsOn)
	assert.NotContains(t, rootTmpl.Resources, "TodoTable")

	table.Properties["KeySchema"].([]any)[0].(map[string]any)["KeyType"] = "RANGE"
	got := todoTmpl.Resources["TodoTable"].Properties["KeySchema"].([]any)[0].(map[string]any)["KeyType"]
	assert.Equal(t, "HASH", got, "templates do not alias live properties")
}

func TestDefault_Synthesize_Errors(t *testing.T) {
	_, err := Default{}.Synthesize(context.Background(), Input{})
	assert.Error(t, err)

	root := construct.NewScope("root")
	_, err = root.AddResource("A", "Same", "AWS::SNS::Topic", nil)
	require.NoError(t, err)
	_, err = root.AddResource("B", "Same", "AWS::SNS::Topic", nil)
	require.NoError(t, err)
	_, err = Default{}.Synthesize(context.Background(), Input{Root: root})
	assert.Error(t, err, "duplicate logical ids in one stack are rejected")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Default{}.Synthesize(ctx, Input{Root: construct.NewScope("root")})
	assert.ErrorIs(t, err, context.Canceled)
}
