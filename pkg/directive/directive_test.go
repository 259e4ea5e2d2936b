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

package directive

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/gqlstack/pkg/construct"
)

// newScope builds a composition root shaped like transformer output.
func newScope(t *testing.T) *construct.Node {
	t.Helper()
	root := construct.NewScope("transformer-root-stack")

	mustChild := func(parent *construct.Node, id string) *construct.Node {
		c, err := parent.AddChild(id)
		require.NoError(t, err)
		return c
	}
	mustRes := func(parent *construct.Node, id, logicalID, typ string, props map[string]any) {
		_, err := parent.AddResource(id, logicalID, typ, props)
		require.NoError(t, err)
	}

	api := mustChild(root, "GraphQLAPI")
	mustRes(api, construct.WrapperID, "", "AWS::AppSync::GraphQLApi", map[string]any{"Name": "todo-api"})
	mustRes(api, "DefaultApiKey", "", "AWS::AppSync::ApiKey", nil)
	mustRes(api, "TransformerSchema", "", "AWS::AppSync::GraphQLSchema", nil)
	mustRes(mustChild(api, "NONE_DS"), construct.WrapperID, "GraphQLAPINONEDS", "AWS::AppSync::DataSource", nil)

	todo, err := root.AddNestedStack("Todo")
	require.NoError(t, err)
	mustRes(mustChild(todo, "TodoTable"), construct.WrapperID, "", "AWS::DynamoDB::Table",
		map[string]any{"BillingMode": "PAY_PER_REQUEST"})
	role := mustChild(todo, "TodoIAMRole")
	mustRes(role, construct.WrapperID, "", "AWS::IAM::Role", nil)
	mustRes(mustChild(role, "DefaultPolicy"), construct.WrapperID, "", "AWS::IAM::Policy", nil)
	mustRes(mustChild(todo, "TodoDataSource"), construct.WrapperID, "", "AWS::AppSync::DataSource", nil)
	mustRes(todo, "queryGetTodoResolver", "QuerygetTodoResolver", "AWS::AppSync::Resolver",
		map[string]any{"FieldName": "getTodo", "TypeName": "Query"})

	fn, err := root.AddNestedStack(FunctionStackName)
	require.NoError(t, err)
	mustRes(mustChild(fn, "EchofunctionLambdaDataSource"), construct.WrapperID, "", "AWS::AppSync::DataSource", nil)
	fnRole := mustChild(fn, "EchofunctionLambdaDataSourceServiceRole")
	mustRes(fnRole, construct.WrapperID, "", "AWS::IAM::Role", nil)
	mustRes(mustChild(fnRole, "DefaultPolicy"), construct.WrapperID, "", "AWS::IAM::Policy", nil)
	mustRes(fn, "InvokeEchofunctionFunction", "", "AWS::AppSync::FunctionConfiguration", nil)

	search, err := root.AddNestedStack(SearchableStackName)
	require.NoError(t, err)
	mustRes(mustChild(search, "OpenSearchDomain"), construct.WrapperID, "", "AWS::OpenSearchService::Domain", nil)
	mustRes(mustChild(search, "SearchableTodoLambdaMapping"), construct.WrapperID, "", "AWS::Lambda::EventSourceMapping", nil)

	return root
}

func TestClassify(t *testing.T) {
	nested := map[string]bool{"Todo": true, FunctionStackName: true, HTTPStackName: true}

	tests := []struct {
		name       string
		path       construct.Path
		wantName   string
		wantNested bool
		wantStack  StackRef
	}{
		{
			name:      "root resource with wrapper",
			path:      construct.Path{"root", "GraphQLAPI", "Resource"},
			wantName:  "GraphQLAPI",
			wantStack: StackRef{StackName: "root", StackType: StackTypeAPI},
		},
		{
			name:      "root resource without wrapper keeps terminal id",
			path:      construct.Path{"root", "GraphQLAPI", "DefaultApiKey"},
			wantName:  "GraphQLAPIDefaultApiKey",
			wantStack: StackRef{StackName: "root", StackType: StackTypeAPI},
		},
		{
			name:       "model stack",
			path:       construct.Path{"root", "Todo", "TodoTable", "Resource"},
			wantName:   "TodoTable",
			wantNested: true,
			wantStack:  StackRef{StackName: "Todo", StackType: StackTypeModels},
		},
		{
			name:       "function stack",
			path:       construct.Path{"root", FunctionStackName, "EchoLambdaDataSource", "Resource"},
			wantName:   "EchoLambdaDataSource",
			wantNested: true,
			wantStack:  StackRef{StackName: FunctionStackName, StackType: StackTypeFunction},
		},
		{
			name:       "http stack",
			path:       construct.Path{"root", HTTPStackName, "ApiDataSource"},
			wantName:   "ApiDataSource",
			wantNested: true,
			wantStack:  StackRef{StackName: HTTPStackName, StackType: StackTypeHTTP},
		},
		{
			name:      "unknown second segment is root",
			path:      construct.Path{"root", "Unknown", "Thing"},
			wantName:  "UnknownThing",
			wantStack: StackRef{StackName: "root", StackType: StackTypeAPI},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.path, tt.path.Terminal(), nested, "AWS::AppSync::DataSource")
			assert.Equal(t, tt.wantName, c.ResourceName)
			assert.Equal(t, tt.wantNested, c.IsNested())
			assert.Equal(t, tt.wantStack, c.Stack())
			assert.Equal(t, "AWS::AppSync::DataSource", c.ResourceType)
			if tt.wantNested {
				assert.Nil(t, c.RootStack, "nested resources never classify as root")
			} else {
				assert.Nil(t, c.NestedStack)
			}
		})
	}
}

func TestClassify_NestedAlwaysWins(t *testing.T) {
	nested := map[string]bool{"Post": true, "Comment": true}
	paths := []construct.Path{
		{"root", "Post", "PostTable", "Resource"},
		{"root", "Post", "A", "B", "C"},
		{"root", "Comment", "Resource"},
		{"root", "Comment", "x"},
	}
	for _, p := range paths {
		c := Classify(p, p.Terminal(), nested, "AWS::IAM::Role")
		assert.True(t, c.IsNested(), p.String())
		assert.Equal(t, StackTypeModels, c.NestedStack.StackType)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindResolver, KindOf("AWS::AppSync::Resolver"))
	assert.Equal(t, KindTable, KindOf("AWS::DynamoDB::Table"))
	assert.Equal(t, KindOther, KindOf("AWS::SQS::Queue"))
	assert.Equal(t, KindOther, KindOf("ResolverLike"), "kinds are not derived from substrings")
}

func TestBuild_Shape(t *testing.T) {
	root := newScope(t)
	tree := Build(root, &EditLog{}, nil)

	require.NotNil(t, tree.API)
	assert.Equal(t, "GraphQLAPI", tree.API.GraphQLAPI.LogicalID())
	assert.Equal(t, "GraphQLAPIDefaultApiKey", tree.API.GraphQLAPIDefaultAPIKey.LogicalID())
	assert.Equal(t, "GraphQLAPITransformerSchema", tree.API.GraphQLAPITransformerSchema.LogicalID())
	assert.Equal(t, "GraphQLAPINONEDS", tree.API.GraphQLAPINoneDS.LogicalID())

	require.Contains(t, tree.Models, "Todo")
	todo := tree.Models["Todo"]
	assert.Equal(t, "TodoTable", todo.ModelDDBTable.LogicalID())
	assert.Equal(t, "TodoIAMRole", todo.ModelIamRole.LogicalID())
	assert.Equal(t, "TodoIAMRoleDefaultPolicy", todo.ModelIamRoleDefaultPolicy.LogicalID())
	assert.Equal(t, "TodoDataSource", todo.ModelDatasource.LogicalID())
	assert.Contains(t, todo.Resolvers, "queryGetTodoResolver")

	require.NotNil(t, tree.Function)
	assert.Contains(t, tree.Function.LambdaDataSource, "Echofunction")
	assert.Contains(t, tree.Function.LambdaDataSourceRole, "Echofunction")
	assert.Contains(t, tree.Function.LambdaDataSourceServiceRoleDefaultPolicy, "Echofunction")
	assert.Contains(t, tree.Function.AppsyncFunctions, "InvokeEchofunctionFunction")

	require.NotNil(t, tree.OpenSearch)
	assert.NotNil(t, tree.OpenSearch.OpenSearchDomain)
	assert.Contains(t, tree.OpenSearch.OpenSearchModelLambdaMapping, "Todo")

	assert.Nil(t, tree.HTTP)
	assert.Nil(t, tree.Predictions)
}

func TestBuild_TopLevelKeysAreClosed(t *testing.T) {
	tree := Build(newScope(t), &EditLog{}, nil)
	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var top map[string]any
	require.NoError(t, json.Unmarshal(data, &top))
	allowed := map[string]bool{}
	for _, st := range StackTypes() {
		allowed[string(st)] = true
	}
	for k := range top {
		assert.True(t, allowed[k], "unexpected top-level key %q", k)
	}
}

func TestBuild_EmptyTreeMarshalsToEmptyObject(t *testing.T) {
	tree := Build(construct.NewScope("root"), &EditLog{}, nil)
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
	assert.True(t, tree.IsEmpty())
}

func TestBuild_AccountsForEveryResource(t *testing.T) {
	root := newScope(t)
	handles := ClassifyAll(root, NestedStackNames(root), &EditLog{})
	require.Len(t, handles, len(construct.Resources(root)))

	tree := Group(handles, nil)
	entries := tree.Entries()
	assert.Len(t, entries, len(handles))

	seen := make(map[*Handle]bool)
	for _, e := range entries {
		assert.False(t, seen[e.Handle], "handle listed twice at %s", e.Address)
		seen[e.Handle] = true
	}
}

func TestGroup_DropsUnknownStackTypes(t *testing.T) {
	r := &construct.Resource{LogicalID: "X", Type: "AWS::SNS::Topic", Path: construct.Path{"root", "X"}}
	c := Classification{ResourceName: "X", NestedStack: &StackRef{StackName: "X", StackType: "queue"}}
	tree := Group([]*Handle{NewHandle(r, c, &EditLog{})}, nil)
	assert.True(t, tree.IsEmpty())
}

func TestGroup_DeepNestingCollision(t *testing.T) {
	root := construct.NewScope("root")
	todo, err := root.AddNestedStack("Todo")
	require.NoError(t, err)

	a, err := todo.AddChild("A")
	require.NoError(t, err)
	_, err = a.AddResource("BC", "ResolverOne", "AWS::AppSync::Resolver", nil)
	require.NoError(t, err)
	ab, err := todo.AddChild("AB")
	require.NoError(t, err)
	_, err = ab.AddResource("C", "ResolverTwo", "AWS::AppSync::Resolver", nil)
	require.NoError(t, err)

	tree := Build(root, &EditLog{}, nil)
	resolvers := tree.Models["Todo"].Resolvers
	require.Len(t, resolvers, 2, "colliding names are disambiguated, not dropped")
	assert.Equal(t, "ResolverOne", resolvers["ABC"].LogicalID())
	assert.Equal(t, "ResolverTwo", resolvers["rootTodoABC"].LogicalID())
}

func TestSelect(t *testing.T) {
	tree := Build(newScope(t), &EditLog{}, nil)

	tests := []struct {
		pattern string
		want    []string
		wantErr bool
	}{
		{pattern: "models.Todo.modelDDBTable", want: []string{"TodoTable"}},
		{pattern: "models.*.modelIamRole", want: []string{"TodoIAMRole"}},
		{pattern: "function.lambdaDataSource*.Echofunction", want: []string{
			"EchofunctionLambdaDataSource",
			"EchofunctionLambdaDataSourceServiceRole",
			"EchofunctionLambdaDataSourceServiceRoleDefaultPolicy",
		}},
		{pattern: "opensearch.**", want: []string{"OpenSearchDomain", "SearchableTodoLambdaMapping"}},
		{pattern: "http.**", want: nil},
		{pattern: "", wantErr: true},
		{pattern: "models.**.x", wantErr: true},
		{pattern: "models.[", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := tree.Select(tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var ids []string
			for _, e := range got {
				ids = append(ids, e.Handle.LogicalID())
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestHandle_SnapshotIsolation(t *testing.T) {
	root := newScope(t)
	log := &EditLog{}
	tree := Build(root, log, nil)
	table := tree.Models["Todo"].ModelDDBTable

	props := table.Properties()
	props["BillingMode"] = "PROVISIONED"
	v, ok := table.Property("BillingMode")
	require.True(t, ok)
	assert.Equal(t, "PAY_PER_REQUEST", v, "callers cannot mutate the snapshot")

	table.Set("BillingMode", "PROVISIONED")
	v, _ = table.Property("BillingMode")
	assert.Equal(t, "PAY_PER_REQUEST", v, "edits are recorded, not applied")
	assert.Equal(t, 1, log.Len())

	var live *construct.Resource
	for _, r := range construct.Resources(root) {
		if r.LogicalID == "TodoTable" {
			live = r
		}
	}
	require.NotNil(t, live)
	assert.Equal(t, "PAY_PER_REQUEST", live.Properties["BillingMode"])
}

func TestApplyEdits(t *testing.T) {
	root := newScope(t)
	log := &EditLog{}
	tree := Build(root, log, nil)

	table := tree.Models["Todo"].ModelDDBTable
	table.Set("BillingMode", "PROVISIONED")
	table.Set("ProvisionedThroughput.ReadCapacityUnits", 5)
	table.Set("Tags", []any{map[string]any{"Key": "team", "Value": "a"}})
	table.Set("Tags.0.Value", "b")
	tree.API.GraphQLAPI.Delete("Name")

	n, err := ApplyEdits(root, log.Edits())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	props := map[string]map[string]any{}
	for _, r := range construct.Resources(root) {
		props[r.LogicalID] = r.Properties
	}
	assert.Equal(t, "PROVISIONED", props["TodoTable"]["BillingMode"])
	assert.Equal(t, map[string]any{"ReadCapacityUnits": 5}, props["TodoTable"]["ProvisionedThroughput"])
	assert.Equal(t, []any{map[string]any{"Key": "team", "Value": "b"}}, props["TodoTable"]["Tags"])
	assert.NotContains(t, props["GraphQLAPI"], "Name")
}

func TestApplyEdits_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit Edit
	}{
		{name: "unknown address", edit: Edit{Address: "nope", Op: EditSet, Property: "A"}},
		{name: "empty property", edit: Edit{Address: "transformer-root-stack/Todo/TodoTable/Resource", Op: EditSet}},
		{name: "unknown op", edit: Edit{Address: "transformer-root-stack/Todo/TodoTable/Resource", Op: "merge", Property: "A"}},
		{name: "scalar traversal", edit: Edit{Address: "transformer-root-stack/Todo/TodoTable/Resource", Op: EditSet, Property: "BillingMode.X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ApplyEdits(newScope(t), []Edit{tt.edit})
			assert.Error(t, err)
			assert.Equal(t, 0, n)
		})
	}
}
