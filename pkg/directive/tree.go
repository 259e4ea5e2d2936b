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
	"sort"
	"strings"
)

// ResourceTree is the shape override code addresses generated resources by.
// Its JSON keys are a public contract and must not change.
type ResourceTree struct {
	API         *APIResources              `json:"api,omitempty" yaml:"api,omitempty"`
	Models      map[string]*ModelResources `json:"models,omitempty" yaml:"models,omitempty"`
	Function    *FunctionResources         `json:"function,omitempty" yaml:"function,omitempty"`
	HTTP        *HTTPResources             `json:"http,omitempty" yaml:"http,omitempty"`
	OpenSearch  *OpenSearchResources       `json:"opensearch,omitempty" yaml:"opensearch,omitempty"`
	Predictions *PredictionsResources      `json:"predictions,omitempty" yaml:"predictions,omitempty"`
}

// Buckets holds the AppSync resolvers and pipeline functions of one stack,
// plus every resource that fits no named slot.
type Buckets struct {
	Resolvers        map[string]*Handle `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
	AppsyncFunctions map[string]*Handle `json:"appsyncFunctions,omitempty" yaml:"appsyncFunctions,omitempty"`
	Other            map[string]*Handle `json:"other,omitempty" yaml:"other,omitempty"`
}

// APIResources are the root stack resources.
type APIResources struct {
	Buckets
	GraphQLAPI                  *Handle `json:"GraphQLAPI,omitempty" yaml:"GraphQLAPI,omitempty"`
	GraphQLAPIDefaultAPIKey     *Handle `json:"GraphQLAPIDefaultApiKey,omitempty" yaml:"GraphQLAPIDefaultApiKey,omitempty"`
	GraphQLAPITransformerSchema *Handle `json:"GraphQLAPITransformerSchema,omitempty" yaml:"GraphQLAPITransformerSchema,omitempty"`
	GraphQLAPINoneDS            *Handle `json:"GraphQLAPINONEDS,omitempty" yaml:"GraphQLAPINONEDS,omitempty"`
}

// ModelResources are the resources of one @model nested stack.
type ModelResources struct {
	Buckets
	ModelDatasource           *Handle `json:"modelDatasource,omitempty" yaml:"modelDatasource,omitempty"`
	ModelIamRole              *Handle `json:"modelIamRole,omitempty" yaml:"modelIamRole,omitempty"`
	ModelIamRoleDefaultPolicy *Handle `json:"modelIamRoleDefaultPolicy,omitempty" yaml:"modelIamRoleDefaultPolicy,omitempty"`
	ModelDDBTable             *Handle `json:"modelDDBTable,omitempty" yaml:"modelDDBTable,omitempty"`
}

// FunctionResources are the resources of the @function stack, keyed by the
// short name of the Lambda function they serve.
type FunctionResources struct {
	Buckets
	LambdaDataSource                         map[string]*Handle `json:"lambdaDataSource,omitempty" yaml:"lambdaDataSource,omitempty"`
	LambdaDataSourceRole                     map[string]*Handle `json:"lambdaDataSourceRole,omitempty" yaml:"lambdaDataSourceRole,omitempty"`
	LambdaDataSourceServiceRoleDefaultPolicy map[string]*Handle `json:"lambdaDataSourceServiceRoleDefaultPolicy,omitempty" yaml:"lambdaDataSourceServiceRoleDefaultPolicy,omitempty"`
}

// HTTPResources are the resources of the @http stack, keyed by data source name.
type HTTPResources struct {
	Buckets
	HTTPSDataSource           map[string]*Handle `json:"httpsDataSource,omitempty" yaml:"httpsDataSource,omitempty"`
	HTTPDataSourceServiceRole map[string]*Handle `json:"httpDataSourceServiceRole,omitempty" yaml:"httpDataSourceServiceRole,omitempty"`
}

// OpenSearchResources are the resources of the @searchable stack.
type OpenSearchResources struct {
	Buckets
	OpenSearchDataSource                          *Handle            `json:"OpenSearchDataSource,omitempty" yaml:"OpenSearchDataSource,omitempty"`
	OpenSearchAccessIAMRole                       *Handle            `json:"OpenSearchAccessIAMRole,omitempty" yaml:"OpenSearchAccessIAMRole,omitempty"`
	OpenSearchAccessIAMRoleDefaultPolicy          *Handle            `json:"OpenSearchAccessIAMRoleDefaultPolicy,omitempty" yaml:"OpenSearchAccessIAMRoleDefaultPolicy,omitempty"`
	OpenSearchDomain                              *Handle            `json:"OpenSearchDomain,omitempty" yaml:"OpenSearchDomain,omitempty"`
	OpenSearchStreamingLambdaIAMRole              *Handle            `json:"OpenSearchStreamingLambdaIAMRole,omitempty" yaml:"OpenSearchStreamingLambdaIAMRole,omitempty"`
	OpenSearchStreamingLambdaIAMRoleDefaultPolicy *Handle            `json:"OpenSearchStreamingLambdaIAMRoleDefaultPolicy,omitempty" yaml:"OpenSearchStreamingLambdaIAMRoleDefaultPolicy,omitempty"`
	OpenSearchStreamingLambdaFunction             *Handle            `json:"OpenSearchStreamingLambdaFunction,omitempty" yaml:"OpenSearchStreamingLambdaFunction,omitempty"`
	OpenSearchModelLambdaMapping                  map[string]*Handle `json:"OpenSearchModelLambdaMapping,omitempty" yaml:"OpenSearchModelLambdaMapping,omitempty"`
}

// PredictionsResources are the resources of the @predictions stack.
type PredictionsResources struct {
	Buckets
	PredictionsLambdaFunction *Handle `json:"predictionsLambdaFunction,omitempty" yaml:"predictionsLambdaFunction,omitempty"`
	PredictionsLambdaIAMRole  *Handle `json:"predictionsLambdaIAMRole,omitempty" yaml:"predictionsLambdaIAMRole,omitempty"`
}

// Entry is one resource of a flattened tree. Address is the dot separated
// tree path, for example "models.Todo.modelDDBTable".
type Entry struct {
	Address string
	Handle  *Handle
}

// IsEmpty reports whether the tree holds no resources.
func (t *ResourceTree) IsEmpty() bool {
	return t == nil || len(t.Entries()) == 0
}

// Entries flattens the tree, sorted by address.
func (t *ResourceTree) Entries() []Entry {
	if t == nil {
		return nil
	}
	var out []Entry
	add := func(h *Handle, segs ...string) {
		if h != nil {
			out = append(out, Entry{Address: strings.Join(segs, "."), Handle: h})
		}
	}
	addMap := func(m map[string]*Handle, segs ...string) {
		for k, h := range m {
			add(h, append(append([]string(nil), segs...), k)...)
		}
	}
	addBuckets := func(b *Buckets, segs ...string) {
		addMap(b.Resolvers, append(segs, "resolvers")...)
		addMap(b.AppsyncFunctions, append(segs, "appsyncFunctions")...)
		addMap(b.Other, append(segs, "other")...)
	}

	if a := t.API; a != nil {
		addBuckets(&a.Buckets, "api")
		add(a.GraphQLAPI, "api", "GraphQLAPI")
		add(a.GraphQLAPIDefaultAPIKey, "api", "GraphQLAPIDefaultApiKey")
		add(a.GraphQLAPITransformerSchema, "api", "GraphQLAPITransformerSchema")
		add(a.GraphQLAPINoneDS, "api", "GraphQLAPINONEDS")
	}
	for name, m := range t.Models {
		addBuckets(&m.Buckets, "models", name)
		add(m.ModelDatasource, "models", name, "modelDatasource")
		add(m.ModelIamRole, "models", name, "modelIamRole")
		add(m.ModelIamRoleDefaultPolicy, "models", name, "modelIamRoleDefaultPolicy")
		add(m.ModelDDBTable, "models", name, "modelDDBTable")
	}
	if f := t.Function; f != nil {
		addBuckets(&f.Buckets, "function")
		addMap(f.LambdaDataSource, "function", "lambdaDataSource")
		addMap(f.LambdaDataSourceRole, "function", "lambdaDataSourceRole")
		addMap(f.LambdaDataSourceServiceRoleDefaultPolicy, "function", "lambdaDataSourceServiceRoleDefaultPolicy")
	}
	if h := t.HTTP; h != nil {
		addBuckets(&h.Buckets, "http")
		addMap(h.HTTPSDataSource, "http", "httpsDataSource")
		addMap(h.HTTPDataSourceServiceRole, "http", "httpDataSourceServiceRole")
	}
	if o := t.OpenSearch; o != nil {
		addBuckets(&o.Buckets, "opensearch")
		add(o.OpenSearchDataSource, "opensearch", "OpenSearchDataSource")
		add(o.OpenSearchAccessIAMRole, "opensearch", "OpenSearchAccessIAMRole")
		add(o.OpenSearchAccessIAMRoleDefaultPolicy, "opensearch", "OpenSearchAccessIAMRoleDefaultPolicy")
		add(o.OpenSearchDomain, "opensearch", "OpenSearchDomain")
		add(o.OpenSearchStreamingLambdaIAMRole, "opensearch", "OpenSearchStreamingLambdaIAMRole")
		add(o.OpenSearchStreamingLambdaIAMRoleDefaultPolicy, "opensearch", "OpenSearchStreamingLambdaIAMRoleDefaultPolicy")
		add(o.OpenSearchStreamingLambdaFunction, "opensearch", "OpenSearchStreamingLambdaFunction")
		addMap(o.OpenSearchModelLambdaMapping, "opensearch", "OpenSearchModelLambdaMapping")
	}
	if p := t.Predictions; p != nil {
		addBuckets(&p.Buckets, "predictions")
		add(p.PredictionsLambdaFunction, "predictions", "predictionsLambdaFunction")
		add(p.PredictionsLambdaIAMRole, "predictions", "predictionsLambdaIAMRole")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Select returns the entries whose address matches pattern. Patterns are
// dot separated; each segment is matched with path.Match, and a final "**"
// segment matches any remaining segments.
func (t *ResourceTree) Select(pattern string) ([]Entry, error) {
	sel, err := compileSelector(pattern)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range t.Entries() {
		if sel.match(e.Address) {
			out = append(out, e)
		}
	}
	return out, nil
}
