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
	"fmt"
	"log/slog"
	"strings"

	"github.com/NVIDIA/gqlstack/pkg/construct"
)

// Suffixes and prefixes the directive transformers put on logical ids.
const (
	lambdaDataSourceSuffix              = "LambdaDataSource"
	lambdaDataSourceRoleSuffix          = "LambdaDataSourceServiceRole"
	lambdaDataSourceDefaultPolicySuffix = "LambdaDataSourceServiceRoleDefaultPolicy"
	httpDataSourceSuffix                = "DataSource"
	httpDataSourceRoleSuffix            = "Role"
	searchablePrefix                    = "Searchable"
	lambdaMappingSuffix                 = "LambdaMapping"
)

// NestedStackNames returns the logical ids of every nested stack resource
// under scope.
func NestedStackNames(scope *construct.Node) map[string]bool {
	names := make(map[string]bool)
	for _, r := range construct.Resources(scope) {
		if r.Type == construct.StackResourceType {
			names[r.LogicalID] = true
		}
	}
	return names
}

// ClassifyAll snapshots and classifies every typed resource under scope.
// Edits made through the returned handles are recorded in edits.
func ClassifyAll(scope *construct.Node, nestedStacks map[string]bool, edits *EditLog) []*Handle {
	var out []*Handle
	for _, r := range construct.Resources(scope) {
		if r.Type == "" {
			continue
		}
		c := Classify(r.Path, r.Path.Terminal(), nestedStacks, r.Type)
		out = append(out, NewHandle(r, c, edits))
	}
	return out
}

// Build classifies every resource under scope and groups it into a tree.
func Build(scope *construct.Node, edits *EditLog, log *slog.Logger) *ResourceTree {
	return Group(ClassifyAll(scope, NestedStackNames(scope), edits), log)
}

// Group sorts classified handles into the tree in a single pass. Handles
// whose stack type is outside the closed set are dropped. Grouping never
// fails: a handle that fits no named slot, or whose slot is taken, lands in
// the bucket's Other map.
func Group(handles []*Handle, log *slog.Logger) *ResourceTree {
	if log == nil {
		log = slog.Default()
	}
	g := &grouper{tree: &ResourceTree{}, log: log}
	for _, h := range handles {
		g.add(h)
	}
	return g.tree
}

type grouper struct {
	tree *ResourceTree
	log  *slog.Logger
}

func (g *grouper) add(h *Handle) {
	ref := h.Classification().Stack()
	if !ref.StackType.IsValid() {
		g.log.Debug("dropping resource outside known stack types",
			"logicalId", h.LogicalID(), "stackType", ref.StackType)
		return
	}

	var b *Buckets
	switch ref.StackType {
	case StackTypeAPI:
		b = &g.api().Buckets
	case StackTypeModels:
		b = &g.model(ref.StackName).Buckets
	case StackTypeFunction:
		b = &g.function().Buckets
	case StackTypeHTTP:
		b = &g.http().Buckets
	case StackTypeOpenSearch:
		b = &g.openSearch().Buckets
	case StackTypePredictions:
		b = &g.predictions().Buckets
	}

	switch h.Kind() {
	case KindResolver:
		b.Resolvers = g.put(b.Resolvers, h.Name(), h)
		return
	case KindFunctionConfiguration:
		b.AppsyncFunctions = g.put(b.AppsyncFunctions, h.Name(), h)
		return
	}

	var placed bool
	switch ref.StackType {
	case StackTypeAPI:
		placed = g.placeAPI(h)
	case StackTypeModels:
		placed = g.placeModel(g.model(ref.StackName), h)
	case StackTypeFunction:
		placed = g.placeFunction(h)
	case StackTypeHTTP:
		placed = g.placeHTTP(h)
	case StackTypeOpenSearch:
		placed = g.placeOpenSearch(h)
	case StackTypePredictions:
		placed = g.placePredictions(h)
	}
	if !placed {
		b.Other = g.put(b.Other, h.Name(), h)
	}
}

func (g *grouper) api() *APIResources {
	if g.tree.API == nil {
		g.tree.API = &APIResources{}
	}
	return g.tree.API
}

func (g *grouper) model(name string) *ModelResources {
	if g.tree.Models == nil {
		g.tree.Models = make(map[string]*ModelResources)
	}
	m, ok := g.tree.Models[name]
	if !ok {
		m = &ModelResources{}
		g.tree.Models[name] = m
	}
	return m
}

func (g *grouper) function() *FunctionResources {
	if g.tree.Function == nil {
		g.tree.Function = &FunctionResources{}
	}
	return g.tree.Function
}

func (g *grouper) http() *HTTPResources {
	if g.tree.HTTP == nil {
		g.tree.HTTP = &HTTPResources{}
	}
	return g.tree.HTTP
}

func (g *grouper) openSearch() *OpenSearchResources {
	if g.tree.OpenSearch == nil {
		g.tree.OpenSearch = &OpenSearchResources{}
	}
	return g.tree.OpenSearch
}

func (g *grouper) predictions() *PredictionsResources {
	if g.tree.Predictions == nil {
		g.tree.Predictions = &PredictionsResources{}
	}
	return g.tree.Predictions
}

// put stores h under key, falling back to the full construct path when the
// key is already taken. Keys are restricted to letters and digits so they
// stay addressable by selectors.
func (g *grouper) put(m map[string]*Handle, key string, h *Handle) map[string]*Handle {
	if m == nil {
		m = make(map[string]*Handle)
	}
	key = construct.SanitizeID(key)
	if key == "" {
		key = construct.SanitizeID(h.LogicalID())
	}
	if prev, taken := m[key]; taken {
		alt := construct.SanitizeID(h.Path().String())
		g.log.Warn("resource name collision, keying by construct path",
			"name", key, "path", h.Path().String(), "existing", prev.Path().String())
		key = alt
		for i := 2; ; i++ {
			if _, dup := m[key]; !dup {
				break
			}
			key = fmt.Sprintf("%s%d", alt, i)
		}
	}
	m[key] = h
	return m
}

// slot assigns h to an empty named slot.
func slot(dst **Handle, h *Handle) bool {
	if *dst != nil {
		return false
	}
	*dst = h
	return true
}

func (g *grouper) placeAPI(h *Handle) bool {
	a := g.api()
	switch h.Kind() {
	case KindGraphQLAPI:
		return slot(&a.GraphQLAPI, h)
	case KindAPIKey:
		return slot(&a.GraphQLAPIDefaultAPIKey, h)
	case KindGraphQLSchema:
		return slot(&a.GraphQLAPITransformerSchema, h)
	case KindDataSource:
		return slot(&a.GraphQLAPINoneDS, h)
	}
	return false
}

func (g *grouper) placeModel(m *ModelResources, h *Handle) bool {
	switch h.Kind() {
	case KindDataSource:
		return slot(&m.ModelDatasource, h)
	case KindRole:
		return slot(&m.ModelIamRole, h)
	case KindPolicy:
		return slot(&m.ModelIamRoleDefaultPolicy, h)
	case KindTable:
		return slot(&m.ModelDDBTable, h)
	}
	return false
}

func (g *grouper) placeFunction(h *Handle) bool {
	f := g.function()
	id := h.LogicalID()
	switch h.Kind() {
	case KindDataSource:
		f.LambdaDataSource = g.put(f.LambdaDataSource, strings.TrimSuffix(id, lambdaDataSourceSuffix), h)
	case KindRole:
		f.LambdaDataSourceRole = g.put(f.LambdaDataSourceRole, strings.TrimSuffix(id, lambdaDataSourceRoleSuffix), h)
	case KindPolicy:
		f.LambdaDataSourceServiceRoleDefaultPolicy = g.put(f.LambdaDataSourceServiceRoleDefaultPolicy,
			strings.TrimSuffix(id, lambdaDataSourceDefaultPolicySuffix), h)
	default:
		return false
	}
	return true
}

func (g *grouper) placeHTTP(h *Handle) bool {
	hs := g.http()
	id := h.LogicalID()
	switch h.Kind() {
	case KindDataSource:
		hs.HTTPSDataSource = g.put(hs.HTTPSDataSource, strings.TrimSuffix(id, httpDataSourceSuffix), h)
	case KindRole:
		hs.HTTPDataSourceServiceRole = g.put(hs.HTTPDataSourceServiceRole, strings.TrimSuffix(id, httpDataSourceRoleSuffix), h)
	default:
		return false
	}
	return true
}

func (g *grouper) placeOpenSearch(h *Handle) bool {
	o := g.openSearch()
	if h.Kind() == KindEventSourceMapping {
		model := strings.TrimSuffix(strings.TrimPrefix(h.LogicalID(), searchablePrefix), lambdaMappingSuffix)
		o.OpenSearchModelLambdaMapping = g.put(o.OpenSearchModelLambdaMapping, model, h)
		return true
	}

	switch h.Name() {
	case "OpenSearchDataSource":
		return slot(&o.OpenSearchDataSource, h)
	case "OpenSearchAccessIAMRole":
		return slot(&o.OpenSearchAccessIAMRole, h)
	case "OpenSearchAccessIAMRoleDefaultPolicy":
		return slot(&o.OpenSearchAccessIAMRoleDefaultPolicy, h)
	case "OpenSearchDomain":
		return slot(&o.OpenSearchDomain, h)
	case "OpenSearchStreamingLambdaIAMRole":
		return slot(&o.OpenSearchStreamingLambdaIAMRole, h)
	case "OpenSearchStreamingLambdaIAMRoleDefaultPolicy":
		return slot(&o.OpenSearchStreamingLambdaIAMRoleDefaultPolicy, h)
	case "OpenSearchStreamingLambdaFunction":
		return slot(&o.OpenSearchStreamingLambdaFunction, h)
	}
	return false
}

func (g *grouper) placePredictions(h *Handle) bool {
	p := g.predictions()
	switch h.Kind() {
	case KindLambdaFunction:
		return slot(&p.PredictionsLambdaFunction, h)
	case KindRole:
		return slot(&p.PredictionsLambdaIAMRole, h)
	}
	return false
}
