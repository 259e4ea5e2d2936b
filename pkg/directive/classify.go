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
	"strings"

	"github.com/NVIDIA/gqlstack/pkg/construct"
)

// StackType is the top-level bucket of the resource tree.
type StackType string

const (
	StackTypeAPI         StackType = "api"
	StackTypeModels      StackType = "models"
	StackTypeFunction    StackType = "function"
	StackTypeHTTP        StackType = "http"
	StackTypeOpenSearch  StackType = "opensearch"
	StackTypePredictions StackType = "predictions"
)

// StackTypes returns the closed set of stack types in tree order.
func StackTypes() []StackType {
	return []StackType{
		StackTypeAPI,
		StackTypeModels,
		StackTypeFunction,
		StackTypeHTTP,
		StackTypeOpenSearch,
		StackTypePredictions,
	}
}

// IsValid reports whether t belongs to the closed set.
func (t StackType) IsValid() bool {
	switch t {
	case StackTypeAPI, StackTypeModels, StackTypeFunction, StackTypeHTTP,
		StackTypeOpenSearch, StackTypePredictions:
		return true
	default:
		return false
	}
}

// Nested stack names emitted by the directive transformers. Every other
// nested stack belongs to a single @model type.
const (
	FunctionStackName    = "FunctionDirectiveStack"
	HTTPStackName        = "HttpStack"
	SearchableStackName  = "SearchableStack"
	PredictionsStackName = "PredictionsDirectiveStack"
)

var nestedStackTypes = map[string]StackType{
	FunctionStackName:    StackTypeFunction,
	HTTPStackName:        StackTypeHTTP,
	SearchableStackName:  StackTypeOpenSearch,
	PredictionsStackName: StackTypePredictions,
}

// NestedStackType resolves the bucket of a nested stack, defaulting to models.
func NestedStackType(stackName string) StackType {
	if t, ok := nestedStackTypes[stackName]; ok {
		return t
	}
	return StackTypeModels
}

// StackRef names the stack owning a resource.
type StackRef struct {
	StackName string    `json:"stackName"`
	StackType StackType `json:"stackType"`
}

// Classification is the semantic address of a generated resource.
// Exactly one of RootStack and NestedStack is set.
type Classification struct {
	ResourceName string    `json:"resourceName"`
	ResourceType string    `json:"resourceType"`
	RootStack    *StackRef `json:"rootStack,omitempty"`
	NestedStack  *StackRef `json:"nestedStack,omitempty"`
}

// Stack returns whichever stack reference is set.
func (c Classification) Stack() StackRef {
	if c.NestedStack != nil {
		return *c.NestedStack
	}
	if c.RootStack != nil {
		return *c.RootStack
	}
	return StackRef{}
}

// IsNested reports whether the resource lives in a nested stack.
func (c Classification) IsNested() bool {
	return c.NestedStack != nil
}

// Classify assigns a semantic address to the resource at path. id is the
// resource's own terminal construct id and nestedStacks is the set of nested
// stack names present in the tree.
//
// The resource name is the concatenation of the construct path below the root
// scope (and below the nested stack, when nested). Paths nested more than two
// constructs deep under a stack are concatenated naively, so distinct paths
// such as A/BC and AB/C yield the same name; the tree builder disambiguates
// such collisions when it groups resources.
func Classify(path construct.Path, id string, nestedStacks map[string]bool, resourceType string) Classification {
	segs := path.Clone()
	if id == construct.WrapperID && segs.Terminal() == construct.WrapperID {
		segs = segs[:len(segs)-1]
	}

	c := Classification{ResourceType: resourceType}
	if len(segs) == 0 {
		return c
	}
	rootName := segs[0]

	if len(segs) > 1 && nestedStacks[segs[1]] {
		stackName := segs[1]
		c.ResourceName = strings.Join(segs[2:], "")
		c.NestedStack = &StackRef{
			StackName: stackName,
			StackType: NestedStackType(stackName),
		}
		return c
	}

	c.ResourceName = strings.Join(segs[1:], "")
	c.RootStack = &StackRef{
		StackName: rootName,
		StackType: StackTypeAPI,
	}
	return c
}
