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

package template

import (
	"fmt"
	"os"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// FormatVersion is the only CloudFormation template format version.
const FormatVersion = "2010-09-09"

// Well-known resource types the compiler reasons about.
const (
	TypeStack                 = "AWS::CloudFormation::Stack"
	TypeGraphQLAPI            = "AWS::AppSync::GraphQLApi"
	TypeGraphQLSchema         = "AWS::AppSync::GraphQLSchema"
	TypeResolver              = "AWS::AppSync::Resolver"
	TypeFunctionConfiguration = "AWS::AppSync::FunctionConfiguration"
)

// Template is a CloudFormation template document.
type Template struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion,omitempty" yaml:"AWSTemplateFormatVersion,omitempty"`
	Description              string               `json:"Description,omitempty" yaml:"Description,omitempty"`
	Metadata                 map[string]any       `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
	Parameters               map[string]Parameter `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Mappings                 map[string]any       `json:"Mappings,omitempty" yaml:"Mappings,omitempty"`
	Conditions               map[string]any       `json:"Conditions,omitempty" yaml:"Conditions,omitempty"`
	Transform                any                  `json:"Transform,omitempty" yaml:"Transform,omitempty"`
	Resources                map[string]*Resource `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]*Output   `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// Parameter is a template parameter declaration.
type Parameter struct {
	Type                  string   `json:"Type" yaml:"Type"`
	Default               any      `json:"Default,omitempty" yaml:"Default,omitempty"`
	Description           string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	AllowedValues         []any    `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
	AllowedPattern        string   `json:"AllowedPattern,omitempty" yaml:"AllowedPattern,omitempty"`
	ConstraintDescription string   `json:"ConstraintDescription,omitempty" yaml:"ConstraintDescription,omitempty"`
	NoEcho                bool     `json:"NoEcho,omitempty" yaml:"NoEcho,omitempty"`
	MinLength             *int     `json:"MinLength,omitempty" yaml:"MinLength,omitempty"`
	MaxLength             *int     `json:"MaxLength,omitempty" yaml:"MaxLength,omitempty"`
	MinValue              *float64 `json:"MinValue,omitempty" yaml:"MinValue,omitempty"`
	MaxValue              *float64 `json:"MaxValue,omitempty" yaml:"MaxValue,omitempty"`
}

// Resource is a template resource entry.
type Resource struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	Condition           string         `json:"Condition,omitempty" yaml:"Condition,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
	Metadata            map[string]any `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
}

// UnmarshalJSON accepts DependsOn as either a single logical id or a list.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type                string         `json:"Type"`
		Properties          map[string]any `json:"Properties"`
		DependsOn           any            `json:"DependsOn"`
		Condition           string         `json:"Condition"`
		DeletionPolicy      string         `json:"DeletionPolicy"`
		UpdateReplacePolicy string         `json:"UpdateReplacePolicy"`
		Metadata            map[string]any `json:"Metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Resource{
		Type:                raw.Type,
		Properties:          raw.Properties,
		Condition:           raw.Condition,
		DeletionPolicy:      raw.DeletionPolicy,
		UpdateReplacePolicy: raw.UpdateReplacePolicy,
		Metadata:            raw.Metadata,
	}

	switch v := raw.DependsOn.(type) {
	case nil:
	case string:
		r.DependsOn = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("DependsOn entries must be strings, got %T", item)
			}
			r.DependsOn = append(r.DependsOn, s)
		}
	default:
		return fmt.Errorf("DependsOn must be a string or a list, got %T", v)
	}
	return nil
}

// Output is a template output entry.
type Output struct {
	Description string         `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any            `json:"Value" yaml:"Value"`
	Export      map[string]any `json:"Export,omitempty" yaml:"Export,omitempty"`
	Condition   string         `json:"Condition,omitempty" yaml:"Condition,omitempty"`
}

// New returns an empty template with the format version set.
func New(description string) *Template {
	return &Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              description,
		Parameters:               make(map[string]Parameter),
		Resources:                make(map[string]*Resource),
		Outputs:                  make(map[string]*Output),
		Conditions:               make(map[string]any),
		Mappings:                 make(map[string]any),
	}
}

// Clone deep copies the template through its JSON form.
func (t *Template) Clone() (*Template, error) {
	if t == nil {
		return nil, nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to copy template: %w", err)
	}
	var out Template
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to copy template: %w", err)
	}
	out.ensureMaps()
	return &out, nil
}

func (t *Template) ensureMaps() {
	if t.Parameters == nil {
		t.Parameters = make(map[string]Parameter)
	}
	if t.Resources == nil {
		t.Resources = make(map[string]*Resource)
	}
	if t.Outputs == nil {
		t.Outputs = make(map[string]*Output)
	}
}

// Parse decodes a JSON template, ensuring the maps are never nil.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	t.ensureMaps()
	return &t, nil
}

// ReadFile parses the JSON template stored at path.
func ReadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ResourceIDsOfType returns the sorted logical ids of resources whose type is
// one of types.
func (t *Template) ResourceIDsOfType(types ...string) []string {
	want := make(map[string]bool, len(types))
	for _, ty := range types {
		want[ty] = true
	}

	var ids []string
	for id, r := range t.Resources {
		if r != nil && want[r.Type] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ParameterNames returns the sorted parameter names.
func (t *Template) ParameterNames() []string {
	names := make([]string, 0, len(t.Parameters))
	for name := range t.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackFileName returns the file name used for a nested stack template.
func StackFileName(stackName string) string {
	if strings.HasSuffix(stackName, ".json") {
		return stackName
	}
	return stackName + ".json"
}
