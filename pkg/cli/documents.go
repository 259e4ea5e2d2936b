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

package cli

import (
	"github.com/NVIDIA/gqlstack/pkg/bundle"
	"github.com/NVIDIA/gqlstack/pkg/compile"
	"github.com/NVIDIA/gqlstack/pkg/config"
	"github.com/NVIDIA/gqlstack/pkg/header"
	"github.com/NVIDIA/gqlstack/pkg/version"
)

type stackMappingDocument struct {
	header.Header `json:",inline" yaml:",inline"`
	StackMapping  map[string]string `json:"stackMapping" yaml:"stackMapping"`
}

func newStackMappingDocument(apiName string, mappings map[string]string) *stackMappingDocument {
	return &stackMappingDocument{
		Header: header.New(header.KindStackMapping,
			header.WithVersion(version.Current),
			header.WithMetadata("api", apiName)),
		StackMapping: mappings,
	}
}

type overrideTreeDocument struct {
	header.Header `json:",inline" yaml:",inline"`
	Entries       []overrideEntry `json:"entries" yaml:"entries"`
}

func newOverrideTreeDocument(selector string, entries []overrideEntry) *overrideTreeDocument {
	return &overrideTreeDocument{
		Header: header.New(header.KindOverrideTree,
			header.WithVersion(version.Current),
			header.WithMetadata("selector", selector)),
		Entries: entries,
	}
}

type compileResultDocument struct {
	header.Header       `json:",inline" yaml:",inline"`
	Result              *bundle.Result    `json:"result" yaml:"result"`
	Stacks              []string          `json:"stacks" yaml:"stacks"`
	UserOverriddenSlots []string          `json:"userOverriddenSlots,omitempty" yaml:"userOverriddenSlots,omitempty"`
	StackMapping        map[string]string `json:"stackMapping,omitempty" yaml:"stackMapping,omitempty"`
	OverrideDiff        string            `json:"overrideDiff,omitempty" yaml:"overrideDiff,omitempty"`
}

func newCompileResultDocument(cfg *config.Config, out *compile.Output) *compileResultDocument {
	return &compileResultDocument{
		Header: header.New(header.KindCompileResult,
			header.WithVersion(version.Current),
			header.WithMetadata("api", cfg.APIName()),
			header.WithMetadata("env", cfg.EnvName()),
			header.WithMetadata("runId", out.Result.RunID)),
		Result:              out.Result,
		Stacks:              out.Resources.StackNames(),
		UserOverriddenSlots: out.Resources.UserOverriddenSlots,
		StackMapping:        out.Resources.StackMapping,
		OverrideDiff:        out.OverrideDiff,
	}
}
