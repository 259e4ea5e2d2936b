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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNew(t *testing.T) {
	h := New(KindStackMapping, WithVersion("v1.2.0"), WithMetadata("api", "todo"), WithMetadata("empty", ""))

	assert.Equal(t, KindStackMapping, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "v1.2.0", h.Metadata["version"])
	assert.Equal(t, "todo", h.Metadata["api"])
	assert.NotContains(t, h.Metadata, "empty")

	_, err := time.Parse(time.RFC3339, h.Metadata["timestamp"])
	assert.NoError(t, err)
}

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindStackMapping, true},
		{KindOverrideTree, true},
		{KindCompileResult, true},
		{Kind("Recipe"), false},
		{Kind(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsValid())
		})
	}
}

func TestHeader_Inline(t *testing.T) {
	doc := struct {
		Header `yaml:",inline"`
		Items  []string `yaml:"items"`
	}{
		Header: New(KindOverrideTree),
		Items:  []string{"models.Todo.modelDDBTable"},
	}

	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Equal(t, "OverrideTree", raw["kind"])
	assert.Equal(t, APIVersion, raw["apiVersion"])
	assert.Contains(t, raw, "items")
}
