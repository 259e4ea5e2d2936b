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
	"strconv"
	"strings"

	"github.com/NVIDIA/gqlstack/pkg/construct"
)

// EditOp is the operation an Edit performs.
type EditOp string

const (
	EditSet    EditOp = "set"
	EditDelete EditOp = "delete"
)

// Edit is one property change requested by override code. Address is the
// construct path of the target resource; Property is a dot separated path
// into its Properties, where numeric segments index lists.
type Edit struct {
	Address   string `json:"address" yaml:"address"`
	LogicalID string `json:"logicalId" yaml:"logicalId"`
	Op        EditOp `json:"op" yaml:"op"`
	Property  string `json:"property" yaml:"property"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// EditLog collects edits in the order they were requested.
type EditLog struct {
	edits []Edit
}

// Edits returns a copy of the recorded edits.
func (l *EditLog) Edits() []Edit {
	if l == nil {
		return nil
	}
	out := make([]Edit, len(l.edits))
	copy(out, l.edits)
	return out
}

// Len returns the number of recorded edits.
func (l *EditLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.edits)
}

func (l *EditLog) record(e Edit) {
	l.edits = append(l.edits, e)
}

// ApplyEdits applies edits, in order, to the resources under scope. It
// returns the number of edits applied; on error the edits before the failing
// one remain applied.
func ApplyEdits(scope *construct.Node, edits []Edit) (int, error) {
	if len(edits) == 0 {
		return 0, nil
	}

	byAddress := make(map[string]*construct.Resource)
	for _, r := range construct.Resources(scope) {
		byAddress[r.Path.String()] = r
	}

	for i, e := range edits {
		res, ok := byAddress[e.Address]
		if !ok {
			return i, fmt.Errorf("edit %d targets unknown resource %s", i, e.Address)
		}
		segs, err := splitProperty(e.Property)
		if err != nil {
			return i, fmt.Errorf("edit %d on %s: %w", i, e.LogicalID, err)
		}
		if res.Properties == nil {
			res.Properties = make(map[string]any)
		}

		switch e.Op {
		case EditSet:
			err = setProperty(res.Properties, segs, deepCopy(e.Value))
		case EditDelete:
			err = deleteProperty(res.Properties, segs)
		default:
			err = fmt.Errorf("unknown edit op %q", e.Op)
		}
		if err != nil {
			return i, fmt.Errorf("edit %d on %s.%s: %w", i, e.LogicalID, e.Property, err)
		}
	}
	return len(edits), nil
}

func splitProperty(p string) ([]string, error) {
	if strings.TrimSpace(p) == "" {
		return nil, fmt.Errorf("property path cannot be empty")
	}
	segs := strings.Split(p, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("property path %q has an empty segment", p)
		}
	}
	return segs, nil
}

// lookupProperty reads a value from a property tree.
func lookupProperty(root map[string]any, segs []string) (any, bool) {
	var cur any = root
	for _, s := range segs {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[s]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(s)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func setProperty(root map[string]any, segs []string, value any) error {
	var cur any = root
	for i, s := range segs {
		last := i == len(segs)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[s] = value
				return nil
			}
			next, ok := node[s]
			if !ok || next == nil {
				next = make(map[string]any)
				node[s] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("segment %q indexes a list", s)
			}
			if idx < 0 || idx >= len(node) {
				return fmt.Errorf("index %d out of range [0,%d)", idx, len(node))
			}
			if last {
				node[idx] = value
				return nil
			}
			if node[idx] == nil {
				node[idx] = make(map[string]any)
			}
			cur = node[idx]
		default:
			return fmt.Errorf("segment %q traverses a scalar value", s)
		}
	}
	return nil
}

func deleteProperty(root map[string]any, segs []string) error {
	parent, ok := lookupProperty(root, segs[:len(segs)-1])
	if !ok {
		return nil
	}
	last := segs[len(segs)-1]
	switch node := parent.(type) {
	case map[string]any:
		delete(node, last)
		return nil
	case []any:
		return fmt.Errorf("cannot delete list element %q, set the list instead", last)
	default:
		return nil
	}
}

// deepCopy copies JSON-shaped values so snapshots and edits never alias the
// live property maps.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	default:
		return v
	}
}
