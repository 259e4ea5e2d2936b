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

	json "github.com/goccy/go-json"

	"github.com/NVIDIA/gqlstack/pkg/construct"
)

// Handle is what override code sees of one generated resource: a read-only
// snapshot of its properties taken when the tree was built, plus Set and
// Delete, which record edits instead of mutating the resource. The recorded
// edits are applied by ApplyEdits once the override returns.
type Handle struct {
	logicalID      string
	resourceType   string
	path           construct.Path
	kind           Kind
	classification Classification
	properties     map[string]any
	log            *EditLog
}

// NewHandle snapshots r. Edits made through the handle are recorded in log.
func NewHandle(r *construct.Resource, c Classification, log *EditLog) *Handle {
	props, _ := deepCopy(r.Properties).(map[string]any)
	if props == nil {
		props = make(map[string]any)
	}
	return &Handle{
		logicalID:      r.LogicalID,
		resourceType:   r.Type,
		path:           r.Path.Clone(),
		kind:           KindOf(r.Type),
		classification: c,
		properties:     props,
		log:            log,
	}
}

// LogicalID returns the resource's logical id in its stack template.
func (h *Handle) LogicalID() string { return h.logicalID }

// Type returns the CloudFormation resource type.
func (h *Handle) Type() string { return h.resourceType }

// Kind returns the resource kind.
func (h *Handle) Kind() Kind { return h.kind }

// Path returns the construct path of the resource.
func (h *Handle) Path() construct.Path { return h.path.Clone() }

// Name returns the classified resource name.
func (h *Handle) Name() string { return h.classification.ResourceName }

// Classification returns the semantic address of the resource.
func (h *Handle) Classification() Classification { return h.classification }

// Properties returns a copy of the property snapshot.
func (h *Handle) Properties() map[string]any {
	out, _ := deepCopy(h.properties).(map[string]any)
	return out
}

// Property reads a dot separated property path from the snapshot. Edits
// recorded through Set and Delete are not reflected.
func (h *Handle) Property(path string) (any, bool) {
	segs, err := splitProperty(path)
	if err != nil {
		return nil, false
	}
	v, ok := lookupProperty(h.properties, segs)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Set records an edit assigning value at the dot separated property path.
func (h *Handle) Set(path string, value any) {
	h.log.record(Edit{
		Address:   h.path.String(),
		LogicalID: h.logicalID,
		Op:        EditSet,
		Property:  strings.TrimSpace(path),
		Value:     deepCopy(value),
	})
}

// Delete records an edit removing the dot separated property path.
func (h *Handle) Delete(path string) {
	h.log.record(Edit{
		Address:   h.path.String(),
		LogicalID: h.logicalID,
		Op:        EditDelete,
		Property:  strings.TrimSpace(path),
	})
}

// MarshalJSON renders the handle as the documented override view of a resource.
func (h *Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"logicalId":  h.logicalID,
		"type":       h.resourceType,
		"properties": h.properties,
	})
}

// celValue is the map form a handle takes inside CEL expressions.
func (h *Handle) celValue() map[string]any {
	return map[string]any{
		"logicalId":  h.logicalID,
		"type":       h.resourceType,
		"name":       h.classification.ResourceName,
		"path":       h.path.String(),
		"properties": h.Properties(),
	}
}

// Value returns the map form of the handle used by expression evaluators:
// logicalId, type, name, path and a copy of properties.
func (h *Handle) Value() map[string]any {
	return h.celValue()
}
