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

package construct

import (
	"fmt"
	"strings"
	"unicode"
)

// StackResourceType is the CloudFormation type of a nested stack resource.
const StackResourceType = "AWS::CloudFormation::Stack"

// WrapperID is the terminal id a higher level construct gives the single
// CloudFormation resource it wraps.
const WrapperID = "Resource"

// Path is the ordered list of construct ids from the composition root to a node.
type Path []string

// String joins the path with "/".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Terminal returns the last segment, or "" for an empty path.
func (p Path) Terminal() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// Resource describes one CloudFormation resource in the construct tree.
// Properties is mutable; everything else is fixed at creation.
type Resource struct {
	LogicalID  string
	Type       string
	Path       Path
	Properties map[string]any
	DependsOn  []string
	Condition  string
}

// Node is an element of the construct tree. A node is either a plain
// grouping construct, a stack (the root or a nested stack), or the holder of
// exactly one Resource.
type Node struct {
	id       string
	parent   *Node
	children []*Node
	byID     map[string]*Node
	resource *Resource
	stack    bool

	// stackResource is the AWS::CloudFormation::Stack resource that deploys
	// this nested stack from its parent. Nil for the root and non-stacks.
	stackResource *Resource
}

// NewScope creates a composition root named name.
func NewScope(name string) *Node {
	return &Node{
		id:    name,
		byID:  make(map[string]*Node),
		stack: true,
	}
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsStack reports whether the node is the root or a nested stack.
func (n *Node) IsStack() bool { return n.stack }

// IsRoot reports whether the node is the composition root.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Resource returns the resource held by this node, if any.
func (n *Node) Resource() *Resource { return n.resource }

// StackResource returns the resource that deploys this nested stack.
func (n *Node) StackResource() *Resource { return n.stackResource }

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child returns the direct child with the given id.
func (n *Node) Child(id string) (*Node, bool) {
	c, ok := n.byID[id]
	return c, ok
}

// Path returns the construct path from the root to this node.
func (n *Node) Path() Path {
	var segs []string
	for cur := n; cur != nil; cur = cur.parent {
		segs = append(segs, cur.id)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// Root returns the composition root.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Stack returns the nearest enclosing stack. For a stack node it is the parent
// stack, so the nested stack resource lands in the stack that deploys it.
func (n *Node) Stack() *Node {
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.stack {
			return cur
		}
	}
	return n
}

// AddChild creates a grouping construct under n.
func (n *Node) AddChild(id string) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("construct id cannot be empty")
	}
	if strings.Contains(id, "/") {
		return nil, fmt.Errorf("construct id %q cannot contain '/'", id)
	}
	if n.resource != nil {
		return nil, fmt.Errorf("construct %s holds a resource and cannot have children", n.Path())
	}
	if _, exists := n.byID[id]; exists {
		return nil, fmt.Errorf("construct %s already has a child named %q", n.Path(), id)
	}

	child := &Node{
		id:     id,
		parent: n,
		byID:   make(map[string]*Node),
	}
	n.children = append(n.children, child)
	n.byID[id] = child
	return child, nil
}

// AddResource creates a node holding a CloudFormation resource. An empty
// logicalID is derived from the construct path relative to the owning stack.
func (n *Node) AddResource(id, logicalID, resourceType string, properties map[string]any) (*Resource, error) {
	if resourceType == "" {
		return nil, fmt.Errorf("resource %s/%s has no type", n.Path(), id)
	}
	child, err := n.AddChild(id)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	if logicalID == "" {
		logicalID = deriveLogicalID(child)
	}

	child.resource = &Resource{
		LogicalID:  logicalID,
		Type:       resourceType,
		Path:       child.Path(),
		Properties: properties,
	}
	return child.resource, nil
}

// AddNestedStack creates a nested stack named name under n, together with the
// AWS::CloudFormation::Stack resource that deploys it. The stack resource uses
// name as its logical id and lives at <name>.NestedStack/<name>.NestedStackResource
// in the enclosing stack.
func (n *Node) AddNestedStack(name string) (*Node, error) {
	if !n.stack {
		return nil, fmt.Errorf("nested stack %q must be created directly under a stack", name)
	}
	if !IsAlphanumeric(name) {
		return nil, fmt.Errorf("nested stack name %q must be alphanumeric", name)
	}

	stackNode, err := n.AddChild(name)
	if err != nil {
		return nil, err
	}
	stackNode.stack = true

	holder, err := n.AddChild(name + ".NestedStack")
	if err != nil {
		return nil, err
	}
	res, err := holder.AddResource(name+".NestedStackResource", name, StackResourceType, nil)
	if err != nil {
		return nil, err
	}
	stackNode.stackResource = res
	return stackNode, nil
}

// Walk visits n and all descendants depth-first in insertion order.
// Returning an error from fn stops the walk.
func Walk(n *Node, fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Resources returns every resource under n in walk order.
func Resources(n *Node) []*Resource {
	var out []*Resource
	_ = Walk(n, func(cur *Node) error {
		if cur.resource != nil {
			out = append(out, cur.resource)
		}
		return nil
	})
	return out
}

// Stacks returns n (when it is a stack) and every nested stack below it.
func Stacks(n *Node) []*Node {
	var out []*Node
	_ = Walk(n, func(cur *Node) error {
		if cur.stack {
			out = append(out, cur)
		}
		return nil
	})
	return out
}

// IsAlphanumeric reports whether s is non-empty and only contains ASCII
// letters and digits.
func IsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// SanitizeID strips every character that is not an ASCII letter or digit.
func SanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func deriveLogicalID(n *Node) string {
	owner := n.Stack()
	var segs []string
	for cur := n; cur != nil && cur != owner; cur = cur.parent {
		if cur == n && cur.id == WrapperID {
			continue
		}
		segs = append([]string{SanitizeID(cur.id)}, segs...)
	}
	return strings.Join(segs, "")
}
