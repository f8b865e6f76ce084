// Package constraint implements the declarative constraint language: a
// typed AST for nested boolean/counting requirement expressions, and a
// closed set of flat top-level constraint kinds dispatched by the model
// builder.
package constraint

import (
	"encoding/json"
	"fmt"

	"github.com/degreepath/scheduler/internal/catalog"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// NodeKind tags the recursive requirement-expression variants.
type NodeKind string

const (
	NodeAnd       NodeKind = "and"
	NodeOr        NodeKind = "or"
	NodeNot       NodeKind = "not"
	NodeWhen      NodeKind = "when"
	NodeCourse    NodeKind = "course"
	NodeGroup     NodeKind = "group"
	NodeRange     NodeKind = "range"
	NodeAttribute NodeKind = "attribute"
)

// Node is one node of a nested requirement expression, reified against a
// semester index by the model builder (see internal/modelbuilder.Reify).
type Node struct {
	Kind     NodeKind `json:"kind"`
	Children []*Node  `json:"children,omitempty"` // And, Or
	Child    *Node    `json:"child,omitempty"`    // Not, When

	Offset int `json:"offset,omitempty"` // When

	CourseID catalog.CourseID `json:"course_id,omitempty"` // Course

	GroupName string `json:"group,omitempty"` // Group
	Count     int    `json:"count,omitempty"` // Group, Range

	School string `json:"school,omitempty"` // Range
	Dept   string `json:"dept,omitempty"`   // Range
	MinNum int    `json:"min_num,omitempty"`
	MaxNum int    `json:"max_num,omitempty"`

	AttrKey   string `json:"key,omitempty"`   // Attribute
	AttrValue string `json:"value,omitempty"` // Attribute
}

// UnmarshalJSON decodes a node and its children/child recursively. Node is
// self-referential, which works fine with the standard decoder; this
// override exists only to validate Kind eagerly and produce a typed
// InvalidInput error instead of a zero value.
func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("malformed requirement node: %v", err))
	}
	switch NodeKind(a.Kind) {
	case NodeAnd, NodeOr, NodeNot, NodeWhen, NodeCourse, NodeGroup, NodeRange, NodeAttribute:
	default:
		return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("unknown requirement node kind %q", a.Kind))
	}
	*n = Node(a)
	return nil
}

// CourseIDs collects every course id named by a Course leaf anywhere in the
// tree, so the model builder can size its decision variables to include
// courses that only ever appear inside a requirement expression.
func (n *Node) CourseIDs() []catalog.CourseID {
	if n == nil {
		return nil
	}
	var out []catalog.CourseID
	switch n.Kind {
	case NodeCourse:
		out = append(out, n.CourseID)
	case NodeNot, NodeWhen:
		out = append(out, n.Child.CourseIDs()...)
	case NodeAnd, NodeOr:
		for _, c := range n.Children {
			out = append(out, c.CourseIDs()...)
		}
	}
	return out
}

// Validate recursively checks shape invariants (right arity of children
// per kind) before the node ever reaches the builder.
func (n *Node) Validate() error {
	if n == nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, "nil requirement node")
	}
	switch n.Kind {
	case NodeAnd, NodeOr:
		if len(n.Children) == 0 {
			return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("%s requires at least one child", n.Kind))
		}
		for _, c := range n.Children {
			if err := c.Validate(); err != nil {
				return err
			}
		}
	case NodeNot, NodeWhen:
		if n.Child == nil {
			return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("%s requires a child", n.Kind))
		}
		if err := n.Child.Validate(); err != nil {
			return err
		}
	case NodeCourse:
		if n.CourseID == "" {
			return appErrors.Clone(appErrors.ErrInvalidInput, "course node requires course_id")
		}
	case NodeGroup:
		if n.GroupName == "" {
			return appErrors.Clone(appErrors.ErrInvalidInput, "group node requires group")
		}
	case NodeRange:
		if n.MinNum > n.MaxNum {
			return appErrors.Clone(appErrors.ErrInvalidInput, "range node requires min_num <= max_num")
		}
	case NodeAttribute:
		if n.AttrKey == "" {
			return appErrors.Clone(appErrors.ErrInvalidInput, "attribute node requires key")
		}
	}
	return nil
}
