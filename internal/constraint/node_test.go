package constraint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/catalog"
)

func TestNodeUnmarshalJSONRejectsUnknownKind(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"kind":"xor","course_id":"CAS-CS-111"}`), &n)
	assert.Error(t, err)
}

func TestNodeUnmarshalJSONParsesNestedTree(t *testing.T) {
	raw := `{
		"kind": "and",
		"children": [
			{"kind": "course", "course_id": "CAS-CS-111"},
			{"kind": "not", "child": {"kind": "course", "course_id": "CAS-CS-220"}}
		]
	}`
	var n Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	assert.Equal(t, NodeAnd, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, NodeCourse, n.Children[0].Kind)
	assert.Equal(t, NodeNot, n.Children[1].Kind)
	require.NotNil(t, n.Children[1].Child)
	assert.Equal(t, catalog.CourseID("CAS-CS-220"), n.Children[1].Child.CourseID)
}

func TestNodeCourseIDsWalksAndOrNotWhen(t *testing.T) {
	n := &Node{
		Kind: NodeAnd,
		Children: []*Node{
			{Kind: NodeCourse, CourseID: "CAS-CS-111"},
			{Kind: NodeOr, Children: []*Node{
				{Kind: NodeCourse, CourseID: "CAS-CS-220"},
				{Kind: NodeWhen, Offset: 1, Child: &Node{Kind: NodeCourse, CourseID: "CAS-CS-330"}},
			}},
			{Kind: NodeNot, Child: &Node{Kind: NodeCourse, CourseID: "CAS-MA-115"}},
			{Kind: NodeGroup, GroupName: "core"},
		},
	}
	want := []catalog.CourseID{"CAS-CS-111", "CAS-CS-220", "CAS-CS-330", "CAS-MA-115"}
	assert.ElementsMatch(t, want, n.CourseIDs())
}

func TestNodeCourseIDsNilReceiver(t *testing.T) {
	var n *Node
	assert.Nil(t, n.CourseIDs())
}

func TestNodeValidateAndOrRequiresChildren(t *testing.T) {
	n := &Node{Kind: NodeAnd}
	assert.Error(t, n.Validate())

	n2 := &Node{Kind: NodeOr, Children: []*Node{{Kind: NodeCourse, CourseID: "CAS-CS-111"}}}
	assert.NoError(t, n2.Validate())
}

func TestNodeValidateNotWhenRequiresChild(t *testing.T) {
	n := &Node{Kind: NodeNot}
	assert.Error(t, n.Validate())

	n2 := &Node{Kind: NodeWhen, Child: &Node{Kind: NodeCourse, CourseID: "CAS-CS-111"}}
	assert.NoError(t, n2.Validate())
}

func TestNodeValidateCourseRequiresCourseID(t *testing.T) {
	n := &Node{Kind: NodeCourse}
	assert.Error(t, n.Validate())
}

func TestNodeValidateGroupRequiresGroupName(t *testing.T) {
	n := &Node{Kind: NodeGroup}
	assert.Error(t, n.Validate())
}

func TestNodeValidateRangeRequiresOrderedBounds(t *testing.T) {
	n := &Node{Kind: NodeRange, MinNum: 5, MaxNum: 2}
	assert.Error(t, n.Validate())

	n2 := &Node{Kind: NodeRange, MinNum: 2, MaxNum: 5}
	assert.NoError(t, n2.Validate())
}

func TestNodeValidateAttributeRequiresKey(t *testing.T) {
	n := &Node{Kind: NodeAttribute}
	assert.Error(t, n.Validate())

	n2 := &Node{Kind: NodeAttribute, AttrKey: "level", AttrValue: "grad"}
	assert.NoError(t, n2.Validate())
}

func TestNodeValidateNilNode(t *testing.T) {
	var n *Node
	assert.Error(t, n.Validate())
}
