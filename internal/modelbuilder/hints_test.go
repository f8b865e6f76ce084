package modelbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/catalog"
)

func TestBuildHintsRanksBookmarksFirst(t *testing.T) {
	ix, err := catalog.Build([]catalog.RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: catalog.TimeSlot{Days: []catalog.Weekday{catalog.Mon}, StartMinute: 540, EndMinute: 600}, Score: 5},
		{RID: "r2", CourseID: "CAS-CS-220", Semester: 0, Slot: catalog.TimeSlot{Days: []catalog.Weekday{catalog.Tue}, StartMinute: 540, EndMinute: 600}, Score: 9},
	}, nil, nil, nil, nil)
	require.NoError(t, err)

	m := newTestModelFromIndex(t, ix, []string{"s0"}, nil, 0, 5)
	m.BuildHints([]catalog.CourseID{"CAS-CS-111"})

	hints := m.Hints()
	require.NotEmpty(t, hints)

	v111, ok := m.XVar("CAS-CS-111", 0)
	require.True(t, ok)
	for _, h := range hints {
		if h.Var == v111 {
			assert.Equal(t, int64(1), h.Value)
		}
	}
}

func TestBuildHintsSkipsCompletedCourses(t *testing.T) {
	ix, err := catalog.Build([]catalog.RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: catalog.TimeSlot{Days: []catalog.Weekday{catalog.Mon}, StartMinute: 540, EndMinute: 600}, Score: 5},
	}, nil, nil, nil, nil)
	require.NoError(t, err)

	m := newTestModelFromIndex(t, ix, []string{"s0"}, []catalog.CourseID{"CAS-CS-111"}, 0, 5)
	m.BuildHints(nil)
	assert.Empty(t, m.Hints())
}
