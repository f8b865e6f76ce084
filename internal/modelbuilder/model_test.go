package modelbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/objective"
)

func buildIndex(t *testing.T) *catalog.Index {
	t.Helper()
	slot := func(start, end int) catalog.TimeSlot {
		return catalog.TimeSlot{Days: []catalog.Weekday{catalog.Mon}, StartMinute: start, EndMinute: end}
	}
	relations := []catalog.RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: slot(540, 630), Score: 1},
		{RID: "r2", CourseID: "CAS-CS-111", Semester: 0, Slot: slot(700, 760), Score: 1},
		{RID: "r3", CourseID: "CAS-CS-220", Semester: 0, Slot: slot(540, 630), Score: 1},
	}
	ix, err := catalog.Build(relations, nil, nil, nil, nil)
	require.NoError(t, err)
	return ix
}

func newTestModelFromIndex(t *testing.T, ix *catalog.Index, semesters []string, completed []catalog.CourseID, minLoad, maxLoad int) *Model {
	t.Helper()
	obj := objective.NewManager(0, nil)
	m, err := NewBuilder(ix, ix.CourseIDs(), semesters, completed, minLoad, maxLoad, obj, Limits{})
	require.NoError(t, err)
	return m
}

func TestNewBuilderRejectsEmptySemesters(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	_, err := NewBuilder(ix, []catalog.CourseID{"CAS-CS-111"}, nil, nil, 0, 5, obj, Limits{})
	assert.Error(t, err)
}

func TestNewBuilderRejectsInvalidLoadBounds(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	_, err := NewBuilder(ix, []catalog.CourseID{"CAS-CS-111"}, []string{"s0"}, nil, 5, 2, obj, Limits{})
	assert.Error(t, err)
}

func TestNewBuilderAllocatesCoreVariables(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	universe := []catalog.CourseID{"CAS-CS-111", "CAS-CS-220", "CAS-CS-111"} // duplicate should dedup
	m, err := NewBuilder(ix, universe, []string{"s0", "s1"}, nil, 0, 5, obj, Limits{})
	require.NoError(t, err)

	assert.Equal(t, []catalog.CourseID{"CAS-CS-111", "CAS-CS-220"}, m.Universe())
	assert.Equal(t, 1, m.LastIndex())

	_, ok := m.XVar("CAS-CS-111", CompletedSemester)
	assert.True(t, ok)
	_, ok = m.XVar("CAS-CS-111", 0)
	assert.True(t, ok)
	_, ok = m.XVar("CAS-CS-111", 1)
	assert.True(t, ok)
	_, ok = m.XVar("CAS-CS-999", 0)
	assert.False(t, ok)

	_, ok = m.ZVar("r1")
	assert.True(t, ok)
	_, ok = m.ZVar("r3")
	assert.True(t, ok)

	assert.Greater(t, m.VariableCount(), 0)
	assert.Greater(t, m.ConstraintCount(), 0)
}

func TestNewBuilderPinsCompletedCourses(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	m, err := NewBuilder(ix, []catalog.CourseID{"CAS-CS-111", "CAS-CS-220"}, []string{"s0"}, []catalog.CourseID{"CAS-CS-111"}, 0, 5, obj, Limits{})
	require.NoError(t, err)

	assert.True(t, m.IsCompleted("CAS-CS-111"))
	assert.False(t, m.IsCompleted("CAS-CS-220"))
}

func TestNewBuilderEnforcesVariableCeiling(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	_, err := NewBuilder(ix, []catalog.CourseID{"CAS-CS-111", "CAS-CS-220"}, []string{"s0", "s1", "s2"}, nil, 0, 5, obj, Limits{MaxVariables: 1})
	assert.Error(t, err)
}

func TestSemesterLabelHandlesCompletedAndOutOfRange(t *testing.T) {
	ix := buildIndex(t)
	obj := objective.NewManager(0, nil)
	m, err := NewBuilder(ix, []catalog.CourseID{"CAS-CS-111"}, []string{"fall-2026"}, nil, 0, 5, obj, Limits{})
	require.NoError(t, err)

	assert.Equal(t, "completed", m.SemesterLabel(CompletedSemester))
	assert.Equal(t, "fall-2026", m.SemesterLabel(0))
	assert.Contains(t, m.SemesterLabel(5), "semester[5]")
}
