package modelbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degreepath/scheduler/internal/constraint"
)

func TestApplyConstraintRejectsUnknownKind(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{ID: "c1", Kind: constraint.Kind("made_up")})
	assert.Error(t, err)
}

func TestApplyIncludeCourseRejectsUnknownCourse(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindIncludeCourse, Mode: constraint.Hard, CourseID: "CAS-CS-999",
	})
	assert.Error(t, err)
}

func TestApplyExcludeCourseToleratesUnknownCourse(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindExcludeCourse, Mode: constraint.Hard, CourseID: "CAS-CS-999",
	})
	assert.NoError(t, err)
}

func TestApplySoftExcludeCourseAddsObjectiveTerm(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	before := len(m.Obj.Terms("comfort"))
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindExcludeCourse, Mode: constraint.Soft, Tier: "comfort", Weight: 1, CourseID: "CAS-CS-111",
	})
	require.NoError(t, err)
	assert.Greater(t, len(m.Obj.Terms("comfort")), before)
}

func TestApplyIncludeSectionRejectsUnknownSection(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindIncludeSection, Mode: constraint.Hard, SectionID: "nonexistent",
	})
	assert.Error(t, err)
}

func TestApplyExcludeSectionToleratesUnknownSection(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindExcludeSection, Mode: constraint.Hard, SectionID: "nonexistent",
	})
	assert.NoError(t, err)
}

func TestApplyIncludeInstructorRejectsNoMatch(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindIncludeInstructor, Mode: constraint.Hard, InstructorID: "nobody",
	})
	assert.Error(t, err)
}

func TestApplyEnforceOrderingRejectsUnknownCourses(t *testing.T) {
	m := newTestModel(t, []string{"s0", "s1"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindEnforceOrdering, Mode: constraint.Hard,
		BeforeCourse: "CAS-CS-999", AfterCourse: "CAS-CS-111",
	})
	assert.Error(t, err)

	err = m.ApplyConstraint(constraint.Constraint{
		ID: "c2", Kind: constraint.KindEnforceOrdering, Mode: constraint.Hard,
		BeforeCourse: "CAS-CS-220", AfterCourse: "CAS-CS-111",
	})
	assert.NoError(t, err)
}

func TestApplyLexicographicPrioritySetsOrder(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindLexicographicPriority,
		TierOrder: []constraint.Tier{"pin", "hub", "comfort"},
	})
	require.NoError(t, err)
	assert.Equal(t, []constraint.Tier{"pin", "hub", "comfort"}, m.Obj.Order())
}

func TestApplyHardGroupCountsConstrainsDirectly(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	before := m.ConstraintCount()
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindRequireGroupCounts, Mode: constraint.Hard, GroupName: "nonexistent", Count: 1,
	})
	require.NoError(t, err)
	assert.Greater(t, m.ConstraintCount(), before)
}

func TestApplyGraduationEqualsRequirementToOne(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	before := m.ConstraintCount()
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindGraduation, Mode: constraint.Hard,
		Requirement: &constraint.Node{Kind: constraint.NodeCourse, CourseID: "CAS-CS-111"},
	})
	require.NoError(t, err)
	assert.Greater(t, m.ConstraintCount(), before)
}

func TestApplyPrerequisiteBindsEveryFutureSemesterIncludingNearest(t *testing.T) {
	m := newTestModel(t, []string{"s0", "s1"}, nil)
	before := m.ConstraintCount()
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindPrerequisite, Mode: constraint.Hard, CourseID: "CAS-CS-220",
		Requirement: &constraint.Node{Kind: constraint.NodeCourse, CourseID: "CAS-CS-111"},
	})
	require.NoError(t, err)
	// Two future semesters (0 and 1) each get an implication, so the
	// constraint count grows by at least 2 (plus MergedVar/Reify wiring).
	assert.GreaterOrEqual(t, m.ConstraintCount(), before+2)
}

func TestApplyPrerequisiteBindsNearestSemesterAlone(t *testing.T) {
	m := newTestModel(t, []string{"s0"}, nil)
	before := m.ConstraintCount()
	err := m.ApplyConstraint(constraint.Constraint{
		ID: "c1", Kind: constraint.KindPrerequisite, Mode: constraint.Hard, CourseID: "CAS-CS-220",
		Requirement: &constraint.Node{Kind: constraint.NodeCourse, CourseID: "CAS-CS-111"},
	})
	require.NoError(t, err)
	// last = 0: with only the nearest semester, the loop must still run
	// once (s=0) rather than being skipped entirely.
	assert.Greater(t, m.ConstraintCount(), before)
}
