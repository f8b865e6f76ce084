package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mwf(start, end int) TimeSlot {
	return TimeSlot{Days: []Weekday{Mon, Wed, Fri}, StartMinute: start, EndMinute: end}
}

func TestBuildComputesOverlapConflicts(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630), Score: 1},
		{RID: "r2", CourseID: "CAS-CS-220", Semester: 0, Slot: mwf(600, 660), Score: 1},
		{RID: "r3", CourseID: "CAS-CS-330", Semester: 0, Slot: mwf(700, 760), Score: 1},
	}
	ix, err := Build(relations, nil, nil, nil, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []ConflictPair{{A: "r1", B: "r2"}}, ix.Conflicts())
	assert.False(t, ix.HasSection("r4"))
	assert.True(t, ix.HasCourse("CAS-CS-111"))
}

func TestBuildHonorsExplicitConflicts(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630)},
		{RID: "r2", CourseID: "CAS-CS-220", Semester: 0, Slot: mwf(800, 860)},
	}
	ix, err := Build(relations, []ConflictPair{{A: "r1", B: "r2"}}, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, ix.Conflicts(), 1)
}

func TestBuildRejectsUnknownExplicitConflictSection(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630)},
	}
	_, err := Build(relations, []ConflictPair{{A: "r1", B: "missing"}}, nil, nil, nil)
	assert.Error(t, err)
}

func TestBuildRejectsDuplicateSectionID(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630)},
		{RID: "r1", CourseID: "CAS-CS-220", Semester: 0, Slot: mwf(700, 760)},
	}
	_, err := Build(relations, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestGroupsAndHubs(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630)},
	}
	groups := map[string][]CourseID{"core": {"CAS-CS-111", "CAS-CS-220"}}
	hubClasses := map[string][]CourseID{"QR": {"CAS-CS-111"}}
	hubReqs := map[string]int{"QR": 1}

	ix, err := Build(relations, nil, groups, hubReqs, hubClasses)
	require.NoError(t, err)

	_, inCore := ix.Group("core")["CAS-CS-111"]
	assert.True(t, inCore)
	_, inHub := ix.Hub("QR")["CAS-CS-111"]
	assert.True(t, inHub)
	n, ok := ix.HubRequirement("QR")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"QR"}, ix.HubTags())
}

func TestCoursesInRange(t *testing.T) {
	relations := []RelationInput{
		{RID: "r1", CourseID: "CAS-CS-111", Semester: 0, Slot: mwf(540, 630)},
		{RID: "r2", CourseID: "CAS-CS-220", Semester: 0, Slot: mwf(700, 760)},
		{RID: "r3", CourseID: "CAS-MA-115", Semester: 0, Slot: mwf(800, 860)},
	}
	ix, err := Build(relations, nil, nil, nil, nil)
	require.NoError(t, err)

	got := ix.CoursesInRange("CAS", "CS", 100, 200)
	assert.Equal(t, []CourseID{"CAS-CS-111"}, got)
}
