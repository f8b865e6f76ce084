package catalog

import (
	"fmt"
	"sort"

	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// ConflictPair is an unordered pair of section IDs that must not both be
// chosen.
type ConflictPair struct {
	A, B SectionID
}

// Index is the normalized, read-only view of the catalog built from the
// input contract. Every lookup is O(1) (or O(result size)); all entities
// are immutable once Build returns.
type Index struct {
	sections       map[SectionID]Section
	sectionsByCourse map[CourseID][]SectionID
	sectionsBySemester map[int][]SectionID
	courses        map[CourseID]Course
	groups         map[string]map[CourseID]struct{}
	hubs           map[string]map[CourseID]struct{}
	hubRequirements map[string]int
	conflicts      []ConflictPair
	conflictSet    map[SectionID]map[SectionID]struct{}
}

// RelationInput is the catalog-index-builder's view of one offered section.
type RelationInput struct {
	RID          SectionID
	CourseID     CourseID
	Semester     int
	Slot         TimeSlot
	InstructorID string
	Rating       *float64
	Score        float64
}

// Build constructs an Index from the raw relation list, explicit conflict
// pairs (if supplied; otherwise computed from TimeSlot overlap), group
// membership, and hub tag membership.
func Build(relations []RelationInput, explicitConflicts []ConflictPair, groups map[string][]CourseID, hubRequirements map[string]int, hubClasses map[string][]CourseID) (*Index, error) {
	ix := &Index{
		sections:           make(map[SectionID]Section, len(relations)),
		sectionsByCourse:   make(map[CourseID][]SectionID),
		sectionsBySemester: make(map[int][]SectionID),
		courses:            make(map[CourseID]Course),
		groups:             make(map[string]map[CourseID]struct{}, len(groups)),
		hubs:               make(map[string]map[CourseID]struct{}, len(hubClasses)),
		hubRequirements:    hubRequirements,
		conflictSet:        make(map[SectionID]map[SectionID]struct{}),
	}

	for _, r := range relations {
		if _, dup := ix.sections[r.RID]; dup {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("duplicate section id %q", r.RID))
		}
		if err := r.Slot.Validate(); err != nil {
			return nil, err
		}
		sec := Section{ID: r.RID, CourseID: r.CourseID, Semester: r.Semester, Slot: r.Slot, InstructorID: r.InstructorID, Rating: r.Rating}
		ix.sections[r.RID] = sec
		ix.sectionsByCourse[r.CourseID] = append(ix.sectionsByCourse[r.CourseID], r.RID)
		ix.sectionsBySemester[r.Semester] = append(ix.sectionsBySemester[r.Semester], r.RID)
		if existing, ok := ix.courses[r.CourseID]; !ok || r.Score > existing.Score {
			ix.courses[r.CourseID] = Course{ID: r.CourseID, Score: r.Score}
		}
	}

	for name, members := range groups {
		set := make(map[CourseID]struct{}, len(members))
		for _, c := range members {
			set[c] = struct{}{}
		}
		ix.groups[name] = set
	}

	for tag, members := range hubClasses {
		set := make(map[CourseID]struct{}, len(members))
		for _, c := range members {
			set[c] = struct{}{}
		}
		ix.hubs[tag] = set
	}

	if len(explicitConflicts) > 0 {
		for _, p := range explicitConflicts {
			if _, ok := ix.sections[p.A]; !ok {
				return nil, appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("conflict references unknown section %q", p.A))
			}
			if _, ok := ix.sections[p.B]; !ok {
				return nil, appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("conflict references unknown section %q", p.B))
			}
			ix.addConflict(p.A, p.B)
		}
	} else {
		for semester := range ix.sectionsBySemester {
			ix.computeConflictsForSemester(semester)
		}
	}

	return ix, nil
}

func (ix *Index) addConflict(a, b SectionID) {
	if a == b {
		return
	}
	if ix.conflictSet[a] == nil {
		ix.conflictSet[a] = make(map[SectionID]struct{})
	}
	if ix.conflictSet[b] == nil {
		ix.conflictSet[b] = make(map[SectionID]struct{})
	}
	if _, ok := ix.conflictSet[a][b]; ok {
		return
	}
	ix.conflictSet[a][b] = struct{}{}
	ix.conflictSet[b][a] = struct{}{}
	ix.conflicts = append(ix.conflicts, ConflictPair{A: a, B: b})
}

// computeConflictsForSemester sweeps sections per weekday, sorted by
// (weekday, start, end, id) as the canonical ordering, and emits a conflict
// edge for every overlapping pair sharing that day. Pairs sharing multiple
// days are deduplicated by conflictSet.
func (ix *Index) computeConflictsForSemester(semester int) {
	ids := ix.sectionsBySemester[semester]
	for day := Mon; day <= Sun; day++ {
		var onDay []SectionID
		for _, id := range ids {
			if ix.sections[id].Slot.hasDay(day) {
				onDay = append(onDay, id)
			}
		}
		sort.Slice(onDay, func(i, j int) bool {
			si, sj := ix.sections[onDay[i]], ix.sections[onDay[j]]
			if si.Slot.StartMinute != sj.Slot.StartMinute {
				return si.Slot.StartMinute < sj.Slot.StartMinute
			}
			if si.Slot.EndMinute != sj.Slot.EndMinute {
				return si.Slot.EndMinute < sj.Slot.EndMinute
			}
			return onDay[i] < onDay[j]
		})

		// Sweep: an active set of sections whose interval hasn't ended yet.
		var active []SectionID
		for _, cur := range onDay {
			curSlot := ix.sections[cur].Slot
			var stillActive []SectionID
			for _, a := range active {
				if ix.sections[a].Slot.EndMinute > curSlot.StartMinute {
					stillActive = append(stillActive, a)
					ix.addConflict(a, cur)
				}
			}
			stillActive = append(stillActive, cur)
			active = stillActive
		}
	}
}

// Section returns the section by id.
func (ix *Index) Section(id SectionID) (Section, bool) {
	s, ok := ix.sections[id]
	return s, ok
}

// SectionsOf returns every section offered for a course, across all
// semesters.
func (ix *Index) SectionsOf(course CourseID) []SectionID {
	return ix.sectionsByCourse[course]
}

// SectionsIn returns every section offered in a given semester index.
func (ix *Index) SectionsIn(semester int) []SectionID {
	return ix.sectionsBySemester[semester]
}

// Conflicts returns every conflicting section pair across the whole
// catalog (pairs only ever occur within the same semester).
func (ix *Index) Conflicts() []ConflictPair {
	return ix.conflicts
}

// ConflictsIn returns conflicting pairs restricted to one semester.
func (ix *Index) ConflictsIn(semester int) []ConflictPair {
	inSem := make(map[SectionID]struct{}, len(ix.sectionsBySemester[semester]))
	for _, id := range ix.sectionsBySemester[semester] {
		inSem[id] = struct{}{}
	}
	var out []ConflictPair
	for _, p := range ix.conflicts {
		if _, ok := inSem[p.A]; !ok {
			continue
		}
		if _, ok := inSem[p.B]; !ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Group returns the course set for a named group. Absent names yield an
// empty (non-nil-checked) set rather than an error: counting constraints
// over empty sets degrade to "unsatisfiable" per the reference error policy,
// they are not themselves a validation failure.
func (ix *Index) Group(name string) map[CourseID]struct{} {
	return ix.groups[name]
}

// Hub returns the course set tagged with the given hub tag.
func (ix *Index) Hub(tag string) map[CourseID]struct{} {
	return ix.hubs[tag]
}

// HubRequirement returns the required count for a hub tag and whether one
// was configured.
func (ix *Index) HubRequirement(tag string) (int, bool) {
	n, ok := ix.hubRequirements[tag]
	return n, ok
}

// HubTags returns every configured hub tag, for iterating hub_targets.
func (ix *Index) HubTags() []string {
	tags := make([]string, 0, len(ix.hubRequirements))
	for tag := range ix.hubRequirements {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// CoursesInRange returns every known course id whose school/dept/number
// triple falls within [minNum,maxNum] for the given school and department.
func (ix *Index) CoursesInRange(school, dept string, minNum, maxNum int) []CourseID {
	var out []CourseID
	for id := range ix.courses {
		key, err := ParseCourseID(id)
		if err != nil {
			continue
		}
		if key.School == school && key.Dept == dept && key.Number >= minNum && key.Number <= maxNum {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CourseIDs returns every course id known to the catalog, sorted.
func (ix *Index) CourseIDs() []CourseID {
	out := make([]CourseID, 0, len(ix.courses))
	for id := range ix.courses {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Course returns the course record, including its baseline score.
func (ix *Index) Course(id CourseID) (Course, bool) {
	c, ok := ix.courses[id]
	return c, ok
}

// HasCourse reports whether any section references this course id.
func (ix *Index) HasCourse(id CourseID) bool {
	_, ok := ix.courses[id]
	return ok
}

// HasSection reports whether a section id exists.
func (ix *Index) HasSection(id SectionID) bool {
	_, ok := ix.sections[id]
	return ok
}
