package modelbuilder

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/catalog"
)

// buildCoreVariables allocates x[c,s] for every course in the universe and
// every semester index in [-1,last], z[r] for every section offered in the
// nearest semester, and emits invariants 1-5 of §3. merged_x (invariant 6)
// is constructed lazily and memoized in reify.go.
func (m *Model) buildCoreVariables(courses []catalog.CourseID) error {
	last := m.LastIndex()

	// x[c,s] for s in [-1, last], plus invariant 1: x[c,-1] is pinned to
	// the completed-courses membership.
	for _, c := range courses {
		for s := CompletedSemester; s <= last; s++ {
			v := m.newBoolVar()
			m.x[courseSem{c, s}] = v
		}
		completedVar := m.x[courseSem{c, CompletedSemester}]
		if m.completed[c] {
			m.Builder.AddEquality(completedVar, cpmodel.NewConstant(1))
		} else {
			m.Builder.AddEquality(completedVar, cpmodel.NewConstant(0))
		}
		m.constrCount++

		// Invariant 4: at most one semester of choice across [-1,last].
		// Completed courses are pinned at -1, which alone satisfies
		// "at most one" for them; still emit the sum bound uniformly.
		sumAll := cpmodel.NewLinearExpr()
		for s := CompletedSemester; s <= last; s++ {
			sumAll.AddTerm(m.x[courseSem{c, s}], 1)
		}
		m.Builder.AddLessOrEqual(sumAll, cpmodel.NewConstant(1))
		m.constrCount++

		// Completed courses never reappear in a future semester.
		if m.completed[c] {
			for s := 0; s <= last; s++ {
				m.Builder.AddEquality(m.x[courseSem{c, s}], cpmodel.NewConstant(0))
				m.constrCount++
			}
		}
	}

	// z[r] for sections offered in the nearest semester (0), plus
	// invariant 2: sum_r z[r] = x[c,0] and sum_r z[r] <= 1.
	bySemester0Course := make(map[catalog.CourseID][]catalog.SectionID)
	for _, rid := range m.Index.SectionsIn(0) {
		sec, ok := m.Index.Section(rid)
		if !ok {
			continue
		}
		v := m.newBoolVar()
		m.z[rid] = v
		bySemester0Course[sec.CourseID] = append(bySemester0Course[sec.CourseID], rid)
	}
	for c, rids := range bySemester0Course {
		xVar, ok := m.x[courseSem{c, 0}]
		if !ok {
			continue
		}
		sumZ := cpmodel.NewLinearExpr()
		for _, rid := range rids {
			sumZ.AddTerm(m.z[rid], 1)
		}
		m.Builder.AddEquality(sumZ, xVar)
		m.constrCount++
		m.Builder.AddLessOrEqual(sumZ, cpmodel.NewConstant(1))
		m.constrCount++
	}

	// Invariant 3: conflicting nearest-semester sections cannot both be
	// chosen.
	for _, p := range m.Index.ConflictsIn(0) {
		za, okA := m.z[p.A]
		zb, okB := m.z[p.B]
		if !okA || !okB {
			continue
		}
		pair := cpmodel.NewLinearExpr().AddTerm(za, 1).AddTerm(zb, 1)
		m.Builder.AddLessOrEqual(pair, cpmodel.NewConstant(1))
		m.constrCount++
	}

	// Invariant 5: per-semester load bounds over future semesters [0,last].
	for s := 0; s <= last; s++ {
		sumX := cpmodel.NewLinearExpr()
		for _, c := range courses {
			sumX.AddTerm(m.x[courseSem{c, s}], 1)
		}
		if m.minLoad > 0 {
			m.Builder.AddGreaterOrEqual(sumX, cpmodel.NewConstant(int64(m.minLoad)))
			m.constrCount++
		}
		m.Builder.AddLessOrEqual(sumX, cpmodel.NewConstant(int64(m.maxLoad)))
		m.constrCount++
	}

	return nil
}
