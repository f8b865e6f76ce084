package modelbuilder

import (
	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
)

// baselineTier is the Objective Manager tier SetBaselineObjective registers
// into. It is never named by a caller-supplied constraint or tier_order, so
// it only ever enters m.Obj.order via ensureOrdered — and since
// SetBaselineObjective runs after every ApplyConstraint call (PlanService
// calls it once all constraints are applied, just before BuildHints), it is
// always the last tier appended and therefore the lowest-priority term in
// both the big-M composite and the staged resolve.
const baselineTier = constraint.Tier("baseline")

// bookmarkBaselineBonus mirrors the warm-start ranking in BuildHints: it is
// large enough that any bookmarked course outranks any non-bookmarked one
// on score alone.
const bookmarkBaselineBonus = 1000.0

// SetBaselineObjective adds a per-course, per-future-semester reward scaled
// by catalog.Course.Score (with a bookmark bonus layered on top), so that a
// request with no explicit soft constraints still drives the solver toward
// the load-maximizing, bookmark- and score-preferring plan instead of the
// degenerate empty assignment. Without this term, Obj.BigMExpr() is the
// empty expression whenever the caller supplies no soft constraints, and
// CP-SAT is free to return the first feasible (possibly empty) plan it
// finds.
//
// Grounded on original_source's solver.py `_build_objective`, which sums
// `course_vars[s][c] * course["score"] * (10 / (num_future_semesters + 5))`
// across every course and every future semester before calling Maximize.
func (m *Model) SetBaselineObjective(bookmarked []catalog.CourseID) {
	bookmarkSet := make(map[catalog.CourseID]bool, len(bookmarked))
	for _, c := range bookmarked {
		bookmarkSet[c] = true
	}

	last := m.LastIndex()
	factor := 10.0 / float64(last+1+5)

	for _, course := range m.Universe() {
		if m.completed[course] {
			continue
		}
		score := 0.0
		if c, ok := m.Index.Course(course); ok {
			score = c.Score
		}
		if bookmarkSet[course] {
			score += bookmarkBaselineBonus
		}
		if score == 0 {
			continue
		}
		weight := score * factor
		for s := 0; s <= last; s++ {
			v, ok := m.XVar(course, s)
			if !ok {
				continue
			}
			m.Obj.Add(baselineTier, v, weight)
		}
	}
}
