package modelbuilder

import (
	"sort"

	"github.com/degreepath/scheduler/internal/catalog"
)

// BuildHints seeds the search with a warm start: bookmarked courses first,
// then the highest catalog.Score courses, assigned true up to the
// per-semester load for semester 0. Purely a search accelerant — it adds
// no constraint and changes no invariant (SPEC_FULL "Solver hints").
func (m *Model) BuildHints(bookmarked []catalog.CourseID) {
	type ranked struct {
		course catalog.CourseID
		score  float64
	}
	bookmarkSet := make(map[catalog.CourseID]bool, len(bookmarked))
	for _, c := range bookmarked {
		bookmarkSet[c] = true
	}

	var candidates []ranked
	for id := range m.coursesInSemesterUniverse() {
		if m.completed[id] {
			continue
		}
		score := 0.0
		if c, ok := m.Index.Course(id); ok {
			score = c.Score
		}
		if bookmarkSet[id] {
			score += 1000 // bookmarks dominate the warm-start ordering
		}
		candidates = append(candidates, ranked{course: id, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].course < candidates[j].course
	})

	take := m.maxLoad
	for i, r := range candidates {
		v, ok := m.XVar(r.course, 0)
		if !ok {
			continue
		}
		value := int64(0)
		if i < take {
			value = 1
		}
		m.hints = append(m.hints, Hint{Var: v, Value: value})
	}
}

// ApplyHints feeds the accumulated warm-start pairs to the builder. Called
// immediately before Finalize by the solver driver.
func (m *Model) ApplyHints() {
	for _, h := range m.hints {
		m.Builder.AddHint(h.Var, h.Value)
	}
}
