// Package modelbuilder allocates the CP-SAT decision variables, emits the
// linking invariants of §3, and translates each parsed Constraint into
// either a hard solver constraint or a weighted objective term. It is the
// only package that touches the cpmodel.Builder object directly.
package modelbuilder

import (
	"fmt"
	"sort"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
	"github.com/degreepath/scheduler/internal/objective"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// CompletedSemester is the distinguished pseudo-index for courses already
// taken, per §3.
const CompletedSemester = -1

// courseSem memoizes per-(course,semester) variables.
type courseSem struct {
	Course   catalog.CourseID
	Semester int
}

// Hint is a single (variable, value) warm-start pair fed to the solver
// before search begins, seeded from the highest-scored courses. Purely a
// search accelerant: it changes no invariant (SPEC_FULL §Solver hints).
type Hint struct {
	Var   cpmodel.BoolVar
	Value int64
}

// Limits bounds the model size the builder will accept, per §5's "rejects
// inputs whose resulting model exceeds a configurable ceiling".
type Limits struct {
	MaxVariables   int
	MaxConstraints int
}

// Model owns the cpmodel.Builder and every registry needed to reify
// constraints and later decode a solution.
type Model struct {
	Builder *cpmodel.Builder
	Index   *catalog.Index
	Obj     *objective.Manager

	semesters []string // labels, index 0 = nearest
	completed map[catalog.CourseID]bool
	minLoad   int
	maxLoad   int

	z       map[catalog.SectionID]cpmodel.BoolVar
	x       map[courseSem]cpmodel.BoolVar
	mergedX map[courseSem]cpmodel.BoolVar

	limits      Limits
	varCount    int
	constrCount int

	hints []Hint
}

// NewBuilder allocates the core decision variables and emits the linking
// invariants of §3 (1 through 5; merged_x, invariant 6, is built lazily by
// MergedVar in reify.go). universe is every course id that can
// possibly appear in a decision variable: catalog courses plus anything
// named only by groups, hubs, completed_courses, or a constraint payload.
// minLoad/maxLoad bound sum_c x[c,s] per future semester.
func NewBuilder(ix *catalog.Index, universe []catalog.CourseID, semesters []string, completed []catalog.CourseID, minLoad, maxLoad int, obj *objective.Manager, limits Limits) (*Model, error) {
	if len(semesters) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "semesters must be non-empty")
	}
	if minLoad < 0 || maxLoad < minLoad {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "invalid per-semester load bounds")
	}

	m := &Model{
		Builder:   cpmodel.NewCpModelBuilder(),
		Index:     ix,
		Obj:       obj,
		semesters: semesters,
		completed: make(map[catalog.CourseID]bool, len(completed)),
		minLoad:   minLoad,
		maxLoad:   maxLoad,
		z:         make(map[catalog.SectionID]cpmodel.BoolVar),
		x:         make(map[courseSem]cpmodel.BoolVar),
		mergedX:   make(map[courseSem]cpmodel.BoolVar),
		limits:    limits,
	}
	for _, c := range completed {
		m.completed[c] = true
	}

	dedup := make(map[catalog.CourseID]struct{}, len(universe))
	var courses []catalog.CourseID
	for _, c := range universe {
		if _, ok := dedup[c]; ok {
			continue
		}
		dedup[c] = struct{}{}
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i] < courses[j] })

	if err := m.buildCoreVariables(courses); err != nil {
		return nil, err
	}
	if err := m.checkLimits(); err != nil {
		return nil, err
	}
	return m, nil
}

// LastIndex is the index of the furthest future semester.
func (m *Model) LastIndex() int {
	return len(m.semesters) - 1
}

// SemesterLabel renders a semester index for logging/decode, including the
// completed pseudo-index.
func (m *Model) SemesterLabel(s int) string {
	if s == CompletedSemester {
		return "completed"
	}
	if s < 0 || s >= len(m.semesters) {
		return fmt.Sprintf("semester[%d]", s)
	}
	return m.semesters[s]
}

func (m *Model) newBoolVar() cpmodel.BoolVar {
	m.varCount++
	return m.Builder.NewBoolVar()
}

func (m *Model) checkLimits() error {
	if m.limits.MaxVariables > 0 && m.varCount > m.limits.MaxVariables {
		return appErrors.Clone(appErrors.ErrModelTooLarge, fmt.Sprintf("model has %d variables, ceiling is %d", m.varCount, m.limits.MaxVariables))
	}
	if m.limits.MaxConstraints > 0 && m.constrCount > m.limits.MaxConstraints {
		return appErrors.Clone(appErrors.ErrModelTooLarge, fmt.Sprintf("model has %d constraints, ceiling is %d", m.constrCount, m.limits.MaxConstraints))
	}
	return nil
}

// VariableCount and ConstraintCount back the model-size metric and the
// ModelTooLarge check.
func (m *Model) VariableCount() int   { return m.varCount }
func (m *Model) ConstraintCount() int { return m.constrCount }

// Hints returns the accumulated warm-start pairs.
func (m *Model) Hints() []Hint { return m.hints }

// IsCompleted reports whether a course is pinned as already completed.
func (m *Model) IsCompleted(c catalog.CourseID) bool {
	return m.completed[c]
}

// ZVar returns the nearest-semester section-chosen variable, if any (only
// sections offered in semester 0 have one).
func (m *Model) ZVar(id catalog.SectionID) (cpmodel.BoolVar, bool) {
	v, ok := m.z[id]
	return v, ok
}

// XVar returns the course-in-semester variable, allocating it lazily isn't
// needed since buildCoreVariables allocates every (course,semester) pair
// up front.
func (m *Model) XVar(course catalog.CourseID, semester int) (cpmodel.BoolVar, bool) {
	v, ok := m.x[courseSem{course, semester}]
	return v, ok
}

// Universe returns every course id that has a decision variable, sorted.
// This is the full set passed to NewBuilder, not just m.Index's catalog
// courses: it also covers courses named only by a group, hub, or
// completed_courses entry.
func (m *Model) Universe() []catalog.CourseID {
	seen := make(map[catalog.CourseID]struct{})
	for key := range m.x {
		seen[key.Course] = struct{}{}
	}
	out := make([]catalog.CourseID, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
