package modelbuilder

import (
	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
)

func (m *Model) clamp(s int) int {
	if s < CompletedSemester {
		return CompletedSemester
	}
	if s > m.LastIndex() {
		return m.LastIndex()
	}
	return s
}

// MergedVar returns merged_x[c,s], the boolean "course c has been taken by
// the end of semester s" — the logical OR of x[c,s'] for s' <= s.
// Memoized by (course,semester) since it's shared across reifications.
func (m *Model) MergedVar(course catalog.CourseID, semester int) cpmodel.BoolVar {
	s := m.clamp(semester)
	key := courseSem{course, s}
	if v, ok := m.mergedX[key]; ok {
		return v
	}
	if s == CompletedSemester {
		v := m.x[courseSem{course, CompletedSemester}]
		m.mergedX[key] = v
		return v
	}

	v := m.newBoolVar()
	m.mergedX[key] = v

	terms := make([]cpmodel.BoolVar, 0, s+2)
	for s2 := CompletedSemester; s2 <= s; s2++ {
		if xv, ok := m.x[courseSem{course, s2}]; ok {
			terms = append(terms, xv)
		}
	}

	// v => at least one x[c,s'] is true; every x[c,s'] => v.
	orArgs := make([]cpmodel.Literal, 0, len(terms)+1)
	orArgs = append(orArgs, v.Not())
	for _, t := range terms {
		orArgs = append(orArgs, t)
		m.Builder.AddImplication(t, v)
		m.constrCount++
	}
	m.Builder.AddBoolOr(orArgs...)
	m.constrCount++

	return v
}

// Reify evaluates a requirement Node against semester index `semester`,
// returning a boolean variable (or reused literal) equal to its truth
// value, per §4.2's reify contract. And/Or/Not are implemented as
// conjunction/disjunction/negation over the children's reified literals;
// Course/Group/Range bottom out at merged_x.
func (m *Model) Reify(node *constraint.Node, semester int) cpmodel.BoolVar {
	switch node.Kind {
	case constraint.NodeCourse:
		return m.MergedVar(node.CourseID, semester)

	case constraint.NodeWhen:
		return m.Reify(node.Child, m.clamp(semester+node.Offset))

	case constraint.NodeNot:
		child := m.Reify(node.Child, semester)
		v := m.newBoolVar()
		m.Builder.AddEquality(v, cpmodel.NewConstant(1)).OnlyEnforceIf(child.Not())
		m.Builder.AddEquality(v, cpmodel.NewConstant(0)).OnlyEnforceIf(child)
		m.constrCount += 2
		return v

	case constraint.NodeAnd:
		lits := make([]cpmodel.BoolVar, len(node.Children))
		for i, c := range node.Children {
			lits[i] = m.Reify(c, semester)
		}
		return m.reifyAnd(lits)

	case constraint.NodeOr:
		lits := make([]cpmodel.BoolVar, len(node.Children))
		for i, c := range node.Children {
			lits[i] = m.Reify(c, semester)
		}
		return m.reifyOr(lits)

	case constraint.NodeGroup:
		set := m.Index.Group(node.GroupName)
		return m.reifyCount(set, node.Count, semester)

	case constraint.NodeRange:
		ids := m.Index.CoursesInRange(node.School, node.Dept, node.MinNum, node.MaxNum)
		set := make(map[catalog.CourseID]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return m.reifyCount(set, node.Count, semester)

	case constraint.NodeAttribute:
		// Reserved for standing/level predicates; no attribute data is
		// carried in the input contract yet, so it reifies to a fresh
		// unconstrained boolean rather than failing the whole model.
		return m.newBoolVar()
	}
	return m.newBoolVar()
}

// reifyAnd builds a boolean equal to the conjunction of lits (short-circuit
// to the constant 0 is skipped here since every lit is already a solver
// variable). No algebraic simplification of provably-false/true children
// is done, here or in Node parsing/validation: every child becomes a
// solver variable and enters the conjunction.
func (m *Model) reifyAnd(lits []cpmodel.BoolVar) cpmodel.BoolVar {
	if len(lits) == 1 {
		return lits[0]
	}
	v := m.newBoolVar()
	for _, l := range lits {
		m.Builder.AddImplication(v, l)
		m.constrCount++
	}
	orArgs := make([]cpmodel.Literal, 0, len(lits)+1)
	orArgs = append(orArgs, v)
	for _, l := range lits {
		orArgs = append(orArgs, l.Not())
	}
	m.Builder.AddBoolOr(orArgs...)
	m.constrCount++
	return v
}

func (m *Model) reifyOr(lits []cpmodel.BoolVar) cpmodel.BoolVar {
	if len(lits) == 1 {
		return lits[0]
	}
	v := m.newBoolVar()
	for _, l := range lits {
		m.Builder.AddImplication(l, v)
		m.constrCount++
	}
	orArgs := make([]cpmodel.Literal, 0, len(lits)+1)
	orArgs = append(orArgs, v.Not())
	for _, l := range lits {
		orArgs = append(orArgs, l)
	}
	m.Builder.AddBoolOr(orArgs...)
	m.constrCount++
	return v
}

// reifyCount introduces v == (sum_{c in set} merged_x[c,s] >= k), built as
// two half-reified inequalities per §4.2.
func (m *Model) reifyCount(set map[catalog.CourseID]struct{}, k int, semester int) cpmodel.BoolVar {
	v := m.newBoolVar()
	if len(set) == 0 {
		// An empty set can never reach a positive count; degrade to
		// "unsatisfiable" rather than erroring, per §4.1's reference
		// policy for counting constraints over empty sets.
		if k <= 0 {
			m.Builder.AddEquality(v, cpmodel.NewConstant(1))
		} else {
			m.Builder.AddEquality(v, cpmodel.NewConstant(0))
		}
		m.constrCount++
		return v
	}

	expr := cpmodel.NewLinearExpr()
	for c := range set {
		expr.AddTerm(m.MergedVar(c, semester), 1)
	}
	m.Builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(k))).OnlyEnforceIf(v)
	m.Builder.AddLessOrEqual(expr, cpmodel.NewConstant(int64(k-1))).OnlyEnforceIf(v.Not())
	m.constrCount += 2
	return v
}
