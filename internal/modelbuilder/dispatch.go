package modelbuilder

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// ApplyConstraint dispatches one parsed top-level Constraint to its
// handler. Handlers accept a uniform (mode,weight,tier) prefix: hard
// emissions become solver constraints directly, soft emissions always
// route through the Objective Manager. An unrecognized kind here is a
// programmer error (constraint.Parse already rejected unknown kinds), not
// a runtime one.
func (m *Model) ApplyConstraint(c constraint.Constraint) error {
	switch c.Kind {
	case constraint.KindIncludeCourse, constraint.KindExcludeCourse:
		return m.applyIncludeExcludeCourse(c)
	case constraint.KindIncludeSection, constraint.KindExcludeSection, constraint.KindPinSections:
		return m.applyIncludeExcludeSection(c)
	case constraint.KindIncludeInstructor, constraint.KindExcludeInstructor:
		return m.applyInstructor(c)
	case constraint.KindSectionFilter, constraint.KindDisallowedDays,
		constraint.KindEarliestStart, constraint.KindLatestEnd, constraint.KindBlockTimeWindow:
		return m.applySectionFilter(c)
	case constraint.KindMaxCoursesPerSemester, constraint.KindMinCoursesPerSemester, constraint.KindTargetCoursesPerSemester:
		return m.applyLoadBound(c)
	case constraint.KindRequireGroupCounts:
		return m.applyGroupCounts(c)
	case constraint.KindHubTargets:
		return m.applyHubTargets(c)
	case constraint.KindEnforceOrdering:
		return m.applyEnforceOrdering(c)
	case constraint.KindFreeDay:
		return m.applyFreeDay(c)
	case constraint.KindBookmarkedBonus:
		return m.applyBookmarkedBonus(c)
	case constraint.KindProfessorRatingWeight:
		return m.applyProfessorRatingWeight(c)
	case constraint.KindLexicographicPriority:
		m.Obj.SetOrder(c.TierOrder)
		return nil
	case constraint.KindPrerequisite:
		return m.applyPrerequisite(c)
	case constraint.KindGraduation:
		return m.applyGraduation(c)
	default:
		return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("constraint %q: no handler registered for kind %q", c.ID, c.Kind))
	}
}

func (m *Model) sumAcrossSemesters(course catalog.CourseID) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for s := 0; s <= m.LastIndex(); s++ {
		if v, ok := m.XVar(course, s); ok {
			expr.AddTerm(v, 1)
		}
	}
	return expr
}

func (m *Model) applyIncludeExcludeCourse(c constraint.Constraint) error {
	if !m.Index.HasCourse(c.CourseID) && !m.hasUniverse(c.CourseID) {
		if c.Kind == constraint.KindIncludeCourse {
			return appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("constraint %q: include_course references unknown course %q", c.ID, c.CourseID))
		}
	}
	want := int64(1)
	if c.Kind == constraint.KindExcludeCourse {
		want = 0
	}
	sum := m.sumAcrossSemesters(c.CourseID)
	if c.Mode == constraint.Hard {
		m.Builder.AddEquality(sum, cpmodel.NewConstant(want))
		m.constrCount++
		return nil
	}
	// Soft include/exclude: one fresh indicator equal to "pinned value
	// achieved", weighted into the objective.
	v := m.newBoolVar()
	m.Builder.AddEquality(sum, cpmodel.NewConstant(want)).OnlyEnforceIf(v)
	m.constrCount++
	m.Obj.Add(c.Tier, v, c.Weight)
	return nil
}

func (m *Model) hasUniverse(c catalog.CourseID) bool {
	_, ok := m.x[courseSem{c, CompletedSemester}]
	return ok
}

func (m *Model) applyIncludeExcludeSection(c constraint.Constraint) error {
	ids := c.SectionIDs
	if c.SectionID != "" {
		ids = append(ids, c.SectionID)
	}
	want := int64(1)
	if c.Kind == constraint.KindExcludeSection {
		want = 0
	}
	for _, rid := range ids {
		v, ok := m.ZVar(rid)
		if !ok {
			if c.Kind != constraint.KindExcludeSection {
				return appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("constraint %q: references unknown or non-nearest-semester section %q", c.ID, rid))
			}
			continue
		}
		if c.Mode == constraint.Hard {
			m.Builder.AddEquality(v, cpmodel.NewConstant(want))
			m.constrCount++
			continue
		}
		ind := m.newBoolVar()
		m.Builder.AddEquality(v, cpmodel.NewConstant(want)).OnlyEnforceIf(ind)
		m.constrCount++
		m.Obj.Add(c.Tier, ind, c.Weight)
	}
	return nil
}

func (m *Model) applyInstructor(c constraint.Constraint) error {
	var matching []cpmodel.BoolVar
	for rid, v := range m.z {
		sec, ok := m.Index.Section(rid)
		if ok && sec.InstructorID == c.InstructorID {
			matching = append(matching, v)
		}
	}
	exclude := c.Kind == constraint.KindExcludeInstructor

	if c.Mode == constraint.Hard {
		if exclude {
			for _, v := range matching {
				m.Builder.AddEquality(v, cpmodel.NewConstant(0))
				m.constrCount++
			}
			return nil
		}
		if len(matching) == 0 {
			return appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("constraint %q: no nearest-semester section taught by %q", c.ID, c.InstructorID))
		}
		lits := make([]cpmodel.Literal, len(matching))
		for i, v := range matching {
			lits[i] = v
		}
		m.Builder.AddBoolOr(lits...)
		m.constrCount++
		return nil
	}

	sign := 1.0
	if exclude {
		sign = -1.0
	}
	for _, v := range matching {
		m.Obj.Add(c.Tier, v, sign*c.Weight)
	}
	return nil
}

func (m *Model) sectionMatchesFilter(c constraint.Constraint, sec catalog.Section) bool {
	switch c.Kind {
	case constraint.KindDisallowedDays:
		for _, d := range c.Days {
			for _, sd := range sec.Slot.Days {
				if d == sd {
					return true
				}
			}
		}
		return false
	case constraint.KindEarliestStart:
		return sec.Slot.StartMinute < c.EarliestStart
	case constraint.KindLatestEnd:
		return sec.Slot.EndMinute > c.LatestEnd
	case constraint.KindBlockTimeWindow:
		return sec.Slot.StartMinute < c.BlockEnd && c.BlockStart < sec.Slot.EndMinute
	default: // KindSectionFilter, the general predicate.
		if len(c.Days) > 0 {
			hit := false
			for _, d := range c.Days {
				for _, sd := range sec.Slot.Days {
					if d == sd {
						hit = true
					}
				}
			}
			if hit {
				return true
			}
		}
		if len(c.Instructors) > 0 {
			for _, instr := range c.Instructors {
				if sec.InstructorID == instr {
					return true
				}
			}
		}
		if c.EarliestStart > 0 && sec.Slot.StartMinute < c.EarliestStart {
			return true
		}
		if c.LatestEnd > 0 && c.LatestEnd < 1439 && sec.Slot.EndMinute > c.LatestEnd {
			return true
		}
		if c.BlockEnd > c.BlockStart && sec.Slot.StartMinute < c.BlockEnd && c.BlockStart < sec.Slot.EndMinute {
			return true
		}
		return false
	}
}

func (m *Model) applySectionFilter(c constraint.Constraint) error {
	for rid, v := range m.z {
		sec, ok := m.Index.Section(rid)
		if !ok || !m.sectionMatchesFilter(c, sec) {
			continue
		}
		if c.Mode == constraint.Hard {
			m.Builder.AddEquality(v, cpmodel.NewConstant(0))
			m.constrCount++
			continue
		}
		m.Obj.Add(c.Tier, v, -c.Weight)
	}
	return nil
}

func (m *Model) applyLoadBound(c constraint.Constraint) error {
	for s := 0; s <= m.LastIndex(); s++ {
		expr := cpmodel.NewLinearExpr()
		for course := range m.coursesInSemesterUniverse() {
			if v, ok := m.XVar(course, s); ok {
				expr.AddTerm(v, 1)
			}
		}
		switch c.Kind {
		case constraint.KindMaxCoursesPerSemester:
			m.Builder.AddLessOrEqual(expr, cpmodel.NewConstant(int64(c.Max)))
		case constraint.KindMinCoursesPerSemester:
			m.Builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(c.Min)))
		case constraint.KindTargetCoursesPerSemester:
			m.Builder.AddEquality(expr, cpmodel.NewConstant(int64(c.Target)))
		}
		m.constrCount++
	}
	return nil
}

func (m *Model) coursesInSemesterUniverse() map[catalog.CourseID]struct{} {
	out := make(map[catalog.CourseID]struct{})
	for _, c := range m.Universe() {
		out[c] = struct{}{}
	}
	return out
}

func (m *Model) applyGroupCounts(c constraint.Constraint) error {
	set := m.Index.Group(c.GroupName)
	v := m.reifyCount(set, c.Count, m.LastIndex())
	if c.Mode == constraint.Hard {
		m.Builder.AddEquality(v, cpmodel.NewConstant(1))
		m.constrCount++
		return nil
	}
	m.Obj.Add(c.Tier, v, c.Weight)
	return nil
}

func (m *Model) applyHubTargets(c constraint.Constraint) error {
	tags := []string{c.HubTag}
	if c.HubTag == "" {
		tags = m.Index.HubTags()
	}
	for _, tag := range tags {
		count := c.Count
		if c.HubTag == "" {
			n, ok := m.Index.HubRequirement(tag)
			if !ok {
				continue
			}
			count = n
		}
		set := m.Index.Hub(tag)
		v := m.reifyCount(set, count, m.LastIndex())
		if c.Mode == constraint.Hard {
			m.Builder.AddEquality(v, cpmodel.NewConstant(1))
			m.constrCount++
			continue
		}
		m.Obj.Add(c.Tier, v, c.Weight)
	}
	return nil
}

// applyEnforceOrdering forbids any assignment where after is taken no later
// than before: for every (s_before, s_after) pair with s_after <= s_before,
// forbid both x[before,s_before] and x[after,s_after] simultaneously. Only
// binds when both courses are actually selected, per §9.
func (m *Model) applyEnforceOrdering(c constraint.Constraint) error {
	if !m.hasUniverse(c.BeforeCourse) || !m.hasUniverse(c.AfterCourse) {
		return appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("constraint %q: enforce_ordering references an unknown course", c.ID))
	}
	last := m.LastIndex()
	for sBefore := 0; sBefore <= last; sBefore++ {
		xBefore, ok := m.XVar(c.BeforeCourse, sBefore)
		if !ok {
			continue
		}
		for sAfter := 0; sAfter <= sBefore; sAfter++ {
			xAfter, ok := m.XVar(c.AfterCourse, sAfter)
			if !ok {
				continue
			}
			pair := cpmodel.NewLinearExpr().AddTerm(xBefore, 1).AddTerm(xAfter, 1)
			m.Builder.AddLessOrEqual(pair, cpmodel.NewConstant(1))
			m.constrCount++
		}
	}
	return nil
}

// applyFreeDay introduces day_used[s,d] = OR of z[r] over sections meeting
// day d in semester s (only meaningful for semester 0, the only semester
// with section-level variables), then free_day[s,d] = 1 - day_used[s,d].
func (m *Model) applyFreeDay(c constraint.Constraint) error {
	var freeDays []cpmodel.BoolVar
	for day := catalog.Mon; day <= catalog.Sun; day++ {
		var onDay []cpmodel.Literal
		for rid, v := range m.z {
			sec, ok := m.Index.Section(rid)
			if !ok {
				continue
			}
			for _, d := range sec.Slot.Days {
				if d == day {
					onDay = append(onDay, v)
					break
				}
			}
		}
		if len(onDay) == 0 {
			continue
		}
		dayUsed := m.newBoolVar()
		orArgs := append([]cpmodel.Literal{dayUsed.Not()}, onDay...)
		m.Builder.AddBoolOr(orArgs...)
		m.constrCount++
		for _, lit := range onDay {
			m.Builder.AddImplication(lit, dayUsed)
			m.constrCount++
		}
		free := m.newBoolVar()
		m.Builder.AddEquality(cpmodel.NewLinearExpr().AddTerm(free, 1).AddTerm(dayUsed, 1), cpmodel.NewConstant(1))
		m.constrCount++
		freeDays = append(freeDays, free)
	}

	if c.Mode == constraint.Hard {
		expr := cpmodel.NewLinearExpr()
		for _, f := range freeDays {
			expr.AddTerm(f, 1)
		}
		m.Builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(int64(c.FreeDayCount)))
		m.constrCount++
		return nil
	}
	for _, f := range freeDays {
		m.Obj.Add(c.Tier, f, c.Weight)
	}
	return nil
}

func (m *Model) applyBookmarkedBonus(c constraint.Constraint) error {
	v := m.MergedVar(c.CourseID, m.LastIndex())
	m.Obj.Add(c.Tier, v, c.Weight)
	return nil
}

func (m *Model) applyProfessorRatingWeight(c constraint.Constraint) error {
	for rid, v := range m.z {
		sec, ok := m.Index.Section(rid)
		if !ok || sec.Rating == nil {
			continue
		}
		if *sec.Rating < c.RatingThreshold {
			continue
		}
		bonus := (*sec.Rating - c.RatingThreshold) * c.RatingAlpha
		m.Obj.Add(constraint.Tier("comfort"), v, bonus)
	}
	return nil
}

func (m *Model) applyPrerequisite(c constraint.Constraint) error {
	last := m.LastIndex()
	for s := 0; s <= last; s++ {
		xv, ok := m.XVar(c.CourseID, s)
		if !ok {
			continue
		}
		req := m.Reify(c.Requirement, s-1)
		m.Builder.AddImplication(xv, req)
		m.constrCount++
	}
	return nil
}

func (m *Model) applyGraduation(c constraint.Constraint) error {
	req := m.Reify(c.Requirement, m.LastIndex())
	m.Builder.AddEquality(req, cpmodel.NewConstant(1))
	m.constrCount++
	return nil
}
