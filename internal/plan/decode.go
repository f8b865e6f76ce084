// Package plan implements the Result Decoder (spec.md §4.6): it maps the
// solver's chosen booleans back into a structured, semester-indexed plan
// plus nearest-semester section assignments and per-tier objective scores.
package plan

import (
	"sort"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/constraint"
	"github.com/degreepath/scheduler/internal/modelbuilder"
	"github.com/degreepath/scheduler/internal/solver"
)

// Assignment is a chosen nearest-semester section with its decoded time
// and instructor.
type Assignment struct {
	CourseID     catalog.CourseID
	SectionID    catalog.SectionID
	Days         []catalog.Weekday
	StartMinute  int
	EndMinute    int
	InstructorID string
}

// Plan is the engine's decoded output (spec.md §6's output contract, minus
// wire encoding).
type Plan struct {
	Status          solver.Status
	BySemester      map[int][]catalog.CourseID // future semesters only, s in [0,last]
	Assignments     []Assignment
	ObjectiveScores map[constraint.Tier]int64
	Scale           int64
}

// Decode reads the solver response once, after the solver terminates, and
// produces a Plan. Only called when result.Status is OPTIMAL or FEASIBLE;
// callers should surface result's terminal error otherwise.
func Decode(model *modelbuilder.Model, result *solver.Result) *Plan {
	p := &Plan{
		Status:          result.Status,
		BySemester:      make(map[int][]catalog.CourseID),
		ObjectiveScores: result.TierScores,
		Scale:           model.Obj.Scale(),
	}

	universe := model.Universe()
	last := model.LastIndex()
	for s := 1; s <= last; s++ {
		for _, course := range universe {
			v, ok := model.XVar(course, s)
			if !ok || !cpmodel.SolutionBooleanValue(result.Response, v) {
				continue
			}
			p.BySemester[s] = append(p.BySemester[s], course)
		}
	}

	for _, course := range universe {
		v, ok := model.XVar(course, 0)
		if !ok || !cpmodel.SolutionBooleanValue(result.Response, v) {
			continue
		}
		p.BySemester[0] = append(p.BySemester[0], course)
		for _, rid := range model.Index.SectionsOf(course) {
			zv, ok := model.ZVar(rid)
			if !ok || !cpmodel.SolutionBooleanValue(result.Response, zv) {
				continue
			}
			sec, ok := model.Index.Section(rid)
			if !ok {
				continue
			}
			p.Assignments = append(p.Assignments, Assignment{
				CourseID:     course,
				SectionID:    rid,
				Days:         sec.Slot.Days,
				StartMinute:  sec.Slot.StartMinute,
				EndMinute:    sec.Slot.EndMinute,
				InstructorID: sec.InstructorID,
			})
		}
	}
	sort.Slice(p.Assignments, func(i, j int) bool { return p.Assignments[i].CourseID < p.Assignments[j].CourseID })

	return p
}
