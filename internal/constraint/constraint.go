package constraint

import (
	"encoding/json"
	"fmt"

	"github.com/degreepath/scheduler/internal/catalog"
	"github.com/degreepath/scheduler/internal/dto"
	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// Mode distinguishes a hard rule (must hold) from a soft preference (an
// objective term).
type Mode string

const (
	Hard Mode = "hard"
	Soft Mode = "soft"
)

// Tier names a bucket of weighted objective terms. Tiers are totally
// ordered by the Objective Manager's configured priority list.
type Tier string

// DefaultTier is used when a soft constraint doesn't name one.
const DefaultTier Tier = "comfort"

// Kind is the closed set of top-level constraint kinds. Unknown kinds fail
// validation; there is no open dispatch.
type Kind string

const (
	KindIncludeCourse            Kind = "include_course"
	KindExcludeCourse            Kind = "exclude_course"
	KindIncludeSection           Kind = "include_section"
	KindExcludeSection           Kind = "exclude_section"
	KindPinSections              Kind = "pin_sections"
	KindIncludeInstructor        Kind = "include_instructor"
	KindExcludeInstructor        Kind = "exclude_instructor"
	KindSectionFilter            Kind = "section_filter"
	KindDisallowedDays           Kind = "disallowed_days"
	KindEarliestStart            Kind = "earliest_start"
	KindLatestEnd                Kind = "latest_end"
	KindBlockTimeWindow          Kind = "block_time_window"
	KindMaxCoursesPerSemester    Kind = "max_courses_per_semester"
	KindMinCoursesPerSemester    Kind = "min_courses_per_semester"
	KindTargetCoursesPerSemester Kind = "target_courses_per_semester"
	KindRequireGroupCounts       Kind = "require_group_counts"
	KindHubTargets               Kind = "hub_targets"
	KindEnforceOrdering          Kind = "enforce_ordering"
	KindFreeDay                  Kind = "free_day"
	KindBookmarkedBonus          Kind = "bookmarked_bonus"
	KindProfessorRatingWeight    Kind = "professor_rating_weight"
	KindLexicographicPriority    Kind = "lexicographic_priority"
	KindPrerequisite             Kind = "prerequisite"
	KindGraduation               Kind = "graduation"
)

// hardOnlyKinds simplify "soft" to "hard" rather than rejecting it outright
// for kinds whose soft form would be meaningless (pins, priority ordering).
var hardOnlyKinds = map[Kind]bool{
	KindPinSections:           true,
	KindLexicographicPriority: true,
}

// dispatchTable is the closed set of recognized kinds; anything absent is
// an InvalidInput error at parse time, per §4.2.
var dispatchTable = map[Kind]bool{
	KindIncludeCourse: true, KindExcludeCourse: true,
	KindIncludeSection: true, KindExcludeSection: true, KindPinSections: true,
	KindIncludeInstructor: true, KindExcludeInstructor: true,
	KindSectionFilter: true, KindDisallowedDays: true, KindEarliestStart: true,
	KindLatestEnd: true, KindBlockTimeWindow: true,
	KindMaxCoursesPerSemester: true, KindMinCoursesPerSemester: true, KindTargetCoursesPerSemester: true,
	KindRequireGroupCounts: true, KindHubTargets: true, KindEnforceOrdering: true,
	KindFreeDay: true, KindBookmarkedBonus: true, KindProfessorRatingWeight: true,
	KindLexicographicPriority: true, KindPrerequisite: true, KindGraduation: true,
}

// Constraint is one parsed top-level declarative rule plus its
// kind-specific decoded payload.
type Constraint struct {
	ID     string
	Kind   Kind
	Mode   Mode
	Weight float64
	Tier   Tier

	CourseID     catalog.CourseID
	SectionID    catalog.SectionID
	SectionIDs   []catalog.SectionID
	InstructorID string
	Instructors  []string // section_filter's instructors_any

	Days          []catalog.Weekday
	EarliestStart int
	LatestEnd     int
	BlockStart    int
	BlockEnd      int

	Min, Max, Target int

	GroupName string
	Count     int
	HubTag    string

	BeforeCourse catalog.CourseID
	AfterCourse  catalog.CourseID

	FreeDayCount int

	RatingThreshold float64
	RatingAlpha     float64

	TierOrder []Tier

	Requirement *Node // Prerequisite, Graduation
}

type sectionFilterPayload struct {
	Days           []string `json:"days_any,omitempty"`
	Instructors    []string `json:"instructors_any,omitempty"`
	EarliestStart  string   `json:"earliest_start,omitempty"`
	LatestEnd      string   `json:"latest_end,omitempty"`
	BlockStart     string   `json:"block_start,omitempty"`
	BlockEnd       string   `json:"block_end,omitempty"`
}

// Parse decodes a raw wire constraint list into typed, validated
// Constraints. Day/time payload fields are resolved with
// catalog.ParseWeekday/ParseMinute; existence checks against courses/sections/groups are deferred to the
// model builder per §4.1 (absent course ids are empty sets, not errors,
// except where semantics require existence).
func Parse(raw []dto.ConstraintInput) ([]Constraint, error) {
	out := make([]Constraint, 0, len(raw))
	for _, r := range raw {
		c, err := parseOne(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseOne(r dto.ConstraintInput) (Constraint, error) {
	kind := Kind(r.Kind)
	if !dispatchTable[kind] {
		return Constraint{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("constraint %q: unknown kind %q", r.ID, r.Kind))
	}

	mode := Mode(r.Mode)
	if mode == "" {
		mode = Hard
	}
	if mode != Hard && mode != Soft {
		return Constraint{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("constraint %q: mode must be hard or soft", r.ID))
	}
	if mode == Soft && hardOnlyKinds[kind] {
		mode = Hard
	}

	weight := 0.0
	if r.Weight != nil {
		weight = *r.Weight
	}
	tier := DefaultTier
	if r.Tier != "" {
		tier = Tier(r.Tier)
	}

	c := Constraint{ID: r.ID, Kind: kind, Mode: mode, Weight: weight, Tier: tier}

	switch kind {
	case KindIncludeCourse, KindExcludeCourse:
		var p struct {
			CourseID string `json:"course_id"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.CourseID == "" {
			return c, missingField(r.ID, "course_id")
		}
		c.CourseID = catalog.CourseID(p.CourseID)
		if kind == KindIncludeCourse {
			c.Mode = Hard // §9: include_course is hard-pin only, never soft.
		}

	case KindIncludeSection, KindExcludeSection, KindPinSections:
		var p struct {
			SectionID  string   `json:"section_id"`
			SectionIDs []string `json:"section_ids"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.SectionID != "" {
			c.SectionID = catalog.SectionID(p.SectionID)
		}
		for _, s := range p.SectionIDs {
			c.SectionIDs = append(c.SectionIDs, catalog.SectionID(s))
		}
		if c.SectionID == "" && len(c.SectionIDs) == 0 {
			return c, missingField(r.ID, "section_id or section_ids")
		}

	case KindIncludeInstructor, KindExcludeInstructor:
		var p struct {
			InstructorID string `json:"instructor_id"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.InstructorID == "" {
			return c, missingField(r.ID, "instructor_id")
		}
		c.InstructorID = p.InstructorID

	case KindSectionFilter, KindDisallowedDays, KindEarliestStart, KindLatestEnd, KindBlockTimeWindow:
		var p sectionFilterPayload
		if err := decode(r, &p); err != nil {
			return c, err
		}
		for _, d := range p.Days {
			wd, err := catalog.ParseWeekday(d)
			if err != nil {
				return c, err
			}
			c.Days = append(c.Days, wd)
		}
		c.Instructors = p.Instructors
		if p.EarliestStart != "" {
			m, err := catalog.ParseMinute(p.EarliestStart)
			if err != nil {
				return c, err
			}
			c.EarliestStart = m
		}
		if p.LatestEnd != "" {
			m, err := catalog.ParseMinute(p.LatestEnd)
			if err != nil {
				return c, err
			}
			c.LatestEnd = m
		} else {
			c.LatestEnd = 1439
		}
		if p.BlockStart != "" {
			m, err := catalog.ParseMinute(p.BlockStart)
			if err != nil {
				return c, err
			}
			c.BlockStart = m
		}
		if p.BlockEnd != "" {
			m, err := catalog.ParseMinute(p.BlockEnd)
			if err != nil {
				return c, err
			}
			c.BlockEnd = m
		}

	case KindMaxCoursesPerSemester, KindMinCoursesPerSemester, KindTargetCoursesPerSemester:
		var p struct {
			Count int `json:"count"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		switch kind {
		case KindMaxCoursesPerSemester:
			c.Max = p.Count
		case KindMinCoursesPerSemester:
			c.Min = p.Count
		case KindTargetCoursesPerSemester:
			c.Target = p.Count
		}

	case KindRequireGroupCounts:
		var p struct {
			Group string `json:"group"`
			Count int    `json:"count"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.Group == "" {
			return c, missingField(r.ID, "group")
		}
		c.GroupName = p.Group
		c.Count = p.Count

	case KindHubTargets:
		var p struct {
			Tag   string `json:"tag"`
			Count int    `json:"count"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.Tag == "" {
			return c, missingField(r.ID, "tag")
		}
		c.HubTag = p.Tag
		c.Count = p.Count

	case KindEnforceOrdering:
		var p struct {
			Before string `json:"before"`
			After  string `json:"after"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.Before == "" || p.After == "" {
			return c, missingField(r.ID, "before and after")
		}
		c.BeforeCourse = catalog.CourseID(p.Before)
		c.AfterCourse = catalog.CourseID(p.After)

	case KindFreeDay:
		var p struct {
			Count int `json:"count"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		c.FreeDayCount = p.Count

	case KindBookmarkedBonus:
		var p struct {
			CourseID string `json:"course_id"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.CourseID == "" {
			return c, missingField(r.ID, "course_id")
		}
		c.CourseID = catalog.CourseID(p.CourseID)
		if c.Tier == DefaultTier && r.Tier == "" {
			c.Tier = Tier("bookmarks") // §9: bookmarked_bonus defaults to the explicit "bookmarks" tier.
		}
		c.Mode = Soft

	case KindProfessorRatingWeight:
		var p struct {
			Threshold float64 `json:"threshold"`
			Alpha     float64 `json:"alpha"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		c.RatingThreshold = p.Threshold
		c.RatingAlpha = p.Alpha
		c.Mode = Soft

	case KindLexicographicPriority:
		var p struct {
			Tiers []string `json:"tiers"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if len(p.Tiers) == 0 {
			return c, missingField(r.ID, "tiers")
		}
		for _, t := range p.Tiers {
			c.TierOrder = append(c.TierOrder, Tier(t))
		}

	case KindPrerequisite:
		var p struct {
			CourseID    string `json:"course_id"`
			Requirement *Node  `json:"requirement"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.CourseID == "" || p.Requirement == nil {
			return c, missingField(r.ID, "course_id and requirement")
		}
		if err := p.Requirement.Validate(); err != nil {
			return c, err
		}
		c.CourseID = catalog.CourseID(p.CourseID)
		c.Requirement = p.Requirement
		c.Mode = Hard

	case KindGraduation:
		var p struct {
			Requirement *Node `json:"requirement"`
		}
		if err := decode(r, &p); err != nil {
			return c, err
		}
		if p.Requirement == nil {
			return c, missingField(r.ID, "requirement")
		}
		if err := p.Requirement.Validate(); err != nil {
			return c, err
		}
		c.Requirement = p.Requirement
		c.Mode = Hard
	}

	return c, nil
}

func decode(r dto.ConstraintInput, dest interface{}) error {
	if len(r.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Payload, dest); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("constraint %q: malformed payload: %v", r.ID, err))
	}
	return nil
}

// ReferencedCourses collects every course id a parsed constraint set could
// possibly bind, so the model builder can allocate a decision variable for
// courses named only inside a constraint payload (never offered as a
// section, never in a group or hub).
func ReferencedCourses(cs []Constraint) []catalog.CourseID {
	var out []catalog.CourseID
	for _, c := range cs {
		if c.CourseID != "" {
			out = append(out, c.CourseID)
		}
		if c.BeforeCourse != "" {
			out = append(out, c.BeforeCourse)
		}
		if c.AfterCourse != "" {
			out = append(out, c.AfterCourse)
		}
		if c.Requirement != nil {
			out = append(out, c.Requirement.CourseIDs()...)
		}
	}
	return out
}

func missingField(id, field string) error {
	return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("constraint %q: missing required field %s", id, field))
}
