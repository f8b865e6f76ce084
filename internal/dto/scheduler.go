package dto

import "encoding/json"

// RelationInput is one offered section on the wire: "rid" is the section's
// caller-supplied identifier, "class_id" is the course it belongs to.
type RelationInput struct {
	RID          string   `json:"rid" validate:"required"`
	ClassID      string   `json:"class_id" validate:"required"`
	Semester     int      `json:"semester"`
	Days         []string `json:"days" validate:"required,min=1,dive,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	StartMinute  int      `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute    int      `json:"end_minute" validate:"min=0,max=1439"`
	InstructorID string   `json:"instructor_id,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Score        float64  `json:"score,omitempty"`
}

// ConflictPair is an explicit (rid, rid) pair that must not be co-selected.
// When conflicts is omitted entirely, the catalog index computes conflicts
// from relation time overlap instead.
type ConflictPair [2]string

// HubsInput describes general-education / hub requirement tags: per-tag
// required counts, and per-tag course membership.
type HubsInput struct {
	Requirements map[string]int      `json:"requirements,omitempty"`
	ClassesByTag map[string][]string `json:"classes_by_tag,omitempty"`
}

// ConstraintInput is one declarative constraint on the wire. Payload is
// kind-specific and parsed by internal/constraint once the kind is known.
type ConstraintInput struct {
	ID     string          `json:"id" validate:"required"`
	Kind   string          `json:"kind" validate:"required"`
	Mode   string          `json:"mode,omitempty"`
	Weight *float64        `json:"weight,omitempty"`
	Tier   string          `json:"tier,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SolveRequest is the engine's single typed input contract (spec.md §6).
type SolveRequest struct {
	Relations             []RelationInput   `json:"relations" validate:"required,min=1,dive"`
	Conflicts              []ConflictPair    `json:"conflicts,omitempty"`
	Groups                 map[string][]string `json:"groups,omitempty"`
	Hubs                   HubsInput         `json:"hubs,omitempty"`
	Semesters              []string          `json:"semesters" validate:"required,min=1"`
	Bookmarks              []string          `json:"bookmarks,omitempty"`
	CompletedCourses       []string          `json:"completed_courses,omitempty"`
	NumCoursesPerSemester  int               `json:"num_courses_per_semester" validate:"required,min=1"`
	MinCoursesPerSemester  int               `json:"min_courses_per_semester,omitempty"`
	Constraints            []ConstraintInput `json:"constraints,omitempty"`
	TimeLimitSec           float64           `json:"time_limit_sec,omitempty"`
	Scale                  int64             `json:"scale,omitempty"`
	TierOrder               []string          `json:"tier_order,omitempty"`
	UseStagedLexicographic bool              `json:"use_staged_lexicographic,omitempty"`
	Seed                    int64             `json:"seed,omitempty"`
	Workers                 int               `json:"workers,omitempty"`
}

// AssignmentOutput is a chosen nearest-semester section with its decoded
// time and instructor.
type AssignmentOutput struct {
	CourseID     string   `json:"course_id"`
	RID          string   `json:"rid"`
	Days         []string `json:"days"`
	StartMinute  int      `json:"start_minute"`
	EndMinute    int      `json:"end_minute"`
	InstructorID string   `json:"instructor_id,omitempty"`
}

// ErrorPayload describes a non-OPTIMAL/FEASIBLE terminal status.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	ConstraintID string `json:"constraint_id,omitempty"`
}

// SolveResponse is the engine's single typed output contract (spec.md §6).
type SolveResponse struct {
	Status          string              `json:"status"`
	Plan            map[string][]string `json:"plan"`
	Assignments     []AssignmentOutput  `json:"assignments"`
	ObjectiveScores map[string]int64    `json:"objective_scores"`
	Scale           int64               `json:"scale"`
	Error           *ErrorPayload       `json:"error,omitempty"`
}
