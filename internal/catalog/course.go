package catalog

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/degreepath/scheduler/pkg/errors"
)

// CourseID is the canonical "SCHOOL-DEPT-NUMBER" rendering of a course
// identity, e.g. "CAS-CS-320".
type CourseID string

// SectionID is the caller-supplied relation id ("rid" on the wire).
type SectionID string

// Key decomposes a CourseID into its school/department/catalog-number
// triple. Used by Range constraints and courses_in_range lookups.
type Key struct {
	School string
	Dept   string
	Number int
}

// ParseCourseID decomposes the canonical triple. A course ID that doesn't
// parse into school-dept-number still works for every operation except
// Range-based lookups, which will simply never match it.
func ParseCourseID(id CourseID) (Key, error) {
	parts := strings.SplitN(string(id), "-", 3)
	if len(parts) != 3 {
		return Key{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("course id %q is not school-dept-number", id))
	}
	num, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("course id %q has non-numeric catalog number", id))
	}
	return Key{School: parts[0], Dept: parts[1], Number: num}, nil
}

// Section is a single scheduled offering of a course in a semester.
type Section struct {
	ID           SectionID
	CourseID     CourseID
	Semester     int // index into the semester sequence; sections only exist for semester 0 in the nearest-term sense
	Slot         TimeSlot
	InstructorID string
	Rating       *float64
}

// Course is the unique school+dept+number identity plus its baseline score.
type Course struct {
	ID    CourseID
	Score float64
}
