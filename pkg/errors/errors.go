package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios, plus the six solver error kinds.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrInvalidInput covers malformed or structurally inconsistent request payloads:
	// bad JSON, missing required fields, out-of-range values.
	ErrInvalidInput = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")

	// ErrReference covers constraints or relations pointing at class/section/group
	// identifiers the catalog index does not contain.
	ErrReference = New("REFERENCE_ERROR", http.StatusBadRequest, "unresolved reference")

	// ErrModelTooLarge is returned when variable or constraint counts exceed the
	// configured ceiling before the solve is attempted.
	ErrModelTooLarge = New("MODEL_TOO_LARGE", http.StatusRequestEntityTooLarge, "model exceeds size ceiling")

	// ErrInfeasible is returned when the CP-SAT search proves no assignment
	// satisfies every hard constraint.
	ErrInfeasible = New("INFEASIBLE", http.StatusUnprocessableEntity, "no feasible plan satisfies the hard constraints")

	// ErrTimeout is returned when the solver exhausts its time budget without
	// finding any feasible solution or proving infeasibility.
	ErrTimeout = New("TIMEOUT", http.StatusGatewayTimeout, "solver exceeded its time budget")

	// ErrSolverInternal wraps unexpected failures from the CP-SAT backend itself.
	ErrSolverInternal = New("SOLVER_INTERNAL", http.StatusInternalServerError, "solver failed internally")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
