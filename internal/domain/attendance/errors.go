package attendance

import "errors"

// Attendance domain errors
var (
	// Input errors
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidClockIn        = errors.New("clock_in is not a valid timestamp")
	ErrInvalidClockOut       = errors.New("clock_out is not a valid timestamp")
	ErrInvalidDate           = errors.New("date must be in YYYY-MM-DD format")
	ErrClockOutBeforeClockIn = errors.New("clock_out must not be earlier than clock_in")
	ErrFutureDate            = errors.New("date must not be in the future")

	// Not found errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNoOpenSession      = errors.New("no open session for clock-out")
	ErrNotClockedIn       = errors.New("employee is not clocked in today")

	// Conflict errors
	ErrOpenSessionExists       = errors.New("employee already has an open session")
	ErrAmbiguousRecord         = errors.New("ambiguous existing record")
	ErrOvertimeAlreadyAssigned = errors.New("overtime already assigned for today")

	ErrInvariantViolation = errors.New("attendance record invariant violated")
)
