package attendance

import (
	"context"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new attendance record.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// CreateAbsence inserts an Absent record unless one already exists for
	// the employee and date. created is false when the insert was skipped.
	CreateAbsence(ctx context.Context, employeeID string, date string) (Attendance, bool, error)

	// Update persists clock times, status and derived hours.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves a record, returning ErrAttendanceNotFound if missing.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetLatestByEmployeeAndDate returns the open session for the date if one
	// exists, otherwise the most recently created record. nil when none.
	GetLatestByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// FindOpenSession returns the open session (OpenStatuses, clock_out null)
	// for the employee and date, or nil.
	FindOpenSession(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// ListOpenSessions returns every Present/Late session for the date that
	// has a clock-in but no clock-out.
	ListOpenSessions(ctx context.Context, date string) ([]Attendance, error)

	// ListByEmployeeAndDate returns one employee's records for the date in
	// creation order.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date string) ([]Attendance, error)

	// ListByDate returns all records for the date joined with employee info.
	ListByDate(ctx context.Context, date string) ([]Attendance, error)

	// DeleteAbsentByDate removes Absent records for one date.
	DeleteAbsentByDate(ctx context.Context, date string) (int64, error)

	// DeleteAllAbsent removes every Absent record.
	DeleteAllAbsent(ctx context.Context) (int64, error)

	// LockEmployeeDate serialises writers for one employee and date until the
	// surrounding transaction ends.
	LockEmployeeDate(ctx context.Context, employeeID string, date string) error
}

// TxManager runs fn inside a single database transaction carried by ctx.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
