package schedule

import "context"

// ScheduleRepository resolves employee shift assignments. Read-only.
type ScheduleRepository interface {
	// ListActiveForDate returns every active schedule covering the date,
	// matched either by explicit date or by weekday name.
	ListActiveForDate(ctx context.Context, date string, weekday string) ([]EmployeeSchedule, error)

	// GetActiveForEmployee returns the employee's active schedule for the
	// date, or nil when none applies.
	GetActiveForEmployee(ctx context.Context, employeeID string, date string, weekday string) (*EmployeeSchedule, error)
}
