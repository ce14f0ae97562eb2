package attendance

import (
	"context"
)

// AttendanceService defines the attendance status reconciliation operations.
type AttendanceService interface {
	// RecordClockEvent processes a clock-in, clock-out or explicit absence.
	RecordClockEvent(ctx context.Context, req ClockEventRequest) (ClockEventResult, error)

	// ListToday returns today's records joined with employee info.
	ListToday(ctx context.Context) ([]AttendanceResponse, error)

	// ListByDate returns one date's records joined with employee info.
	ListByDate(ctx context.Context, date string) ([]AttendanceResponse, error)

	// MarkAbsentToday marks scheduled employees absent once their shift ended.
	MarkAbsentToday(ctx context.Context) (AbsenceMarkResult, error)

	// MarkAbsentForDate marks scheduled employees absent for a specific date.
	MarkAbsentForDate(ctx context.Context, date string) (AbsenceMarkResult, error)

	// MarkMissedClockOuts flags open sessions past shift end plus grace.
	MarkMissedClockOuts(ctx context.Context) (MissedClockOutResult, error)

	// ListOvertimeEligible returns clocked-in employees without overtime today.
	ListOvertimeEligible(ctx context.Context) ([]OvertimeEligibleEmployee, error)

	// AssignOvertime turns today's clocked-in record into an Overtime record.
	AssignOvertime(ctx context.Context, req AssignOvertimeRequest) (AttendanceResponse, error)

	// RemoveInvalidAbsences deletes today's Absent records.
	RemoveInvalidAbsences(ctx context.Context) (CleanupResult, error)

	// RemoveAllAbsences deletes every Absent record.
	RemoveAllAbsences(ctx context.Context) (CleanupResult, error)
}
