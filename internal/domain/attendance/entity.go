package attendance

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPresent         Status = "Present"
	StatusLate            Status = "Late"
	StatusAbsent          Status = "Absent"
	StatusOvertime        Status = "Overtime"
	StatusMissedClockOut  Status = "Missed Clock-out"
	StatusLegacyIn        Status = "IN"
	StatusLegacyCompleted Status = "COMPLETED"
)

// RequestableStatuses are the statuses a caller may pass on a clock event.
var RequestableStatuses = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusAbsent),
}

// OpenStatuses are the statuses a clock-out may close.
var OpenStatuses = []Status{StatusPresent, StatusLate, StatusLegacyIn, StatusOvertime}

// ClockedInStatuses are the statuses that count as "on shift" for the
// missed clock-out marker and overtime eligibility.
var ClockedInStatuses = []Status{StatusPresent, StatusLate}

type Attendance struct {
	ID            string
	EmployeeID    string
	Date          string // YYYY-MM-DD in the configured timezone
	ClockIn       *time.Time
	ClockOut      *time.Time
	Status        Status
	TotalHours    *float64
	OvertimeHours *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
	Department   *string
}

// IsOpen reports whether the record is a session a clock-out can close.
func (a Attendance) IsOpen() bool {
	if a.ClockIn == nil || a.ClockOut != nil {
		return false
	}
	for _, s := range OpenStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// IsClosed reports whether the session has both clock-in and clock-out.
func (a Attendance) IsClosed() bool {
	return a.ClockIn != nil && a.ClockOut != nil
}

// CheckInvariant verifies that Absent records carry no clock times and every
// other record carries a clock-in.
func (a Attendance) CheckInvariant() error {
	if a.Status == StatusAbsent {
		if a.ClockIn != nil || a.ClockOut != nil {
			return fmt.Errorf("%w: absent record must not carry clock times", ErrInvariantViolation)
		}
		return nil
	}
	if a.ClockIn == nil {
		return fmt.Errorf("%w: status %q requires clock_in", ErrInvariantViolation, a.Status)
	}
	if a.ClockOut != nil && a.ClockOut.Before(*a.ClockIn) {
		return fmt.Errorf("%w: clock_out precedes clock_in", ErrInvariantViolation)
	}
	return nil
}

// WorkedHours returns clock_out - clock_in in hours.
func WorkedHours(clockIn, clockOut time.Time) float64 {
	return clockOut.Sub(clockIn).Hours()
}
