package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// CLOCK EVENT DTOs
// ========================================

type ClockEventRequest struct {
	EmployeeID string  `json:"employee_id"`
	ClockIn    *string `json:"clock_in,omitempty"`
	ClockOut   *string `json:"clock_out,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// IsAbsent reports whether the caller explicitly requested an Absent record.
func (r *ClockEventRequest) IsAbsent() bool {
	return r.Status != nil && strings.EqualFold(strings.TrimSpace(*r.Status), string(StatusAbsent))
}

func (r *ClockEventRequest) HasClockIn() bool {
	return r.ClockIn != nil && !validator.IsEmpty(*r.ClockIn)
}

func (r *ClockEventRequest) HasClockOut() bool {
	return r.ClockOut != nil && !validator.IsEmpty(*r.ClockOut)
}

// RequestedStatus returns the explicit status normalised to its canonical
// spelling, or fallback when none was given.
func (r *ClockEventRequest) RequestedStatus(fallback Status) Status {
	if r.Status == nil || validator.IsEmpty(*r.Status) {
		return fallback
	}
	for _, s := range RequestableStatuses {
		if strings.EqualFold(strings.TrimSpace(*r.Status), s) {
			return Status(s)
		}
	}
	return fallback
}

func (r *ClockEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Status != nil && !validator.IsEmpty(*r.Status) {
		if !validator.IsInSliceFold(strings.TrimSpace(*r.Status), RequestableStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(RequestableStatuses, ", "),
			})
		}
	}

	// Absent records never carry clock times.
	if r.IsAbsent() && (r.HasClockIn() || r.HasClockOut()) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "clock_in and clock_out must be empty when status is Absent",
		})
	}

	// A pure clock-out closes a session opened earlier, so clock_in is only
	// mandatory when no clock_out is given.
	if !r.HasClockIn() && !r.HasClockOut() && !r.IsAbsent() {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in",
			Message: "clock_in is required unless status is Absent",
		})
	}

	if r.HasClockIn() {
		if _, ok := ParseTimestamp(*r.ClockIn); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_in",
				Message: ErrInvalidClockIn.Error(),
			})
		}
	}

	if r.HasClockOut() {
		if _, ok := ParseTimestamp(*r.ClockOut); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: ErrInvalidClockOut.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// bareLayouts are accepted without an offset and interpreted as UTC.
var bareLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts RFC 3339 instants and bare local date-times. Bare
// values carry no zone and are treated as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, ok := validator.IsValidDateTime(value); ok {
		return t.UTC(), true
	}
	for _, layout := range bareLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type ClockEventResult struct {
	Created bool               `json:"created"`
	Record  AttendanceResponse `json:"record"`
}

type AttendanceResponse struct {
	ID            string   `json:"id"`
	EmployeeID    string   `json:"employee_id"`
	EmployeeName  *string  `json:"employee_name,omitempty"`
	Department    *string  `json:"department,omitempty"`
	Date          string   `json:"date"`
	ClockIn       *string  `json:"clock_in"`
	ClockOut      *string  `json:"clock_out"`
	Status        string   `json:"status"`
	TotalHours    *float64 `json:"total_hours,omitempty"`
	OvertimeHours *float64 `json:"overtime_hours,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// ========================================
// BATCH DTOs
// ========================================

type MarkDateRequest struct {
	Date string `json:"date"`
}

func (r *MarkDateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AbsenceMarkResult struct {
	Date         string `json:"date"`
	Scheduled    int    `json:"scheduled"`
	MarkedAbsent int    `json:"markedAbsent"`

	// Set by today-runs, which also finalise the previous day's overnight shifts.
	OvernightDate         string `json:"overnightDate,omitempty"`
	OvernightMarkedAbsent int    `json:"overnightMarkedAbsent,omitempty"`
}

type MissedClockOutResult struct {
	Date    string `json:"date"`
	Checked int    `json:"checked"`
	Marked  int    `json:"marked"`
}

type CleanupResult struct {
	Date    *string `json:"date,omitempty"`
	Deleted int64   `json:"deleted"`
}

// ========================================
// OVERTIME DTOs
// ========================================

type OvertimeEligibleEmployee struct {
	AttendanceID string  `json:"attendance_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Department   *string `json:"department,omitempty"`
	Date         string  `json:"date"`
	ClockIn      *string `json:"clock_in"`
	Status       string  `json:"status"`
}

type AssignOvertimeRequest struct {
	EmployeeID    string  `json:"employee_id"`
	OvertimeHours float64 `json:"overtime_hours"`
}

func (r *AssignOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.OvertimeHours <= 0 || r.OvertimeHours > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_hours",
			Message: "overtime_hours must be greater than 0 and at most 24",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
