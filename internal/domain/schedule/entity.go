package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// EmployeeSchedule assigns a shift to an employee either on a set of
// weekdays or on explicit calendar dates.
type EmployeeSchedule struct {
	ID         string
	EmployeeID string
	ShiftName  string
	ShiftStart string // HH:MM
	ShiftEnd   string // HH:MM
	Days       []string
	Dates      []string // YYYY-MM-DD
	Status     Status
}

func (s EmployeeSchedule) IsActive() bool {
	return strings.EqualFold(string(s.Status), string(StatusActive))
}

// Covers reports whether the schedule applies to the given date. Explicit
// dates take precedence over weekday names.
func (s EmployeeSchedule) Covers(date, weekday string) bool {
	if !s.IsActive() {
		return false
	}
	if slices.Contains(s.Dates, date) {
		return true
	}
	for _, d := range s.Days {
		if strings.EqualFold(strings.TrimSpace(d), weekday) {
			return true
		}
	}
	return false
}

// StartMinutes returns the shift start in minutes since midnight.
func (s EmployeeSchedule) StartMinutes() (int, error) {
	return ParseClock(s.ShiftStart)
}

// EndMinutes returns the shift end in minutes since midnight.
func (s EmployeeSchedule) EndMinutes() (int, error) {
	return ParseClock(s.ShiftEnd)
}

// IsOvernight reports whether the shift ends on the following calendar day.
func (s EmployeeSchedule) IsOvernight() bool {
	start, err := s.StartMinutes()
	if err != nil {
		return false
	}
	end, err := s.EndMinutes()
	if err != nil {
		return false
	}
	return end <= start
}

// EndOffsetMinutes returns the shift end measured from midnight of the shift
// date, adding a day for overnight shifts.
func (s EmployeeSchedule) EndOffsetMinutes() (int, error) {
	end, err := s.EndMinutes()
	if err != nil {
		return 0, err
	}
	if s.IsOvernight() {
		end += MinutesPerDay
	}
	return end, nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrMissingShiftTime
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidShiftTime, value)
}
