package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timezone"
)

// RecordClockEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordClockEvent(ctx context.Context, req attendance.ClockEventRequest) (attendance.ClockEventResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockEventResult{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.ClockEventResult{}, employee.ErrEmployeeNotFound
		}
		return attendance.ClockEventResult{}, fmt.Errorf("failed to look up employee %s: %w", req.EmployeeID, err)
	}

	var clockIn *time.Time
	if req.HasClockIn() {
		t, ok := attendance.ParseTimestamp(*req.ClockIn)
		if !ok {
			return attendance.ClockEventResult{}, attendance.ErrInvalidClockIn
		}
		clockIn = &t
	}

	if req.HasClockOut() {
		clockOut, ok := attendance.ParseTimestamp(*req.ClockOut)
		if !ok {
			return attendance.ClockEventResult{}, attendance.ErrInvalidClockOut
		}
		return s.clockOut(ctx, req.EmployeeID, clockIn, clockOut)
	}

	return s.clockIn(ctx, req, clockIn)
}

func (s *AttendanceServiceImpl) clockIn(ctx context.Context, req attendance.ClockEventRequest, clockIn *time.Time) (attendance.ClockEventResult, error) {
	event := attendance.EventClockIn
	var date string
	if req.IsAbsent() {
		event = attendance.EventMarkAbsent
		date = s.clock.CurrentDate()
	} else {
		date = s.clock.DateOf(*clockIn)
	}
	status := req.RequestedStatus(attendance.StatusPresent)

	var (
		record    attendance.Attendance
		created   bool
		published string
	)

	err := s.withEmployeeDateLock(ctx, req.EmployeeID, []string{date}, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetLatestByEmployeeAndDate(ctx, req.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get existing attendance: %w", err)
		}

		state := attendance.ClassifyRecord(existing)
		action := attendance.Transition(state, event)

		// Retried clock-in for a session we already recorded.
		if existing != nil && clockIn != nil && existing.ClockIn != nil && existing.ClockIn.Equal(*clockIn) &&
			(action == attendance.ActionRejectOpenSession || action == attendance.ActionCreateNextSession) {
			action = attendance.ActionNoop
		}

		slog.Info("Clock event decision",
			"employee_id", req.EmployeeID,
			"date", date,
			"event", event.String(),
			"state", state.String(),
			"action", action.String(),
			"status", string(status))

		switch action {
		case attendance.ActionCreate, attendance.ActionCreateNextSession:
			newRecord := attendance.Attendance{
				EmployeeID: req.EmployeeID,
				Date:       date,
				Status:     status,
			}
			if event == attendance.EventClockIn {
				newRecord.ClockIn = clockIn
			}
			if err := newRecord.CheckInvariant(); err != nil {
				return err
			}

			record, err = s.attendanceRepo.Create(ctx, newRecord)
			if err != nil {
				return err
			}
			created = true
			published = attendance.EventClockedIn
			if event == attendance.EventMarkAbsent {
				published = attendance.EventAbsentMarked
			}

		case attendance.ActionConvertAbsent:
			converted := *existing
			converted.ClockIn = clockIn
			converted.Status = status
			if err := converted.CheckInvariant(); err != nil {
				return err
			}

			record, err = s.attendanceRepo.Update(ctx, converted)
			if err != nil {
				return err
			}
			published = attendance.EventClockedIn

		case attendance.ActionNoop:
			record = *existing

		case attendance.ActionRejectOpenSession:
			return attendance.ErrOpenSessionExists

		default:
			if existing != nil {
				return fmt.Errorf("%w: status %q", attendance.ErrAmbiguousRecord, existing.Status)
			}
			return attendance.ErrAmbiguousRecord
		}

		return nil
	})
	if err != nil {
		return attendance.ClockEventResult{}, s.clockEventError(err, req.EmployeeID, date, "clock_in")
	}

	if published != "" {
		s.publish(ctx, published, record)
	}

	return attendance.ClockEventResult{Created: created, Record: mapAttendanceToResponse(record)}, nil
}

func (s *AttendanceServiceImpl) clockOut(ctx context.Context, employeeID string, clockIn *time.Time, clockOut time.Time) (attendance.ClockEventResult, error) {
	searchDate := s.clock.CurrentDate()
	if clockIn != nil {
		searchDate = s.clock.DateOf(*clockIn)
	}

	// A pure clock-out may close an overnight session opened yesterday.
	dates := []string{searchDate}
	if clockIn == nil {
		previous, err := timezone.PreviousDate(searchDate)
		if err != nil {
			return attendance.ClockEventResult{}, fmt.Errorf("failed to derive previous date: %w", err)
		}
		dates = append(dates, previous)
	}

	var (
		record  attendance.Attendance
		updated bool
	)

	err := s.withEmployeeDateLock(ctx, employeeID, dates, func(ctx context.Context) error {
		for _, date := range dates {
			open, err := s.attendanceRepo.FindOpenSession(ctx, employeeID, date)
			if err != nil {
				return fmt.Errorf("failed to find open session: %w", err)
			}
			if open == nil {
				continue
			}

			if clockOut.Before(*open.ClockIn) {
				return attendance.ErrClockOutBeforeClockIn
			}

			hours := attendance.WorkedHours(*open.ClockIn, clockOut)
			closed := *open
			closed.ClockOut = &clockOut
			closed.TotalHours = &hours
			if err := closed.CheckInvariant(); err != nil {
				return err
			}

			record, err = s.attendanceRepo.Update(ctx, closed)
			if err != nil {
				return err
			}
			updated = true

			slog.Info("Clock-out recorded",
				"employee_id", employeeID,
				"date", date,
				"attendance_id", record.ID,
				"status", string(record.Status),
				"total_hours", hours)
			return nil
		}

		// Retried clock-out for a session that is already closed.
		for _, date := range dates {
			latest, err := s.attendanceRepo.GetLatestByEmployeeAndDate(ctx, employeeID, date)
			if err != nil {
				return fmt.Errorf("failed to get existing attendance: %w", err)
			}
			if latest != nil && latest.ClockOut != nil && latest.ClockOut.Equal(clockOut) {
				record = *latest
				return nil
			}
		}

		return attendance.ErrNoOpenSession
	})
	if err != nil {
		return attendance.ClockEventResult{}, s.clockEventError(err, employeeID, searchDate, "clock_out")
	}

	if updated {
		s.publish(ctx, attendance.EventClockedOut, record)
	}

	return attendance.ClockEventResult{Created: false, Record: mapAttendanceToResponse(record)}, nil
}

// clockEventError logs unexpected failures with context and passes domain
// errors through unchanged.
func (s *AttendanceServiceImpl) clockEventError(err error, employeeID, date, operation string) error {
	switch {
	case errors.Is(err, attendance.ErrOpenSessionExists),
		errors.Is(err, attendance.ErrAmbiguousRecord),
		errors.Is(err, attendance.ErrNoOpenSession),
		errors.Is(err, attendance.ErrClockOutBeforeClockIn):
		slog.Info("Clock event rejected",
			"employee_id", employeeID,
			"date", date,
			"operation", operation,
			"reason", err.Error())
		return err
	}

	slog.Error("Clock event failed",
		"employee_id", employeeID,
		"date", date,
		"operation", operation,
		"error", err)
	return fmt.Errorf("failed to record %s: %w", operation, err)
}
