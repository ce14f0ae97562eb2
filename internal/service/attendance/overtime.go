package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
)

func isClockedIn(rec attendance.Attendance) bool {
	return rec.ClockIn != nil && slices.Contains(attendance.ClockedInStatuses, rec.Status)
}

// ListOvertimeEligible implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListOvertimeEligible(ctx context.Context) ([]attendance.OvertimeEligibleEmployee, error) {
	today := s.clock.CurrentDate()

	records, err := s.attendanceRepo.ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", today, err)
	}

	hasOvertime := make(map[string]bool)
	for _, rec := range records {
		if rec.Status == attendance.StatusOvertime {
			hasOvertime[rec.EmployeeID] = true
		}
	}

	// One entry per employee, preferring the open session.
	index := make(map[string]int)
	eligible := make([]attendance.OvertimeEligibleEmployee, 0)
	for _, rec := range records {
		if !isClockedIn(rec) || hasOvertime[rec.EmployeeID] {
			continue
		}

		entry := attendance.OvertimeEligibleEmployee{
			AttendanceID: rec.ID,
			EmployeeID:   rec.EmployeeID,
			EmployeeName: rec.EmployeeName,
			Department:   rec.Department,
			Date:         rec.Date,
			ClockIn:      timePtrToString(rec.ClockIn),
			Status:       string(rec.Status),
		}

		if i, seen := index[rec.EmployeeID]; seen {
			if rec.IsOpen() {
				eligible[i] = entry
			}
			continue
		}
		index[rec.EmployeeID] = len(eligible)
		eligible = append(eligible, entry)
	}

	return eligible, nil
}

// AssignOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AssignOvertime(ctx context.Context, req attendance.AssignOvertimeRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to look up employee %s: %w", req.EmployeeID, err)
	}

	today := s.clock.CurrentDate()

	var record attendance.Attendance
	err := s.withEmployeeDateLock(ctx, req.EmployeeID, []string{today}, func(ctx context.Context) error {
		records, err := s.attendanceRepo.ListByEmployeeAndDate(ctx, req.EmployeeID, today)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}

		var target *attendance.Attendance
		for i := range records {
			rec := records[i]
			if rec.Status == attendance.StatusOvertime {
				return attendance.ErrOvertimeAlreadyAssigned
			}
			if !isClockedIn(rec) {
				continue
			}
			if target == nil || rec.IsOpen() || !target.IsOpen() {
				target = &records[i]
			}
		}
		if target == nil {
			return attendance.ErrNotClockedIn
		}

		hours := req.OvertimeHours
		assigned := *target
		assigned.Status = attendance.StatusOvertime
		assigned.OvertimeHours = &hours

		record, err = s.attendanceRepo.Update(ctx, assigned)
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrOvertimeAlreadyAssigned) || errors.Is(err, attendance.ErrNotClockedIn) {
			return attendance.AttendanceResponse{}, err
		}
		slog.Error("Failed to assign overtime",
			"employee_id", req.EmployeeID,
			"date", today,
			"error", err)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to assign overtime: %w", err)
	}

	slog.Info("Overtime assigned",
		"employee_id", record.EmployeeID,
		"attendance_id", record.ID,
		"date", today,
		"overtime_hours", req.OvertimeHours)
	s.publish(ctx, attendance.EventOvertimeAssigned, record)

	return mapAttendanceToResponse(record), nil
}
