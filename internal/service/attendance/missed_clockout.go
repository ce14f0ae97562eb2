package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timezone"
)

var errSessionNoLongerOpen = errors.New("session no longer open")

// MarkMissedClockOuts implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkMissedClockOuts(ctx context.Context) (attendance.MissedClockOutResult, error) {
	today := s.clock.CurrentDate()
	result := attendance.MissedClockOutResult{Date: today}

	yesterday, err := timezone.PreviousDate(today)
	if err != nil {
		return result, fmt.Errorf("failed to derive previous date: %w", err)
	}

	now := s.clock.Now()
	graceMinutes := s.settings.Settings().ClockOutGracePeriodMinutes

	// Yesterday first: overnight sessions opened then may be due now.
	for _, date := range []string{yesterday, today} {
		sessions, err := s.attendanceRepo.ListOpenSessions(ctx, date)
		if err != nil {
			return result, fmt.Errorf("failed to list open sessions for %s: %w", date, err)
		}

		weekday, err := timezone.WeekdayOf(date)
		if err != nil {
			return result, fmt.Errorf("failed to derive weekday for %s: %w", date, err)
		}

		for _, session := range sessions {
			result.Checked++

			marked, err := s.checkMissedClockOut(ctx, session, date, weekday, now, graceMinutes)
			if err != nil {
				slog.Error("Missed clock-out: failed to process session",
					"attendance_id", session.ID,
					"employee_id", session.EmployeeID,
					"date", date,
					"error", err)
				continue
			}
			if marked {
				result.Marked++
			}
		}
	}

	slog.Info("Missed clock-out check finished",
		"date", today,
		"checked", result.Checked,
		"marked", result.Marked)

	return result, nil
}

func (s *AttendanceServiceImpl) checkMissedClockOut(ctx context.Context, session attendance.Attendance, date, weekday string, now time.Time, graceMinutes int) (bool, error) {
	sch, err := s.scheduleRepo.GetActiveForEmployee(ctx, session.EmployeeID, date, weekday)
	if err != nil {
		return false, fmt.Errorf("failed to get schedule: %w", err)
	}
	if sch == nil {
		slog.Info("Missed clock-out: no active schedule, skipping",
			"employee_id", session.EmployeeID,
			"date", date)
		return false, nil
	}

	deadline, err := s.clockOutDeadline(*sch, date, graceMinutes)
	if err != nil {
		slog.Warn("Missed clock-out: schedule has no usable shift end, skipping",
			"employee_id", session.EmployeeID,
			"schedule_id", sch.ID,
			"date", date,
			"error", err)
		return false, nil
	}

	if now.Before(deadline) {
		return false, nil
	}

	var marked attendance.Attendance
	err = s.withEmployeeDateLock(ctx, session.EmployeeID, []string{date}, func(ctx context.Context) error {
		current, err := s.attendanceRepo.GetByID(ctx, session.ID)
		if err != nil {
			return err
		}
		if !current.IsOpen() || !slices.Contains(attendance.ClockedInStatuses, current.Status) {
			return errSessionNoLongerOpen
		}

		current.Status = attendance.StatusMissedClockOut
		if err := current.CheckInvariant(); err != nil {
			return err
		}
		marked, err = s.attendanceRepo.Update(ctx, current)
		return err
	})
	if errors.Is(err, errSessionNoLongerOpen) {
		slog.Debug("Missed clock-out: session closed concurrently, skipping",
			"attendance_id", session.ID,
			"employee_id", session.EmployeeID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	slog.Info("Missed clock-out: session marked",
		"attendance_id", marked.ID,
		"employee_id", marked.EmployeeID,
		"date", date,
		"shift_end", sch.ShiftEnd,
		"grace_minutes", graceMinutes,
		"deadline", deadline.Format(time.RFC3339))
	s.publish(ctx, attendance.EventMissedClockOut, marked)

	return true, nil
}

// clockOutDeadline returns shift end plus grace as an instant, measured from
// local midnight of the session date.
func (s *AttendanceServiceImpl) clockOutDeadline(sch schedule.EmployeeSchedule, date string, graceMinutes int) (time.Time, error) {
	endOffset, err := sch.EndOffsetMinutes()
	if err != nil {
		return time.Time{}, err
	}

	midnight, err := s.clock.StartOfDay(date)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, endOffset+graceMinutes, 0, 0, midnight.Location()), nil
}
