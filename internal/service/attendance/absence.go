package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// absenceRun describes one pass of the absence marker over a single date.
type absenceRun struct {
	date string
	// checkEnded skips shifts that have not ended elapsed minutes after local
	// midnight of date.
	checkEnded bool
	elapsed    int
	// overnightOnly restricts the pass to shifts that end the following day.
	overnightOnly bool
}

// MarkAbsentToday implements attendance.AttendanceService. Besides today's
// ended shifts it finalises yesterday's overnight shifts, which a today-run
// of the previous day could not yet see as ended.
func (s *AttendanceServiceImpl) MarkAbsentToday(ctx context.Context) (attendance.AbsenceMarkResult, error) {
	today := s.clock.CurrentDate()
	nowMinutes := s.clock.MinutesSinceMidnight()

	result, err := s.markAbsent(ctx, absenceRun{date: today, checkEnded: true, elapsed: nowMinutes})
	if err != nil {
		return result, err
	}

	yesterday, err := timezone.PreviousDate(today)
	if err != nil {
		return result, attendance.ErrInvalidDate
	}
	overnight, err := s.markAbsent(ctx, absenceRun{
		date:          yesterday,
		checkEnded:    true,
		elapsed:       nowMinutes + schedule.MinutesPerDay,
		overnightOnly: true,
	})
	if err != nil {
		return result, err
	}
	result.OvernightDate = yesterday
	result.OvernightMarkedAbsent = overnight.MarkedAbsent

	return result, nil
}

// MarkAbsentForDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAbsentForDate(ctx context.Context, date string) (attendance.AbsenceMarkResult, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return attendance.AbsenceMarkResult{}, attendance.ErrInvalidDate
	}

	today := s.clock.CurrentDate()
	if date > today {
		return attendance.AbsenceMarkResult{}, attendance.ErrFutureDate
	}

	return s.markAbsent(ctx, absenceRun{
		date:       date,
		checkEnded: date == today,
		elapsed:    s.clock.MinutesSinceMidnight(),
	})
}

// markAbsent creates Absent records for scheduled employees with no record on
// the run's date.
func (s *AttendanceServiceImpl) markAbsent(ctx context.Context, run absenceRun) (attendance.AbsenceMarkResult, error) {
	date := run.date
	result := attendance.AbsenceMarkResult{Date: date}

	weekday, err := timezone.WeekdayOf(date)
	if err != nil {
		return result, attendance.ErrInvalidDate
	}

	schedules, err := s.scheduleRepo.ListActiveForDate(ctx, date, weekday)
	if err != nil {
		return result, fmt.Errorf("failed to list schedules for %s: %w", date, err)
	}

	scheduled := make(map[string]struct{})

	for _, sch := range schedules {
		if !sch.Covers(date, weekday) {
			continue
		}
		if run.overnightOnly && !sch.IsOvernight() {
			continue
		}
		scheduled[sch.EmployeeID] = struct{}{}

		if run.checkEnded {
			end, err := sch.EndOffsetMinutes()
			if err != nil {
				slog.Warn("Absence marker: skipping schedule without a usable shift end",
					"employee_id", sch.EmployeeID,
					"schedule_id", sch.ID,
					"date", date,
					"error", err)
				continue
			}
			if run.elapsed < end {
				slog.Debug("Absence marker: shift has not ended yet",
					"employee_id", sch.EmployeeID,
					"date", date,
					"shift_end", sch.ShiftEnd)
				continue
			}
		}

		var (
			rec     attendance.Attendance
			created bool
		)
		err := s.withEmployeeDateLock(ctx, sch.EmployeeID, []string{date}, func(ctx context.Context) error {
			var err error
			rec, created, err = s.attendanceRepo.CreateAbsence(ctx, sch.EmployeeID, date)
			return err
		})
		if err != nil {
			slog.Error("Absence marker: failed to mark employee absent",
				"employee_id", sch.EmployeeID,
				"date", date,
				"error", err)
			continue
		}
		if !created {
			continue
		}

		result.MarkedAbsent++
		slog.Info("Absence marker: employee marked absent",
			"employee_id", sch.EmployeeID,
			"date", date,
			"attendance_id", rec.ID)
		s.publish(ctx, attendance.EventAbsentMarked, rec)
	}

	result.Scheduled = len(scheduled)

	slog.Info("Absence marker finished",
		"date", date,
		"overnight_only", run.overnightOnly,
		"scheduled", result.Scheduled,
		"marked_absent", result.MarkedAbsent)

	return result, nil
}
