package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// RemoveInvalidAbsences implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RemoveInvalidAbsences(ctx context.Context) (attendance.CleanupResult, error) {
	today := s.clock.CurrentDate()

	deleted, err := s.attendanceRepo.DeleteAbsentByDate(ctx, today)
	if err != nil {
		return attendance.CleanupResult{}, fmt.Errorf("failed to remove absences for %s: %w", today, err)
	}

	slog.Info("Removed today's absence records", "date", today, "deleted", deleted)

	return attendance.CleanupResult{Date: &today, Deleted: deleted}, nil
}

// RemoveAllAbsences implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RemoveAllAbsences(ctx context.Context) (attendance.CleanupResult, error) {
	deleted, err := s.attendanceRepo.DeleteAllAbsent(ctx)
	if err != nil {
		return attendance.CleanupResult{}, fmt.Errorf("failed to remove absences: %w", err)
	}

	slog.Warn("Removed all absence records", "deleted", deleted)

	return attendance.CleanupResult{Deleted: deleted}, nil
}
