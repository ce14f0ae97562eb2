package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/lock"
)

const (
	JobMarkMissedClockOuts = "mark_missed_clockouts"
	JobMarkAbsentToday     = "mark_absent_today"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	locker        lock.Locker
	lockTTL       time.Duration
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, locker lock.Locker, lockTTL time.Duration) *AttendanceJobs {
	if locker == nil {
		locker = lock.Noop{}
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		locker:        locker,
		lockTTL:       lockTTL,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, missedClockOutInterval, absenceInterval time.Duration) {
	scheduler.AddJob(JobMarkMissedClockOuts, missedClockOutInterval, j.MarkMissedClockOuts)
	scheduler.AddJob(JobMarkAbsentToday, absenceInterval, j.MarkAbsentToday)
}

// withLock runs fn only if no other replica holds the job lock.
func (j *AttendanceJobs) withLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	unlock, err := j.locker.TryLock(ctx, name, j.lockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		slog.Info("Cron: job already running on another instance, skipping", "name", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire job lock: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Cron: failed to release job lock", "name", name, "error", err)
		}
	}()

	return fn(ctx)
}

func (j *AttendanceJobs) MarkMissedClockOuts(ctx context.Context) error {
	return j.withLock(ctx, JobMarkMissedClockOuts, func(ctx context.Context) error {
		slog.Info("Cron: Starting missed clock-out job")

		result, err := j.attendanceSvc.MarkMissedClockOuts(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark missed clock-outs: %w", err)
		}

		slog.Info("Cron: Missed clock-out job completed",
			"date", result.Date,
			"checked", result.Checked,
			"marked", result.Marked)
		return nil
	})
}

func (j *AttendanceJobs) MarkAbsentToday(ctx context.Context) error {
	return j.withLock(ctx, JobMarkAbsentToday, func(ctx context.Context) error {
		slog.Info("Cron: Starting mark absent job")

		result, err := j.attendanceSvc.MarkAbsentToday(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark absent employees: %w", err)
		}

		slog.Info("Cron: Mark absent job completed",
			"date", result.Date,
			"scheduled", result.Scheduled,
			"marked_absent", result.MarkedAbsent)
		return nil
	})
}
