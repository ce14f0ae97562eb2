package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/broker"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sysconfig"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// EventPublisher delivers status events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type AttendanceServiceImpl struct {
	txManager      attendance.TxManager
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	scheduleRepo   schedule.ScheduleRepository
	clock          *timezone.Resolver
	settings       sysconfig.Provider
	publisher      EventPublisher
}

// timePtrToString formats an instant as RFC 3339 in UTC.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:            att.ID,
		EmployeeID:    att.EmployeeID,
		EmployeeName:  att.EmployeeName,
		Department:    att.Department,
		Date:          att.Date,
		ClockIn:       timePtrToString(att.ClockIn),
		ClockOut:      timePtrToString(att.ClockOut),
		Status:        string(att.Status),
		TotalHours:    att.TotalHours,
		OvertimeHours: att.OvertimeHours,
		CreatedAt:     att.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     att.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// publish sends a status event. Failures are logged and never returned.
func (s *AttendanceServiceImpl) publish(ctx context.Context, eventType string, rec attendance.Attendance) {
	event := attendance.NewStatusEvent(eventType, rec, s.clock.Now())
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		slog.Warn("Failed to publish attendance event",
			"event", eventType,
			"attendance_id", rec.ID,
			"employee_id", rec.EmployeeID,
			"error", err)
	}
}

// withEmployeeDateLock runs fn in a transaction holding the advisory lock for
// each (employee, date) pair, acquired in the order given.
func (s *AttendanceServiceImpl) withEmployeeDateLock(ctx context.Context, employeeID string, dates []string, fn func(ctx context.Context) error) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, date := range dates {
			if err := s.attendanceRepo.LockEmployeeDate(ctx, employeeID, date); err != nil {
				return err
			}
		}
		return fn(ctx)
	})
}

// ListToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListToday(ctx context.Context) ([]attendance.AttendanceResponse, error) {
	return s.listByDate(ctx, s.clock.CurrentDate())
}

// ListByDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListByDate(ctx context.Context, date string) ([]attendance.AttendanceResponse, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return nil, attendance.ErrInvalidDate
	}
	return s.listByDate(ctx, date)
}

func (s *AttendanceServiceImpl) listByDate(ctx context.Context, date string) ([]attendance.AttendanceResponse, error) {
	records, err := s.attendanceRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapAttendanceToResponse(rec))
	}
	return responses, nil
}

func NewAttendanceService(
	txManager attendance.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	scheduleRepo schedule.ScheduleRepository,
	clock *timezone.Resolver,
	settings sysconfig.Provider,
	publisher EventPublisher,
) attendance.AttendanceService {
	if settings == nil {
		settings = sysconfig.NewStaticStore(sysconfig.Defaults())
	}
	if clock == nil {
		clock = timezone.NewResolver(settings, nil)
	}
	if publisher == nil {
		publisher = broker.Noop{}
	}
	return &AttendanceServiceImpl{
		txManager:      txManager,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		scheduleRepo:   scheduleRepo,
		clock:          clock,
		settings:       settings,
		publisher:      publisher,
	}
}
