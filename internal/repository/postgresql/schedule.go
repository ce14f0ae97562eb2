package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// Schedules match a date either explicitly or by case-insensitive weekday.
const scheduleSelect = `
	SELECT s.id::text, s.employee_id, s.shift_name,
		COALESCE(to_char(s.shift_start, 'HH24:MI'), ''),
		COALESCE(to_char(s.shift_end, 'HH24:MI'), ''),
		COALESCE(s.days, '{}'::text[]),
		COALESCE(ARRAY(SELECT to_char(d, 'YYYY-MM-DD') FROM unnest(s.dates) AS d), '{}'::text[]),
		s.status
	FROM employee_schedules s
	WHERE s.status = 'Active'
	  AND ($1::date = ANY(COALESCE(s.dates, '{}'::date[]))
	       OR lower($2::text) IN (SELECT lower(x) FROM unnest(COALESCE(s.days, '{}'::text[])) AS x))`

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func scanSchedule(row rowScanner) (schedule.EmployeeSchedule, error) {
	var (
		s      schedule.EmployeeSchedule
		status string
	)
	if err := row.Scan(&s.ID, &s.EmployeeID, &s.ShiftName, &s.ShiftStart, &s.ShiftEnd, &s.Days, &s.Dates, &status); err != nil {
		return schedule.EmployeeSchedule{}, err
	}
	s.Status = schedule.Status(status)
	return s, nil
}

// ListActiveForDate implements schedule.ScheduleRepository.
func (r *scheduleRepository) ListActiveForDate(ctx context.Context, date string, weekday string) ([]schedule.EmployeeSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := scheduleSelect + `
		ORDER BY s.employee_id ASC, s.shift_start ASC
	`

	rows, err := q.Query(ctx, query, date, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for %s: %w", date, err)
	}
	defer rows.Close()

	var schedules []schedule.EmployeeSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}

	return schedules, nil
}

// GetActiveForEmployee implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetActiveForEmployee(ctx context.Context, employeeID string, date string, weekday string) (*schedule.EmployeeSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := scheduleSelect + `
	  AND s.employee_id = $3
		ORDER BY ($1::date = ANY(COALESCE(s.dates, '{}'::date[]))) DESC, s.shift_start ASC
		LIMIT 1
	`

	s, err := scanSchedule(q.QueryRow(ctx, query, date, weekday, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule for employee %s: %w", employeeID, err)
	}

	return &s, nil
}
