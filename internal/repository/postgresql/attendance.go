package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode = "23505"

	openSessionIndex = "uq_attendances_open_session"
	checkViolationCode  = "23514"
)

const attendanceColumns = `
	a.id::text, a.employee_id, to_char(a.date, 'YYYY-MM-DD'), a.clock_in, a.clock_out, a.status,
	a.total_hours::float8, a.overtime_hours::float8, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row rowScanner, extra ...any) (attendance.Attendance, error) {
	var (
		att    attendance.Attendance
		status string
	)
	dest := []any{
		&att.ID, &att.EmployeeID, &att.Date, &att.ClockIn, &att.ClockOut, &status,
		&att.TotalHours, &att.OvertimeHours, &att.CreatedAt, &att.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Attendance{}, err
	}
	att.Status = attendance.Status(status)
	return att, nil
}

func translateAttendancePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolationCode:
		if pgErr.ConstraintName == openSessionIndex {
			return fmt.Errorf("%w: %s", attendance.ErrOpenSessionExists, pgErr.ConstraintName)
		}
		return fmt.Errorf("%w: %s", attendance.ErrAmbiguousRecord, pgErr.ConstraintName)
	case checkViolationCode:
		return fmt.Errorf("%w: %s", attendance.ErrInvariantViolation, pgErr.ConstraintName)
	}
	return err
}

func statusStrings(statuses []attendance.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendances AS a (
			id, employee_id, date, clock_in, clock_out, status, total_hours, overtime_hours
		) VALUES (
			$1, $2, $3::date, $4, $5, $6, $7, $8
		) RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(),
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.ClockOut,
		string(newAttendance.Status),
		newAttendance.TotalHours,
		newAttendance.OvertimeHours,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", translateAttendancePgError(err))
	}

	return created, nil
}

// CreateAbsence implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateAbsence(ctx context.Context, employeeID string, date string) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, false, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendances AS a (id, employee_id, date, status)
		SELECT $1::uuid, $2::text, $3::date, 'Absent'
		WHERE NOT EXISTS (
			SELECT 1 FROM attendances x WHERE x.employee_id = $2::text AND x.date = $3::date
		)
		ON CONFLICT DO NOTHING
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query, id.String(), employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, false, nil
		}
		return attendance.Attendance{}, false, fmt.Errorf("failed to create absence: %w", translateAttendancePgError(err))
	}

	return created, true, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances AS a
		SET clock_in = $2,
			clock_out = $3,
			status = $4,
			total_hours = $5,
			overtime_hours = $6,
			updated_at = NOW()
		WHERE a.id = $1::uuid
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		att.ID,
		att.ClockIn,
		att.ClockOut,
		string(att.Status),
		att.TotalHours,
		att.OvertimeHours,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", translateAttendancePgError(err))
	}

	return updated, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.id = $1::uuid
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}

	return att, nil
}

// GetLatestByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatestByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2::date
		ORDER BY (a.clock_in IS NOT NULL AND a.clock_out IS NULL AND a.status = ANY($3)) DESC,
			a.created_at DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, statusStrings(attendance.OpenStatuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// FindOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindOpenSession(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2::date
		  AND a.clock_in IS NOT NULL
		  AND a.clock_out IS NULL
		  AND a.status = ANY($3)
		ORDER BY a.clock_in DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, statusStrings(attendance.OpenStatuses)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	return &att, nil
}

// ListOpenSessions implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenSessions(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.date = $1::date
		  AND a.clock_in IS NOT NULL
		  AND a.clock_out IS NULL
		  AND a.status = ANY($2)
		ORDER BY a.clock_in ASC
	`

	rows, err := q.Query(ctx, query, date, statusStrings(attendance.ClockedInStatuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session: %w", err)
		}
		sessions = append(sessions, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate open sessions: %w", err)
	}

	return sessions, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `, e.full_name, e.department
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1::date
		ORDER BY e.full_name ASC NULLS LAST, a.clock_in ASC NULLS LAST, a.created_at ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var name, department *string
		att, err := scanAttendance(rows, &name, &department)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.EmployeeName = name
		att.Department = department
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, nil
}

// DeleteAbsentByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteAbsentByDate(ctx context.Context, date string) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE status = 'Absent' AND date = $1::date`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete absences for %s: %w", date, err)
	}

	return tag.RowsAffected(), nil
}

// DeleteAllAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) DeleteAllAbsent(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE status = 'Absent'`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete absences: %w", err)
	}

	return tag.RowsAffected(), nil
}

// LockEmployeeDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockEmployeeDate(ctx context.Context, employeeID string, date string) error {
	if _, ok := txFromContext(ctx); !ok {
		return fmt.Errorf("lock employee date: no transaction in context")
	}
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, employeeID, date); err != nil {
		return fmt.Errorf("failed to lock attendance for %s on %s: %w", employeeID, date, err)
	}

	return nil
}

// ListByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2::date
		ORDER BY a.created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, nil
}
