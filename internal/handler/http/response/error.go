package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, jwt.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Invalid input
	case errors.Is(err, attendance.ErrInvalidInput),
		errors.Is(err, attendance.ErrInvalidClockIn),
		errors.Is(err, attendance.ErrInvalidClockOut),
		errors.Is(err, attendance.ErrInvalidDate),
		errors.Is(err, attendance.ErrFutureDate),
		errors.Is(err, attendance.ErrClockOutBeforeClockIn):
		BadRequest(w, err.Error(), nil)

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, attendance.ErrNoOpenSession):
		NotFound(w, "No open session found for clock-out")
	case errors.Is(err, attendance.ErrNotClockedIn):
		NotFound(w, "Employee is not clocked in today")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Conflict
	case errors.Is(err, attendance.ErrOpenSessionExists):
		Conflict(w, "Employee already has an open session")
	case errors.Is(err, attendance.ErrAmbiguousRecord):
		Conflict(w, "Existing attendance record is in an ambiguous state")
	case errors.Is(err, attendance.ErrOvertimeAlreadyAssigned):
		Conflict(w, "Overtime already assigned for today")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
