package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	RecordClockEvent(w http.ResponseWriter, r *http.Request)
	ListToday(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListOvertimeEligible(w http.ResponseWriter, r *http.Request)
	AssignOvertime(w http.ResponseWriter, r *http.Request)
	RunAbsenceMarking(w http.ResponseWriter, r *http.Request)
	MarkAbsentForDate(w http.ResponseWriter, r *http.Request)
	RunMissedClockOut(w http.ResponseWriter, r *http.Request)
	RemoveInvalidAbsences(w http.ResponseWriter, r *http.Request)
	RemoveAllAbsences(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// RecordClockEvent handles clock-in, clock-out and explicit absence events.
func (h *attendanceHandlerImpl) RecordClockEvent(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.RecordClockEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Created {
		response.Created(w, "Attendance recorded", result.Record)
		return
	}
	response.SuccessWithMessage(w, "Attendance updated", result.Record)
}

func (h *attendanceHandlerImpl) ListToday(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendanceService.ListToday(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: int64(len(records))})
}

// List returns the records of ?date=YYYY-MM-DD, or today's when date is omitted.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.ListToday(w, r)
		return
	}

	records, err := h.attendanceService.ListByDate(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, records, &response.Meta{TotalItems: int64(len(records))})
}

func (h *attendanceHandlerImpl) ListOvertimeEligible(w http.ResponseWriter, r *http.Request) {
	eligible, err := h.attendanceService.ListOvertimeEligible(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, eligible, &response.Meta{TotalItems: int64(len(eligible))})
}

func (h *attendanceHandlerImpl) AssignOvertime(w http.ResponseWriter, r *http.Request) {
	var req attendance.AssignOvertimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.AssignOvertime(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime assigned", record)
}

func (h *attendanceHandlerImpl) RunAbsenceMarking(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.MarkAbsentToday(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence marking completed", result)
}

func (h *attendanceHandlerImpl) MarkAbsentForDate(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.MarkAbsentForDate(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence marking completed", result)
}

func (h *attendanceHandlerImpl) RunMissedClockOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.MarkMissedClockOuts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Missed clock-out check completed", result)
}

func (h *attendanceHandlerImpl) RemoveInvalidAbsences(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.RemoveInvalidAbsences(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Today's absence records removed", result)
}

func (h *attendanceHandlerImpl) RemoveAllAbsences(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.RemoveAllAbsences(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All absence records removed", result)
}
