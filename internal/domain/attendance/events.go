package attendance

import "time"

// Routing keys for attendance status events.
const (
	EventClockedIn        = "attendance.clocked_in"
	EventClockedOut       = "attendance.clocked_out"
	EventAbsentMarked     = "attendance.absent_marked"
	EventMissedClockOut   = "attendance.missed_clockout"
	EventOvertimeAssigned = "attendance.overtime_assigned"
)

// StatusEvent is published whenever the engine assigns a status.
type StatusEvent struct {
	Type         string    `json:"type"`
	AttendanceID string    `json:"attendance_id"`
	EmployeeID   string    `json:"employee_id"`
	Date         string    `json:"date"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewStatusEvent(eventType string, rec Attendance, at time.Time) StatusEvent {
	return StatusEvent{
		Type:         eventType,
		AttendanceID: rec.ID,
		EmployeeID:   rec.EmployeeID,
		Date:         rec.Date,
		Status:       string(rec.Status),
		OccurredAt:   at.UTC(),
	}
}

// SubscriberKey routes the event to live-stream subscribers of one employee.
func (e StatusEvent) SubscriberKey() string {
	return e.EmployeeID
}
