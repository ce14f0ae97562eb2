package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestClassifyRecord(t *testing.T) {
	in := time.Date(2026, 2, 10, 1, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)

	cases := []struct {
		name string
		rec  *Attendance
		want SessionState
	}{
		{"nil record", nil, StateNoRecord},
		{"absent", &Attendance{Status: StatusAbsent}, StateAbsentRecord},
		{"absent with clock in", &Attendance{Status: StatusAbsent, ClockIn: ptrTime(in)}, StateUnrecognized},
		{"present open", &Attendance{Status: StatusPresent, ClockIn: ptrTime(in)}, StateOpenSession},
		{"late open", &Attendance{Status: StatusLate, ClockIn: ptrTime(in)}, StateOpenSession},
		{"legacy IN open", &Attendance{Status: StatusLegacyIn, ClockIn: ptrTime(in)}, StateOpenSession},
		{"overtime open", &Attendance{Status: StatusOvertime, ClockIn: ptrTime(in)}, StateOpenSession},
		{"present closed", &Attendance{Status: StatusPresent, ClockIn: ptrTime(in), ClockOut: ptrTime(out)}, StateClosedSession},
		{"legacy COMPLETED", &Attendance{Status: StatusLegacyCompleted, ClockIn: ptrTime(in), ClockOut: ptrTime(out)}, StateClosedSession},
		{"missed clock-out", &Attendance{Status: StatusMissedClockOut, ClockIn: ptrTime(in)}, StateClosedSession},
		{"present without clock in", &Attendance{Status: StatusPresent}, StateUnrecognized},
		{"unknown status open", &Attendance{Status: "WEIRD", ClockIn: ptrTime(in)}, StateUnrecognized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ClassifyRecord(c.rec))
		})
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		state SessionState
		event ClockEvent
		want  Action
	}{
		{StateNoRecord, EventClockIn, ActionCreate},
		{StateNoRecord, EventMarkAbsent, ActionCreate},
		{StateAbsentRecord, EventClockIn, ActionConvertAbsent},
		{StateAbsentRecord, EventMarkAbsent, ActionNoop},
		{StateOpenSession, EventClockIn, ActionRejectOpenSession},
		{StateOpenSession, EventMarkAbsent, ActionRejectAmbiguous},
		{StateClosedSession, EventClockIn, ActionCreateNextSession},
		{StateClosedSession, EventMarkAbsent, ActionRejectAmbiguous},
		{StateUnrecognized, EventClockIn, ActionRejectAmbiguous},
		{StateUnrecognized, EventMarkAbsent, ActionRejectAmbiguous},
	}

	for _, c := range cases {
		t.Run(c.state.String()+"/"+c.event.String(), func(t *testing.T) {
			assert.Equal(t, c.want, Transition(c.state, c.event), "got %s", Transition(c.state, c.event))
		})
	}
}

func TestAttendance_CheckInvariant(t *testing.T) {
	in := time.Date(2026, 2, 10, 1, 0, 0, 0, time.UTC)

	assert.NoError(t, Attendance{Status: StatusAbsent}.CheckInvariant())
	assert.NoError(t, Attendance{Status: StatusPresent, ClockIn: ptrTime(in)}.CheckInvariant())
	assert.NoError(t, Attendance{Status: StatusPresent, ClockIn: ptrTime(in), ClockOut: ptrTime(in.Add(time.Hour))}.CheckInvariant())

	assert.ErrorIs(t, Attendance{Status: StatusAbsent, ClockIn: ptrTime(in)}.CheckInvariant(), ErrInvariantViolation)
	assert.ErrorIs(t, Attendance{Status: StatusLate}.CheckInvariant(), ErrInvariantViolation)
	assert.ErrorIs(t, Attendance{Status: StatusPresent, ClockIn: ptrTime(in), ClockOut: ptrTime(in.Add(-time.Minute))}.CheckInvariant(), ErrInvariantViolation)
}

func TestWorkedHours(t *testing.T) {
	in := time.Date(2026, 2, 10, 1, 0, 0, 0, time.UTC)
	assert.InDelta(t, 8.5, WorkedHours(in, in.Add(8*time.Hour+30*time.Minute)), 1e-9)
}
