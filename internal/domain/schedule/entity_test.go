package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeSchedule_Covers(t *testing.T) {
	weekdays := EmployeeSchedule{
		Days:   []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		Status: StatusActive,
	}
	assert.True(t, weekdays.Covers("2026-02-10", "Tuesday"))
	assert.True(t, weekdays.Covers("2026-02-10", "tuesday"))
	assert.False(t, weekdays.Covers("2026-02-14", "Saturday"))

	explicit := EmployeeSchedule{Dates: []string{"2026-02-14"}, Status: StatusActive}
	assert.True(t, explicit.Covers("2026-02-14", "Saturday"))
	assert.False(t, explicit.Covers("2026-02-15", "Sunday"))

	inactive := weekdays
	inactive.Status = StatusInactive
	assert.False(t, inactive.Covers("2026-02-10", "Tuesday"))
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"17:00:00", 1020, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"", 0, true},
		{"5pm", 0, true},
		{"25:00", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		if c.wantErr {
			assert.Error(t, err, c.input)
			continue
		}
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestEmployeeSchedule_EndOffsetMinutes(t *testing.T) {
	day := EmployeeSchedule{ShiftStart: "09:00", ShiftEnd: "17:00"}
	end, err := day.EndOffsetMinutes()
	require.NoError(t, err)
	assert.False(t, day.IsOvernight())
	assert.Equal(t, 1020, end)

	night := EmployeeSchedule{ShiftStart: "22:00", ShiftEnd: "06:00"}
	end, err = night.EndOffsetMinutes()
	require.NoError(t, err)
	assert.True(t, night.IsOvernight())
	assert.Equal(t, 1440+360, end)

	_, err = EmployeeSchedule{ShiftStart: "09:00"}.EndOffsetMinutes()
	assert.ErrorIs(t, err, ErrMissingShiftTime)
}
