package schedule

import "errors"

var (
	ErrScheduleNotFound = errors.New("no active schedule found for date")
	ErrMissingShiftTime = errors.New("shift time is missing")
	ErrInvalidShiftTime = errors.New("invalid shift time")
)
