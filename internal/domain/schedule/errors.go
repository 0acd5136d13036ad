package schedule

import "errors"

var (
	// Rule definition errors
	ErrInvalidDayPattern = errors.New("invalid day pattern")
	ErrInvalidTimeOfDay  = errors.New("invalid time of day, use HH:MM or HH:MM:SS")
	ErrInvalidQuincena   = errors.New("invalid quincena")

	// Lookup errors
	ErrNoShiftForDate = errors.New("no shift scheduled for this date")

	// Validation Errors
	ErrEmployeeCodeRequired = errors.New("employee code is required")
	ErrInvalidDateFormat    = errors.New("invalid date format, use YYYY-MM-DD")
)
