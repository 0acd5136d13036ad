package report

import "errors"

var (
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrDateRangeTooLong       = errors.New("date range is too long")
	ErrUnknownBranch          = errors.New("unknown branch")
	ErrNoEmployees            = errors.New("no active employees for the requested filter")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
