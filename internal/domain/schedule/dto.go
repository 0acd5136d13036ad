package schedule

import (
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/pkg/validator"
)

type ResolveShiftRequest struct {
	EmployeeCode string `json:"employee_code"`
	Date         string `json:"date"`
}

func (r *ResolveShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)
	if validator.IsEmpty(r.EmployeeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_code",
			Message: "employee_code is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResolvedShiftResponse struct {
	EmployeeCode  string  `json:"employee_code"`
	Date          string  `json:"date"`
	Weekday       int     `json:"weekday"`
	Quincena      string  `json:"quincena"`
	WorkingDay    bool    `json:"working_day"`
	RuleID        *int64  `json:"rule_id"`
	EntryTime     *string `json:"entry_time"`
	ExitTime      *string `json:"exit_time"`
	Overnight     bool    `json:"overnight"`
	ExpectedHours string  `json:"expected_hours"`
}

type DayResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Letter string `json:"letter"`
}
