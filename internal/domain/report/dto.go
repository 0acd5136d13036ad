package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/pkg/validator"
)

// MaxRangeDays bounds a single reconciliation run.
const MaxRangeDays = 93

// ========================================
// ATTENDANCE RECONCILIATION REQUEST
// ========================================

type AttendanceReportRequest struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Branch       string `json:"branch"`
	EmployeeCode string `json:"employee_code"`
}

func (r *AttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if validator.DaysBetween(start, end)+1 > MaxRangeDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("date range must not exceed %d days", MaxRangeDays),
			})
		}
	}

	r.Branch = strings.TrimSpace(r.Branch)
	r.EmployeeCode = strings.TrimSpace(r.EmployeeCode)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the requested dates at midnight in loc. Call Validate first.
func (r AttendanceReportRequest) Range(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", r.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", r.EndDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// ========================================
// RESPONSES
// ========================================

type AttendanceSummaryResponse struct {
	RunID       string                    `json:"run_id"`
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	Branch      string                    `json:"branch"`
	GeneratedAt string                    `json:"generated_at"`
	Employees   []EmployeeSummaryResponse `json:"employees"`
	Branches    []BranchSummaryResponse   `json:"branches"`
	Warnings    []string                  `json:"warnings"`
}

type AttendanceDetailResponse struct {
	RunID       string                `json:"run_id"`
	StartDate   string                `json:"start_date"`
	EndDate     string                `json:"end_date"`
	Branch      string                `json:"branch"`
	GeneratedAt string                `json:"generated_at"`
	Records     []DailyRecordResponse `json:"records"`
	TotalCount  int                   `json:"total_count"`
	Warnings    []string              `json:"warnings"`
}

type BranchReportResponse struct {
	RunID       string                  `json:"run_id"`
	StartDate   string                  `json:"start_date"`
	EndDate     string                  `json:"end_date"`
	GeneratedAt string                  `json:"generated_at"`
	Branches    []BranchSummaryResponse `json:"branches"`
	Warnings    []string                `json:"warnings"`
}

type DailyRecordResponse struct {
	EmployeeCode   string   `json:"employee_code"`
	EmployeeName   string   `json:"employee_name"`
	Date           string   `json:"date"`
	Weekday        int      `json:"weekday"`
	Quincena       string   `json:"quincena"`
	Marks          []string `json:"marks"`
	ScheduledEntry *string  `json:"scheduled_entry"`
	ScheduledExit  *string  `json:"scheduled_exit"`
	Overnight      bool     `json:"overnight"`
	EntryMark      *string  `json:"entry_mark"`
	ExitMark       *string  `json:"exit_mark"`
	MarkStatus     string   `json:"mark_status"`
	WorkedHours    string   `json:"worked_hours"`
	ExpectedGross  string   `json:"expected_gross_hours"`
	LeaveDeduction string   `json:"leave_deduction_hours"`
	ExpectedNet    string   `json:"expected_net_hours"`
	BreakHours     string   `json:"break_hours"`
	NetWorkedHours string   `json:"net_worked_hours"`
	HasLeave       bool     `json:"has_leave"`
	LeaveType      *string  `json:"leave_type"`
	Lateness       string   `json:"lateness"`
	Incident       string   `json:"incident"`
	EarlyDeparture bool     `json:"early_departure"`
}

type EmployeeSummaryResponse struct {
	EmployeeCode          string  `json:"employee_code"`
	EmployeeName          string  `json:"employee_name"`
	Branch                string  `json:"branch"`
	Days                  int     `json:"days"`
	WorkingDays           int     `json:"working_days"`
	WorkedHours           string  `json:"worked_hours"`
	ExpectedGrossHours    string  `json:"expected_gross_hours"`
	LeaveDeductionHours   string  `json:"leave_deduction_hours"`
	ExpectedNetHours      string  `json:"expected_net_hours"`
	BreakHours            string  `json:"break_hours"`
	Variance              string  `json:"variance"`
	AbsenceCount          int     `json:"absence_count"`
	JustifiedAbsenceCount int     `json:"justified_absence_count"`
	TardyCount            int     `json:"tardy_count"`
	ForgivenCount         int     `json:"forgiven_count"`
	EarlyDepartureCount   int     `json:"early_departure_count"`
	Episodes              int     `json:"episodes"`
	Efficiency            float64 `json:"efficiency"`
	Punctuality           float64 `json:"punctuality"`
	SIC                   float64 `json:"sic"`
	SICBand               string  `json:"sic_band"`
	Absenteeism           float64 `json:"absenteeism"`
	Bradford              int     `json:"bradford"`
	BradfordBand          string  `json:"bradford_band"`
	Note                  *string `json:"note,omitempty"`
}

type BranchSummaryResponse struct {
	Branch                string  `json:"branch"`
	EmployeeCount         int     `json:"employee_count"`
	AvgEfficiency         float64 `json:"avg_efficiency"`
	AvgPunctuality        float64 `json:"avg_punctuality"`
	AvgSIC                float64 `json:"avg_sic"`
	SICBand               string  `json:"sic_band"`
	AvgBradford           float64 `json:"avg_bradford"`
	BradfordBand          string  `json:"bradford_band"`
	AbsenceCount          int     `json:"absence_count"`
	JustifiedAbsenceCount int     `json:"justified_absence_count"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
