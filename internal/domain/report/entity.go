package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

// Incident is the primary, mutually exclusive classification of a day.
type Incident string

const (
	IncidentNotApplicable Incident = "not_applicable"
	IncidentAbsence       Incident = "absence"
	IncidentTardy         Incident = "tardy"
	IncidentOnTime        Incident = "on_time"
	IncidentForgiven      Incident = "forgiven"
	IncidentJustified     Incident = "justified"
)

type MarkStatus string

const (
	MarkStatusNoMarks      MarkStatus = "no_marks"
	MarkStatusComplete     MarkStatus = "complete"
	MarkStatusMissingExit  MarkStatus = "missing_exit"
	MarkStatusMissingEntry MarkStatus = "missing_entry"
)

// DailyAttendanceRecord is the reconciled view of one employee on one day.
type DailyAttendanceRecord struct {
	EmployeeCode string
	EmployeeName string
	Date         time.Time
	Weekday      schedule.Weekday
	Quincena     schedule.Quincena

	// Marks attributed to this day's shift, ascending. For overnight shifts
	// this includes the early-morning marks of the following calendar day.
	Marks []time.Time

	Shift      *schedule.ShiftDefinition
	EntryMark  *time.Time
	ExitMark   *time.Time
	MarkStatus MarkStatus
	Worked     time.Duration

	ExpectedGross  time.Duration
	LeaveDeduction time.Duration
	ExpectedNet    time.Duration

	Break         time.Duration
	BreakEpisodes int

	HasLeave      bool
	LeaveType     string
	LeaveCategory leave.Category

	Lateness       time.Duration
	Incident       Incident
	EarlyDeparture bool
}

// WorkingDay reports whether the day counts in KPI denominators.
func (r DailyAttendanceRecord) WorkingDay() bool {
	return r.ExpectedGross > 0
}

// FullyJustified reports leave covering the whole of a working day.
func (r DailyAttendanceRecord) FullyJustified() bool {
	return r.HasLeave && r.ExpectedGross > 0 && r.LeaveDeduction == r.ExpectedGross
}

func (r DailyAttendanceRecord) NetWorked() time.Duration {
	if r.Break >= r.Worked {
		return 0
	}
	return r.Worked - r.Break
}

type EmployeeSummary struct {
	EmployeeCode string
	EmployeeName string
	Branch       string

	Days        int
	WorkingDays int

	Worked         time.Duration
	ExpectedGross  time.Duration
	LeaveDeduction time.Duration
	ExpectedNet    time.Duration
	Break          time.Duration
	Variance       time.Duration

	AbsenceCount          int
	JustifiedAbsenceCount int
	TardyCount            int
	ForgivenCount         int
	OnTimeCount           int
	EarlyDepartureCount   int
	Episodes              int

	Efficiency  float64
	Punctuality float64
	SIC         float64
	Absenteeism float64
	Bradford    int

	// Note is set when the employee could not be reconciled and the summary is zeroed.
	Note string
}

type BranchSummary struct {
	Branch                string
	EmployeeCount         int
	AvgEfficiency         float64
	AvgPunctuality        float64
	AvgSIC                float64
	AvgBradford           float64
	AbsenceCount          int
	JustifiedAbsenceCount int
}

// Result is the output of one reconciliation run.
type Result struct {
	RunID       string
	Start       time.Time
	End         time.Time
	Branch      string
	GeneratedAt time.Time

	Records   []DailyAttendanceRecord
	Employees []EmployeeSummary
	Branches  []BranchSummary

	Warnings []string
	Error    string
}

// SICBand labels a SIC percentage.
func SICBand(sic float64) string {
	switch {
	case sic > 85:
		return "Excelente"
	case sic >= 70:
		return "Bueno"
	case sic >= 50:
		return "Regular"
	default:
		return "Crítico"
	}
}

// BradfordBand labels a Bradford factor.
func BradfordBand(bradford float64) string {
	switch {
	case bradford <= 25:
		return "Excelente"
	case bradford <= 50:
		return "Bueno"
	case bradford <= 100:
		return "Regular"
	default:
		return "Crítico"
	}
}
