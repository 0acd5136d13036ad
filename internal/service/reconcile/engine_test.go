package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultPolicy(), checkin.NewBranchMapper(nil), testLoc)
}

func marks(t *testing.T, device string, values ...string) []checkin.CheckIn {
	out := make([]checkin.CheckIn, 0, len(values))
	for _, v := range values {
		out = append(out, checkin.CheckIn{EmployeeCode: "EMP-001", EmployeeName: "Ana Ruiz", Time: at(t, v), DeviceID: device})
	}
	return out
}

func incidents(records []report.DailyAttendanceRecord) map[report.Incident]int {
	out := make(map[report.Incident]int)
	for _, r := range records {
		out[r.Incident]++
	}
	return out
}

// Week of 2024-03-04 (Mon) to 2024-03-08 (Fri), schedule L-V 08:00-17:00.
func weekInput(t *testing.T, wednesdayExit string) EmployeeInput {
	events := marks(t, "VILLAS-01",
		"2024-03-04 07:55", "2024-03-04 17:05",
		// Tuesday: no marks
		"2024-03-06 08:20", "2024-03-06 "+wednesdayExit,
		"2024-03-07 07:58", "2024-03-07 17:00",
		"2024-03-08 08:00", "2024-03-08 17:10",
	)
	return EmployeeInput{
		Code:     "EMP-001",
		Name:     "Ana Ruiz",
		Rules:    []schedule.ScheduleRule{weekdayRule(t, 1, "08:00", "17:00")},
		CheckIns: events,
	}
}

func TestReconcileEmployee_WeekWithAbsenceAndTardy(t *testing.T) {
	out := newTestEngine().ReconcileEmployee(weekInput(t, "17:00"), date(t, "2024-03-04"), date(t, "2024-03-08"))
	require.NoError(t, out.Err)
	require.Len(t, out.Records, 5)

	got := incidents(out.Records)
	assert.Equal(t, 1, got[report.IncidentAbsence])
	assert.Equal(t, 1, got[report.IncidentTardy])
	assert.Equal(t, 3, got[report.IncidentOnTime])

	assert.Equal(t, report.IncidentAbsence, out.Records[1].Incident)
	assert.Equal(t, report.MarkStatusNoMarks, out.Records[1].MarkStatus)
	assert.Equal(t, 20*time.Minute, out.Records[2].Lateness)

	s := out.Summary
	assert.Equal(t, 5, s.WorkingDays)
	assert.Equal(t, 1, s.AbsenceCount)
	assert.Equal(t, 1, s.TardyCount)
	assert.Equal(t, "Villas", s.Branch)
	assert.Equal(t, s.ExpectedGross-s.LeaveDeduction, s.ExpectedNet)
	assert.Equal(t, s.Worked-s.ExpectedNet, s.Variance)
}

func TestReconcileEmployee_LateEntryMadeUpIsForgiven(t *testing.T) {
	out := newTestEngine().ReconcileEmployee(weekInput(t, "17:25"), date(t, "2024-03-04"), date(t, "2024-03-08"))

	got := incidents(out.Records)
	assert.Equal(t, 1, got[report.IncidentAbsence])
	assert.Equal(t, 0, got[report.IncidentTardy])
	assert.Equal(t, 1, got[report.IncidentForgiven])
	assert.Equal(t, 3, got[report.IncidentOnTime])
	assert.Equal(t, 0, out.Summary.TardyCount)
}

func TestReconcileEmployee_VacationDayIsJustified(t *testing.T) {
	in := weekInput(t, "17:00")
	in.CheckIns = marks(t, "NAVE-2",
		"2024-03-04 08:00", "2024-03-04 17:00",
		"2024-03-05 08:00", "2024-03-05 17:00",
		"2024-03-07 08:00", "2024-03-07 17:00",
		"2024-03-08 08:00", "2024-03-08 17:00",
	)
	in.Leaves = []leave.LeavePeriod{{
		EmployeeCode: "EMP-001",
		LeaveType:    "Vacation",
		From:         date(t, "2024-03-06"),
		To:           date(t, "2024-03-06"),
		Status:       leave.StatusApproved,
	}}

	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-03-04"), date(t, "2024-03-08"))
	require.Len(t, out.Records, 5)

	wednesday := out.Records[2]
	assert.Equal(t, report.IncidentJustified, wednesday.Incident)
	assert.Zero(t, wednesday.ExpectedNet)
	assert.True(t, wednesday.FullyJustified())

	assert.Equal(t, 0, out.Summary.AbsenceCount)
	assert.Equal(t, 1, out.Summary.JustifiedAbsenceCount)
	assert.Equal(t, 5, out.Summary.WorkingDays)
	assert.Equal(t, 100.0, out.Summary.Efficiency)
	assert.Equal(t, "Nave", out.Summary.Branch)
}

func TestReconcileEmployee_OvernightAttributedToFirstDay(t *testing.T) {
	in := EmployeeInput{
		Code:     "EMP-001",
		Rules:    []schedule.ScheduleRule{weekdayRule(t, 1, "22:00", "06:00")},
		CheckIns: marks(t, "rioblanco", "2024-03-04 22:05", "2024-03-05 05:55"),
	}

	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-03-04"), date(t, "2024-03-05"))
	require.Len(t, out.Records, 2)

	monday := out.Records[0]
	assert.Equal(t, 7*time.Hour+50*time.Minute, monday.Worked)
	assert.Equal(t, report.MarkStatusComplete, monday.MarkStatus)
	assert.Equal(t, report.IncidentOnTime, monday.Incident)
	assert.Equal(t, "Ana Ruiz", monday.EmployeeName)

	tuesday := out.Records[1]
	assert.Empty(t, tuesday.Marks)
	assert.Equal(t, report.IncidentAbsence, tuesday.Incident)
	assert.Equal(t, "RioBlanco", out.Summary.Branch)
}

func TestReconcileEmployee_StrayMorningMarkDoesNotOpenNightShift(t *testing.T) {
	rule := weekdayRule(t, 1, "22:00", "06:00")
	rule.Days = pattern(t, "L-D")
	in := EmployeeInput{
		Code:  "EMP-001",
		Rules: []schedule.ScheduleRule{rule},
		CheckIns: marks(t, "NAVE",
			"2024-03-04 22:02", "2024-03-05 05:58",
			// outside the grace window, stays on Tuesday
			"2024-03-05 07:30",
			"2024-03-05 22:01", "2024-03-06 05:59",
		),
	}

	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-03-04"), date(t, "2024-03-05"))
	require.Len(t, out.Records, 2)

	monday := out.Records[0]
	assert.Equal(t, 7*time.Hour+56*time.Minute, monday.Worked)
	assert.Equal(t, report.IncidentOnTime, monday.Incident)

	tuesday := out.Records[1]
	require.NotNil(t, tuesday.EntryMark)
	assert.Equal(t, at(t, "2024-03-05 22:01"), *tuesday.EntryMark)
	assert.Equal(t, 7*time.Hour+58*time.Minute, tuesday.Worked)
	assert.Equal(t, time.Minute, tuesday.Lateness)
	assert.Equal(t, report.IncidentOnTime, tuesday.Incident)
	assert.Len(t, tuesday.Marks, 3)
	assert.Zero(t, tuesday.Break)
}

func TestReconcileEmployee_NightShiftArrivalAfterMidnight(t *testing.T) {
	in := EmployeeInput{
		Code:     "EMP-001",
		Rules:    []schedule.ScheduleRule{weekdayRule(t, 1, "22:00", "06:00")},
		CheckIns: marks(t, "NAVE", "2024-03-05 00:30", "2024-03-05 06:00"),
	}

	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-03-04"), date(t, "2024-03-04"))
	require.Len(t, out.Records, 1)

	monday := out.Records[0]
	assert.Equal(t, report.MarkStatusComplete, monday.MarkStatus)
	assert.Equal(t, 5*time.Hour+30*time.Minute, monday.Worked)
	assert.Equal(t, 2*time.Hour+30*time.Minute, monday.Lateness)
	assert.Equal(t, report.IncidentAbsence, monday.Incident)
}

func TestReconcileEmployee_LastNightUsesLookAheadDay(t *testing.T) {
	in := EmployeeInput{
		Code:  "EMP-001",
		Rules: []schedule.ScheduleRule{weekdayRule(t, 1, "22:00", "06:00")},
		// the exit falls on the day after the requested range
		CheckIns: marks(t, "NAVE", "2024-03-08 21:58", "2024-03-09 06:03"),
	}

	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-03-08"), date(t, "2024-03-08"))
	require.Len(t, out.Records, 1)
	assert.Equal(t, 8*time.Hour+5*time.Minute, out.Records[0].Worked)
}

func TestReconcileEmployee_EveryDayHasOneRecord(t *testing.T) {
	in := EmployeeInput{Code: "EMP-404"}
	out := newTestEngine().ReconcileEmployee(in, date(t, "2024-02-26"), date(t, "2024-03-10"))

	require.Len(t, out.Records, 14)
	for _, r := range out.Records {
		assert.Equal(t, report.IncidentNotApplicable, r.Incident)
	}
	assert.Equal(t, checkin.UnknownBranch, out.Summary.Branch)
}

type explodingDays struct{}

func (explodingDays) Includes(schedule.Weekday) bool { panic("corrupt rule") }
func (explodingDays) Exact() bool                    { return true }
func (explodingDays) String() string                 { return "?" }

func TestReconcile_IsolatesEmployeeFailures(t *testing.T) {
	good := weekInput(t, "17:00")
	bad := EmployeeInput{
		Code:       "EMP-999",
		Name:       "Broken",
		HomeBranch: "Nave",
		Rules:      []schedule.ScheduleRule{{ID: 1, Days: explodingDays{}}},
	}

	out, err := newTestEngine().Reconcile(context.Background(), date(t, "2024-03-04"), date(t, "2024-03-08"), []EmployeeInput{bad, good})
	require.NoError(t, err)

	require.Len(t, out.Employees, 2)
	require.Len(t, out.Failures, 1)
	assert.Len(t, out.Records, 5)

	assert.Equal(t, "EMP-001", out.Employees[0].EmployeeCode)
	assert.Empty(t, out.Employees[0].Note)

	failed := out.Employees[1]
	assert.Equal(t, "EMP-999", failed.EmployeeCode)
	assert.Contains(t, failed.Note, "corrupt rule")
	assert.Zero(t, failed.WorkingDays)
	assert.Equal(t, "Nave", failed.Branch)

	assert.Len(t, out.Branches, 2)
}

func TestReconcile_BranchMeanOverTwoEmployees(t *testing.T) {
	rules := []schedule.ScheduleRule{weekdayRule(t, 1, "08:00", "18:00")}
	first := EmployeeInput{
		Code:     "EMP-A",
		Rules:    rules,
		CheckIns: []checkin.CheckIn{{EmployeeCode: "EMP-A", Time: at(t, "2024-03-04 08:00"), DeviceID: "31pte"}, {EmployeeCode: "EMP-A", Time: at(t, "2024-03-04 17:00"), DeviceID: "31pte"}},
	}
	second := EmployeeInput{
		Code:     "EMP-B",
		Rules:    rules,
		CheckIns: []checkin.CheckIn{{EmployeeCode: "EMP-B", Time: at(t, "2024-03-04 08:00"), DeviceID: "31PTE-2"}, {EmployeeCode: "EMP-B", Time: at(t, "2024-03-04 19:00"), DeviceID: "31PTE-2"}},
	}

	out, err := newTestEngine().Reconcile(context.Background(), date(t, "2024-03-04"), date(t, "2024-03-04"), []EmployeeInput{first, second})
	require.NoError(t, err)

	assert.Equal(t, 90.0, out.Employees[0].Efficiency)
	assert.Equal(t, 110.0, out.Employees[1].Efficiency)
	require.Len(t, out.Branches, 1)
	assert.Equal(t, "31pte", out.Branches[0].Branch)
	assert.Equal(t, 2, out.Branches[0].EmployeeCount)
	assert.Equal(t, 100.0, out.Branches[0].AvgEfficiency)
}

func TestReconcile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine().Reconcile(ctx, date(t, "2024-03-04"), date(t, "2024-03-08"), []EmployeeInput{weekInput(t, "17:00")})
	assert.ErrorIs(t, err, context.Canceled)
}
