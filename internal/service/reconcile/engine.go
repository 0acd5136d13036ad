package reconcile

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

// EmployeeInput is everything the engine needs for one employee.
type EmployeeInput struct {
	Code       string
	Name       string
	HomeBranch string
	Rules      []schedule.ScheduleRule
	CheckIns   []checkin.CheckIn
	Leaves     []leave.LeavePeriod
}

// EmployeeOutput is one employee's private slot of a run.
type EmployeeOutput struct {
	Records []report.DailyAttendanceRecord
	Summary report.EmployeeSummary
	// Err is set when the employee could not be reconciled.
	Err error
}

// Output is the merged result of a run.
type Output struct {
	Records   []report.DailyAttendanceRecord
	Employees []report.EmployeeSummary
	Branches  []report.BranchSummary
	// Failures lists the employees whose summaries were zeroed.
	Failures []error
}

type Engine struct {
	policy   Policy
	branches *checkin.BranchMapper
	loc      *time.Location
	workers  int
}

func NewEngine(policy Policy, branches *checkin.BranchMapper, loc *time.Location) *Engine {
	if branches == nil {
		branches = checkin.NewBranchMapper(nil)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		policy:   policy,
		branches: branches,
		loc:      loc,
		workers:  runtime.GOMAXPROCS(0),
	}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Reconcile builds one record per employee and day in [start, end] and the
// summaries derived from them. Employees are processed in parallel, each
// into its own slot; a failing employee yields a zeroed summary and does
// not affect the others. Only context cancellation returns an error.
func (e *Engine) Reconcile(ctx context.Context, start, end time.Time, inputs []EmployeeInput) (Output, error) {
	start, end = e.day(start), e.day(end)
	slots := make([]EmployeeOutput, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = e.ReconcileEmployee(inputs[i], start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Output{}, fmt.Errorf("reconciliation aborted: %w", err)
	}

	var out Output
	for _, slot := range slots {
		out.Records = append(out.Records, slot.Records...)
		out.Employees = append(out.Employees, slot.Summary)
		if slot.Err != nil {
			out.Failures = append(out.Failures, slot.Err)
		}
	}
	slices.SortStableFunc(out.Employees, func(a, b report.EmployeeSummary) int {
		return strings.Compare(a.EmployeeCode, b.EmployeeCode)
	})
	slices.SortStableFunc(out.Records, func(a, b report.DailyAttendanceRecord) int {
		if c := strings.Compare(a.EmployeeCode, b.EmployeeCode); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	out.Branches = SummarizeBranches(out.Employees)
	return out, nil
}

// ReconcileEmployee runs the per-day pipeline for a single employee. Panics
// are recovered into EmployeeOutput.Err with a zeroed summary.
func (e *Engine) ReconcileEmployee(in EmployeeInput, start, end time.Time) (out EmployeeOutput) {
	start, end = e.day(start), e.day(end)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("employee %s: %v", in.Code, r)
			out = EmployeeOutput{
				Summary: ZeroSummary(in.Code, in.Name, e.homeBranch(in), "reconciliation failed: "+fmt.Sprint(r)),
				Err:     err,
			}
		}
	}()

	// One day of padding on each side so overnight shifts straddling the
	// range edges are attributed correctly.
	byDay := e.groupMarks(in.CheckIns)
	var days []DayMarks
	for d := start.AddDate(0, 0, -1); !d.After(end.AddDate(0, 0, 1)); d = d.AddDate(0, 0, 1) {
		dm := DayMarks{Date: d, Marks: byDay[dayKey(d)]}
		if shift, ok := Resolve(in.Rules, d); ok {
			dm.Shift = &shift
		}
		days = append(days, dm)
	}
	assigned := AssignMarks(days, e.policy.OvernightGrace)

	name := in.Name
	records := make([]report.DailyAttendanceRecord, 0, len(days)-2)
	for i := 1; i < len(days)-1; i++ {
		rec := e.buildRecord(in, days[i], assigned[i])
		if name == "" {
			name = rec.EmployeeName
		}
		records = append(records, rec)
	}

	branch := DominantBranch(e.inRange(in.CheckIns, start, end), e.branches, in.HomeBranch)
	return EmployeeOutput{
		Records: records,
		Summary: Summarize(in.Code, name, branch, records),
	}
}

func (e *Engine) buildRecord(in EmployeeInput, day DayMarks, marks []time.Time) report.DailyAttendanceRecord {
	rec := report.DailyAttendanceRecord{
		EmployeeCode: in.Code,
		EmployeeName: in.Name,
		Date:         day.Date,
		Weekday:      schedule.WeekdayOf(day.Date),
		Quincena:     schedule.QuincenaOf(day.Date),
		Shift:        day.Shift,
	}
	if rec.EmployeeName == "" {
		rec.EmployeeName = nameFromCheckIns(in.CheckIns)
	}

	w := Normalize(marks, day.Shift, day.Date)
	rec.Marks = w.Marks
	rec.EntryMark = w.Entry
	rec.ExitMark = w.Exit
	rec.MarkStatus = w.Status
	rec.Worked = w.Worked

	if day.Shift != nil {
		rec.ExpectedGross = day.Shift.ExpectedDuration()
	}
	rec = ApplyLeave(rec, in.Leaves, e.policy.Leave)

	br := breakFor(w, e.policy)
	rec.Break = br.Duration
	rec.BreakEpisodes = br.Episodes

	c := Classify(rec, e.policy)
	rec.Incident = c.Incident
	rec.Lateness = c.Lateness
	rec.EarlyDeparture = c.EarlyDeparture
	return rec
}

func (e *Engine) groupMarks(events []checkin.CheckIn) map[string][]time.Time {
	byDay := make(map[string][]time.Time)
	for _, ev := range events {
		t := ev.Time.In(e.loc)
		k := dayKey(t)
		byDay[k] = append(byDay[k], t)
	}
	return byDay
}

func (e *Engine) inRange(events []checkin.CheckIn, start, end time.Time) []checkin.CheckIn {
	limit := end.AddDate(0, 0, 1)
	var out []checkin.CheckIn
	for _, ev := range events {
		t := ev.Time.In(e.loc)
		if !t.Before(start) && t.Before(limit) {
			out = append(out, ev)
		}
	}
	return out
}

func (e *Engine) homeBranch(in EmployeeInput) string {
	if strings.TrimSpace(in.HomeBranch) != "" {
		return in.HomeBranch
	}
	return checkin.UnknownBranch
}

// day truncates t to local midnight.
func (e *Engine) day(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func nameFromCheckIns(events []checkin.CheckIn) string {
	for _, ev := range events {
		if ev.EmployeeName != "" {
			return ev.EmployeeName
		}
	}
	return ""
}
