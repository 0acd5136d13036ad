package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
)

type ReportServiceImpl struct {
	checkIns  checkin.Source
	leaves    leave.Source
	employees employee.EmployeeRepository
	schedules schedule.ScheduleRepository
	engine    *reconcile.Engine
	branches  *checkin.BranchMapper
	loc       *time.Location
	now       func() time.Time
}

// NewReportService wires the reconciliation pipeline. leaves may be nil, in
// which case no leave is applied and every run carries a warning.
func NewReportService(
	checkIns checkin.Source,
	leaves leave.Source,
	employees employee.EmployeeRepository,
	schedules schedule.ScheduleRepository,
	engine *reconcile.Engine,
	branches *checkin.BranchMapper,
	loc *time.Location,
) report.ReportService {
	if branches == nil {
		branches = checkin.NewBranchMapper(nil)
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportServiceImpl{
		checkIns:  checkIns,
		leaves:    leaves,
		employees: employees,
		schedules: schedules,
		engine:    engine,
		branches:  branches,
		loc:       loc,
		now:       time.Now,
	}
}

// Generate implements report.ReportService.
func (s *ReportServiceImpl) Generate(ctx context.Context, req report.AttendanceReportRequest) (report.Result, error) {
	if err := req.Validate(); err != nil {
		return report.Result{}, err
	}

	start, end, err := req.Range(s.loc)
	if err != nil {
		return report.Result{}, err
	}
	if _, ok := s.branches.LikePatterns(req.Branch); !ok {
		return report.Result{}, fmt.Errorf("%w: %s", report.ErrUnknownBranch, req.Branch)
	}

	branch := req.Branch
	if checkin.IsAllBranches(branch) {
		branch = checkin.AllBranches
	}
	res := report.Result{
		RunID:       uuid.NewString(),
		Start:       start,
		End:         end,
		Branch:      branch,
		GeneratedAt: s.now().In(s.loc),
	}
	log := slog.With("run_id", res.RunID, "start", req.StartDate, "end", req.EndDate, "branch", branch)
	began := time.Now()

	// each fetcher owns its result and warning slot until Wait returns
	var (
		events    []checkin.CheckIn
		periods   []leave.LeavePeriod
		staff     []employee.Employee
		directory bool
		notes     [3][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// one extra day so the last night shift's exit is captured
		fetched, err := s.checkIns.FetchCheckIns(gctx, checkin.Query{Start: start, End: end.AddDate(0, 0, 1), Branch: req.Branch})
		events = fetched.Records
		if fetched.Skipped > 0 {
			notes[0] = append(notes[0], fmt.Sprintf("%d malformed check-in records skipped", fetched.Skipped))
		}
		if err != nil {
			if !fetched.Partial {
				return fmt.Errorf("failed to fetch check-ins: %w", err)
			}
			log.Warn("Check-in source aborted, using partial data", "records", len(events), "error", err)
			notes[0] = append(notes[0], fmt.Sprintf("check-in source aborted after %d records: %v", len(events), err))
		}
		return nil
	})
	g.Go(func() error {
		if s.leaves == nil {
			return nil
		}
		fetched, err := s.leaves.FetchLeaves(gctx, leave.Query{Start: start, End: end})
		periods = fetched.Periods
		if fetched.Skipped > 0 {
			notes[1] = append(notes[1], fmt.Sprintf("%d malformed leave applications skipped", fetched.Skipped))
		}
		if err != nil {
			if !fetched.Partial {
				return fmt.Errorf("failed to fetch leave applications: %w", err)
			}
			log.Warn("Leave source aborted, using partial data", "periods", len(periods), "error", err)
			notes[1] = append(notes[1], fmt.Sprintf("leave source aborted after %d applications: %v", len(periods), err))
		}
		return nil
	})
	g.Go(func() error {
		found, err := s.employees.GetActive(gctx, req.Branch)
		if err != nil {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn("Employee directory unavailable, using check-in employees only", "error", err)
			notes[2] = append(notes[2], fmt.Sprintf("employee directory unavailable: %v", err))
			return nil
		}
		staff = found
		directory = true
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, checkin.ErrUnknownBranch) {
			err = fmt.Errorf("%w: %w", report.ErrUnknownBranch, err)
		} else {
			err = fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
		}
		res.Error = err.Error()
		return res, err
	}
	for _, n := range notes {
		res.Warnings = append(res.Warnings, n...)
	}
	if s.leaves == nil {
		res.Warnings = append(res.Warnings, "leave source not configured, no leave applied")
	}

	inputs := s.buildInputs(ctx, staff, directory, events, periods, req.EmployeeCode)
	if len(inputs) == 0 {
		res.Error = report.ErrNoEmployees.Error()
		return res, report.ErrNoEmployees
	}

	codes := make([]string, 0, len(inputs))
	for _, in := range inputs {
		codes = append(codes, in.Code)
	}
	rules, err := s.schedules.GetRulesByEmployees(ctx, codes)
	if err != nil {
		err = fmt.Errorf("%w: failed to load schedule rules: %w", report.ErrReportGenerationFailed, err)
		res.Error = err.Error()
		return res, err
	}
	for i := range inputs {
		inputs[i].Rules = rules[inputs[i].Code]
	}

	out, err := s.engine.Reconcile(ctx, start, end, inputs)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	for _, failure := range out.Failures {
		log.Error("Employee reconciliation failed", "error", failure)
		res.Warnings = append(res.Warnings, failure.Error())
	}

	res.Records = out.Records
	res.Employees = out.Employees
	res.Branches = out.Branches

	log.Info("Reconciliation completed",
		"employees", len(res.Employees),
		"records", len(res.Records),
		"warnings", len(res.Warnings),
		"duration", time.Since(began),
	)
	return res, nil
}

// buildInputs assembles the employee set: the directory plus anyone with
// check-ins in the range, optionally narrowed to one employee code. Without
// a directory, employees with leave in the range are added too so their
// justified days still get records.
func (s *ReportServiceImpl) buildInputs(ctx context.Context, staff []employee.Employee, directory bool, events []checkin.CheckIn, periods []leave.LeavePeriod, only string) []reconcile.EmployeeInput {
	byCode := make(map[string]*reconcile.EmployeeInput)
	get := func(code string) *reconcile.EmployeeInput {
		in, ok := byCode[code]
		if !ok {
			in = &reconcile.EmployeeInput{Code: code}
			byCode[code] = in
		}
		return in
	}

	for _, e := range staff {
		in := get(e.Code)
		in.Name = e.FullName
		in.HomeBranch = e.Branch
	}
	for _, ev := range events {
		in := get(ev.EmployeeCode)
		in.CheckIns = append(in.CheckIns, ev)
		if in.Name == "" {
			in.Name = strings.TrimSpace(ev.EmployeeName)
		}
	}
	for _, p := range periods {
		in, ok := byCode[p.EmployeeCode]
		if !ok {
			if directory {
				continue
			}
			in = get(p.EmployeeCode)
		}
		in.Leaves = append(in.Leaves, p)
		if in.Name == "" {
			in.Name = strings.TrimSpace(p.EmployeeName)
		}
	}

	inputs := make([]reconcile.EmployeeInput, 0, len(byCode))
	for code, in := range byCode {
		if only != "" && !strings.EqualFold(code, only) {
			continue
		}
		if in.Name == "" && directory {
			in.Name = s.lookupName(ctx, code)
		}
		inputs = append(inputs, *in)
	}
	slices.SortFunc(inputs, func(a, b reconcile.EmployeeInput) int { return strings.Compare(a.Code, b.Code) })
	return inputs
}

// lookupName asks the directory for a name the fetched rows did not carry.
func (s *ReportServiceImpl) lookupName(ctx context.Context, code string) string {
	name, err := s.employees.GetName(ctx, code)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Debug("Employee name lookup failed", "employee", code, "error", err)
		}
		return ""
	}
	return name
}

// GetAttendanceSummary implements report.ReportService.
func (s *ReportServiceImpl) GetAttendanceSummary(ctx context.Context, req report.AttendanceReportRequest) (report.AttendanceSummaryResponse, error) {
	res, err := s.Generate(ctx, req)
	if err != nil {
		return report.AttendanceSummaryResponse{}, err
	}
	return toSummaryResponse(res), nil
}

// GetAttendanceDetail implements report.ReportService.
func (s *ReportServiceImpl) GetAttendanceDetail(ctx context.Context, req report.AttendanceReportRequest) (report.AttendanceDetailResponse, error) {
	res, err := s.Generate(ctx, req)
	if err != nil {
		return report.AttendanceDetailResponse{}, err
	}
	return toDetailResponse(res), nil
}

// GetBranchSummary implements report.ReportService.
func (s *ReportServiceImpl) GetBranchSummary(ctx context.Context, req report.AttendanceReportRequest) (report.BranchReportResponse, error) {
	res, err := s.Generate(ctx, req)
	if err != nil {
		return report.BranchReportResponse{}, err
	}
	return toBranchReportResponse(res), nil
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceReportRequest) (report.ExportFile, error) {
	res, err := s.Generate(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, res); err != nil {
		return report.ExportFile{}, fmt.Errorf("failed to render workbook: %w", err)
	}
	return report.ExportFile{
		Filename:    spreadsheet.Filename(res),
		ContentType: spreadsheet.ContentTypeXLSX,
		Content:     buf.Bytes(),
	}, nil
}
