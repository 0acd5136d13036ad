package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/utils"
)

const dateLayout = "2006-01-02"

func toSummaryResponse(res report.Result) report.AttendanceSummaryResponse {
	employees := make([]report.EmployeeSummaryResponse, 0, len(res.Employees))
	for _, s := range res.Employees {
		employees = append(employees, toEmployeeSummaryResponse(s))
	}
	return report.AttendanceSummaryResponse{
		RunID:       res.RunID,
		StartDate:   res.Start.Format(dateLayout),
		EndDate:     res.End.Format(dateLayout),
		Branch:      res.Branch,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Employees:   employees,
		Branches:    toBranchSummaries(res.Branches),
		Warnings:    warnings(res.Warnings),
	}
}

func toDetailResponse(res report.Result) report.AttendanceDetailResponse {
	records := make([]report.DailyRecordResponse, 0, len(res.Records))
	for _, r := range res.Records {
		records = append(records, toDailyRecordResponse(r))
	}
	return report.AttendanceDetailResponse{
		RunID:       res.RunID,
		StartDate:   res.Start.Format(dateLayout),
		EndDate:     res.End.Format(dateLayout),
		Branch:      res.Branch,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Records:     records,
		TotalCount:  len(records),
		Warnings:    warnings(res.Warnings),
	}
}

func toBranchReportResponse(res report.Result) report.BranchReportResponse {
	return report.BranchReportResponse{
		RunID:       res.RunID,
		StartDate:   res.Start.Format(dateLayout),
		EndDate:     res.End.Format(dateLayout),
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Branches:    toBranchSummaries(res.Branches),
		Warnings:    warnings(res.Warnings),
	}
}

func toDailyRecordResponse(r report.DailyAttendanceRecord) report.DailyRecordResponse {
	resp := report.DailyRecordResponse{
		EmployeeCode:   r.EmployeeCode,
		EmployeeName:   r.EmployeeName,
		Date:           r.Date.Format(dateLayout),
		Weekday:        int(r.Weekday),
		Quincena:       r.Quincena.String(),
		Marks:          make([]string, 0, len(r.Marks)),
		EntryMark:      formatMark(r.EntryMark),
		ExitMark:       formatMark(r.ExitMark),
		MarkStatus:     string(r.MarkStatus),
		WorkedHours:    utils.FormatHMS(r.Worked),
		ExpectedGross:  utils.FormatHMS(r.ExpectedGross),
		LeaveDeduction: utils.FormatHMS(r.LeaveDeduction),
		ExpectedNet:    utils.FormatHMS(r.ExpectedNet),
		BreakHours:     utils.FormatHMS(r.Break),
		NetWorkedHours: utils.FormatHMS(r.NetWorked()),
		HasLeave:       r.HasLeave,
		Lateness:       utils.FormatHMS(r.Lateness),
		Incident:       string(r.Incident),
		EarlyDeparture: r.EarlyDeparture,
	}
	for _, m := range r.Marks {
		resp.Marks = append(resp.Marks, m.Format(time.RFC3339))
	}
	if r.Shift != nil {
		entry, exit := r.Shift.Entry.String(), r.Shift.Exit.String()
		resp.ScheduledEntry = &entry
		resp.ScheduledExit = &exit
		resp.Overnight = r.Shift.Overnight
	}
	if r.HasLeave {
		lt := r.LeaveType
		resp.LeaveType = &lt
	}
	return resp
}

func toEmployeeSummaryResponse(s report.EmployeeSummary) report.EmployeeSummaryResponse {
	resp := report.EmployeeSummaryResponse{
		EmployeeCode:          s.EmployeeCode,
		EmployeeName:          s.EmployeeName,
		Branch:                s.Branch,
		Days:                  s.Days,
		WorkingDays:           s.WorkingDays,
		WorkedHours:           utils.FormatHMS(s.Worked),
		ExpectedGrossHours:    utils.FormatHMS(s.ExpectedGross),
		LeaveDeductionHours:   utils.FormatHMS(s.LeaveDeduction),
		ExpectedNetHours:      utils.FormatHMS(s.ExpectedNet),
		BreakHours:            utils.FormatHMS(s.Break),
		Variance:              utils.FormatSignedHMS(s.Variance),
		AbsenceCount:          s.AbsenceCount,
		JustifiedAbsenceCount: s.JustifiedAbsenceCount,
		TardyCount:            s.TardyCount,
		ForgivenCount:         s.ForgivenCount,
		EarlyDepartureCount:   s.EarlyDepartureCount,
		Episodes:              s.Episodes,
		Efficiency:            s.Efficiency,
		Punctuality:           s.Punctuality,
		SIC:                   s.SIC,
		SICBand:               report.SICBand(s.SIC),
		Absenteeism:           s.Absenteeism,
		Bradford:              s.Bradford,
		BradfordBand:          report.BradfordBand(float64(s.Bradford)),
	}
	if s.Note != "" {
		note := s.Note
		resp.Note = &note
	}
	return resp
}

func toBranchSummaries(branches []report.BranchSummary) []report.BranchSummaryResponse {
	out := make([]report.BranchSummaryResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, report.BranchSummaryResponse{
			Branch:                b.Branch,
			EmployeeCount:         b.EmployeeCount,
			AvgEfficiency:         b.AvgEfficiency,
			AvgPunctuality:        b.AvgPunctuality,
			AvgSIC:                b.AvgSIC,
			SICBand:               report.SICBand(b.AvgSIC),
			AvgBradford:           b.AvgBradford,
			BradfordBand:          report.BradfordBand(b.AvgBradford),
			AbsenceCount:          b.AbsenceCount,
			JustifiedAbsenceCount: b.JustifiedAbsenceCount,
		})
	}
	return out
}

func formatMark(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// warnings never serializes as null.
func warnings(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
