package reconcile

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
)

var hundred = decimal.NewFromInt(100)

// Summarize rolls one employee's days into totals and KPIs.
func Summarize(code, name, branch string, records []report.DailyAttendanceRecord) report.EmployeeSummary {
	s := report.EmployeeSummary{
		EmployeeCode: code,
		EmployeeName: name,
		Branch:       branch,
	}

	for _, r := range records {
		s.Days++
		s.Worked += r.Worked
		s.ExpectedGross += r.ExpectedGross
		s.LeaveDeduction += r.LeaveDeduction
		s.Break += r.Break
		s.Episodes += r.BreakEpisodes

		if r.WorkingDay() {
			s.WorkingDays++
		}
		if r.EarlyDeparture {
			s.EarlyDepartureCount++
		}

		switch r.Incident {
		case report.IncidentAbsence:
			s.AbsenceCount++
		case report.IncidentTardy:
			s.TardyCount++
		case report.IncidentForgiven:
			s.ForgivenCount++
		case report.IncidentOnTime:
			s.OnTimeCount++
		case report.IncidentJustified:
			if r.FullyJustified() {
				s.JustifiedAbsenceCount++
			}
		}
	}

	s.ExpectedNet = s.ExpectedGross - s.LeaveDeduction
	s.Variance = s.Worked - s.ExpectedNet

	if s.ExpectedNet > 0 {
		s.Efficiency = ratio(int64(s.Worked), int64(s.ExpectedNet))
	} else {
		s.Efficiency = 100
	}

	if s.WorkingDays > 0 {
		wd := int64(s.WorkingDays)
		s.Punctuality = ratio(max(0, wd-int64(s.TardyCount)), wd)
		incidents := int64(s.AbsenceCount + s.TardyCount + s.EarlyDepartureCount)
		s.SIC = ratio(max(0, wd-incidents), wd)
		s.Absenteeism = ratio(int64(s.AbsenceCount), wd)
	} else {
		s.Punctuality = 100
		s.SIC = 100
		s.Absenteeism = 0
	}

	s.Bradford = s.Episodes * s.Episodes * s.AbsenceCount
	return s
}

// ZeroSummary is the placeholder for an employee whose reconciliation failed.
func ZeroSummary(code, name, branch, note string) report.EmployeeSummary {
	return report.EmployeeSummary{
		EmployeeCode: code,
		EmployeeName: name,
		Branch:       branch,
		Note:         note,
	}
}

// SummarizeBranches groups employee summaries by branch, ordered by branch name.
func SummarizeBranches(summaries []report.EmployeeSummary) []report.BranchSummary {
	type acc struct {
		employees   map[string]struct{}
		efficiency  decimal.Decimal
		punctuality decimal.Decimal
		sic         decimal.Decimal
		bradford    decimal.Decimal
		absences    int
		justified   int
	}

	groups := make(map[string]*acc)
	for _, s := range summaries {
		branch := s.Branch
		if strings.TrimSpace(branch) == "" {
			branch = checkin.UnknownBranch
		}
		a, ok := groups[branch]
		if !ok {
			a = &acc{employees: make(map[string]struct{})}
			groups[branch] = a
		}
		if _, seen := a.employees[s.EmployeeCode]; seen {
			continue
		}
		a.employees[s.EmployeeCode] = struct{}{}
		a.efficiency = a.efficiency.Add(decimal.NewFromFloat(s.Efficiency))
		a.punctuality = a.punctuality.Add(decimal.NewFromFloat(s.Punctuality))
		a.sic = a.sic.Add(decimal.NewFromFloat(s.SIC))
		a.bradford = a.bradford.Add(decimal.NewFromInt(int64(s.Bradford)))
		a.absences += s.AbsenceCount
		a.justified += s.JustifiedAbsenceCount
	}

	out := make([]report.BranchSummary, 0, len(groups))
	for branch, a := range groups {
		n := decimal.NewFromInt(int64(len(a.employees)))
		out = append(out, report.BranchSummary{
			Branch:                branch,
			EmployeeCount:         len(a.employees),
			AvgEfficiency:         a.efficiency.Div(n).Round(2).InexactFloat64(),
			AvgPunctuality:        a.punctuality.Div(n).Round(2).InexactFloat64(),
			AvgSIC:                a.sic.Div(n).Round(2).InexactFloat64(),
			AvgBradford:           a.bradford.Div(n).Round(2).InexactFloat64(),
			AbsenceCount:          a.absences,
			JustifiedAbsenceCount: a.justified,
		})
	}
	slices.SortFunc(out, func(a, b report.BranchSummary) int { return strings.Compare(a.Branch, b.Branch) })
	return out
}

// ratio returns num/den as a percentage rounded to two decimals.
func ratio(num, den int64) float64 {
	return decimal.NewFromInt(num).Mul(hundred).Div(decimal.NewFromInt(den)).Round(2).InexactFloat64()
}

// DominantBranch returns the branch holding most of the check-ins, ties
// broken by name. Unmapped terminals do not vote; fallback is used when
// nothing maps.
func DominantBranch(events []checkin.CheckIn, mapper *checkin.BranchMapper, fallback string) string {
	votes := make(map[string]int)
	for _, e := range events {
		if b := mapper.Resolve(e.DeviceID); b != checkin.UnknownBranch {
			votes[b]++
		}
	}

	best, bestVotes := "", 0
	for b, v := range votes {
		if v > bestVotes || (v == bestVotes && b < best) {
			best, bestVotes = b, v
		}
	}
	if best != "" {
		return best
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return checkin.UnknownBranch
}
