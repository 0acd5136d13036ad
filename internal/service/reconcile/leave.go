package reconcile

import (
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
)

// ApplyLeave returns rec with leave flags and the expected-hours deduction
// set. Only approved periods count. When several cover the day, the larger
// share wins, then the earliest start, then the leave type.
func ApplyLeave(rec report.DailyAttendanceRecord, periods []leave.LeavePeriod, policy leave.Policy) report.DailyAttendanceRecord {
	rec.HasLeave = false
	rec.LeaveType = ""
	rec.LeaveCategory = ""
	rec.LeaveDeduction = 0
	rec.ExpectedNet = rec.ExpectedGross

	var chosen *leave.LeavePeriod
	var chosenFraction float64
	for i := range periods {
		p := &periods[i]
		if !p.IsApproved() || !strings.EqualFold(p.EmployeeCode, rec.EmployeeCode) {
			continue
		}
		fraction := p.DayFraction(rec.Date)
		if fraction == 0 {
			continue
		}
		if chosen == nil || betterLeave(p, fraction, chosen, chosenFraction) {
			chosen = p
			chosenFraction = fraction
		}
	}
	if chosen == nil {
		return rec
	}

	rec.HasLeave = true
	rec.LeaveType = chosen.LeaveType
	rec.LeaveCategory = leave.CategoryOf(chosen.LeaveType)

	if !policy.Adjusts(chosen.LeaveType) {
		return rec
	}
	if chosenFraction >= 1 {
		rec.LeaveDeduction = rec.ExpectedGross
	} else {
		rec.LeaveDeduction = rec.ExpectedGross / 2
	}
	rec.ExpectedNet = rec.ExpectedGross - rec.LeaveDeduction
	return rec
}

func betterLeave(p *leave.LeavePeriod, fraction float64, cur *leave.LeavePeriod, curFraction float64) bool {
	if fraction != curFraction {
		return fraction > curFraction
	}
	if !p.From.Equal(cur.From) {
		return p.From.Before(cur.From)
	}
	return p.LeaveType < cur.LeaveType
}
