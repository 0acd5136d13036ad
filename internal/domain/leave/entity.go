package leave

import "time"

type Status string

const (
	StatusOpen      Status = "Open"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// LeavePeriod is an approved-or-not leave application. From and To are local
// calendar dates, inclusive.
type LeavePeriod struct {
	EmployeeCode string
	EmployeeName string
	LeaveType    string
	From         time.Time
	To           time.Time
	HalfDay      bool
	Status       Status
}

func (p LeavePeriod) IsApproved() bool {
	return p.Status == StatusApproved
}

// Covers reports whether the period includes the calendar day of date.
func (p LeavePeriod) Covers(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(p.From)) && !d.After(dateOnly(p.To))
}

// DayFraction is the share of the day's expected hours the leave takes on
// date. Half-day leave only counts on its first day.
func (p LeavePeriod) DayFraction(date time.Time) float64 {
	if !p.Covers(date) {
		return 0
	}
	if p.HalfDay {
		if dateOnly(date).Equal(dateOnly(p.From)) {
			return 0.5
		}
		return 0
	}
	return 1
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Query struct {
	Start time.Time
	End   time.Time
}

type FetchResult struct {
	Periods []LeavePeriod
	Skipped int
	Partial bool
}
