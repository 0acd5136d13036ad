package frappe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
)

const leaveDoctype = "Leave Application"

type leaveRow struct {
	Employee     string   `json:"employee"`
	EmployeeName string   `json:"employee_name"`
	LeaveType    string   `json:"leave_type"`
	FromDate     string   `json:"from_date"`
	ToDate       string   `json:"to_date"`
	Status       string   `json:"status"`
	HalfDay      flexBool `json:"half_day"`
}

type leaveSource struct {
	client *Client
}

// NewLeaveSource reads approved "Leave Application" documents overlapping the query range.
func NewLeaveSource(client *Client) leave.Source {
	return &leaveSource{client: client}
}

// FetchLeaves implements leave.Source.
func (s *leaveSource) FetchLeaves(ctx context.Context, q leave.Query) (leave.FetchResult, error) {
	lq := ListQuery{
		Fields: []string{"employee", "employee_name", "leave_type", "from_date", "to_date", "status", "half_day"},
		Filters: []Filter{
			{"status", "=", string(leave.StatusApproved)},
			{"from_date", "<=", q.End.Format("2006-01-02")},
			{"to_date", ">=", q.Start.Format("2006-01-02")},
		},
		OrderBy: "from_date asc",
	}

	rows, fetchErr := listAll[leaveRow](ctx, s.client, leaveDoctype, lq)

	var res leave.FetchResult
	for _, row := range rows {
		period, err := s.toPeriod(row)
		if err != nil {
			res.Skipped++
			slog.Warn("Skipping malformed leave application", "employee", row.Employee, "error", err)
			continue
		}
		res.Periods = append(res.Periods, period)
	}

	if fetchErr != nil {
		res.Partial = true
		return res, fmt.Errorf("%w: %w", leave.ErrSourceUnavailable, fetchErr)
	}
	return res, nil
}

func (s *leaveSource) toPeriod(row leaveRow) (leave.LeavePeriod, error) {
	code := strings.TrimSpace(row.Employee)
	if code == "" {
		return leave.LeavePeriod{}, fmt.Errorf("%w: missing employee", leave.ErrMalformedRecord)
	}
	from, err := s.client.parseDate(row.FromDate)
	if err != nil {
		return leave.LeavePeriod{}, fmt.Errorf("%w: from_date %q", leave.ErrMalformedRecord, row.FromDate)
	}
	to, err := s.client.parseDate(row.ToDate)
	if err != nil {
		return leave.LeavePeriod{}, fmt.Errorf("%w: to_date %q", leave.ErrMalformedRecord, row.ToDate)
	}
	if to.Before(from) {
		return leave.LeavePeriod{}, leave.ErrInvalidLeavePeriod
	}
	return leave.LeavePeriod{
		EmployeeCode: code,
		EmployeeName: strings.TrimSpace(row.EmployeeName),
		LeaveType:    strings.TrimSpace(row.LeaveType),
		From:         from,
		To:           to,
		HalfDay:      bool(row.HalfDay),
		Status:       leave.Status(strings.TrimSpace(row.Status)),
	}, nil
}
