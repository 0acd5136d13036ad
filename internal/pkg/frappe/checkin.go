package frappe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
)

const checkInDoctype = "Employee Checkin"

type checkInRow struct {
	Employee     string `json:"employee"`
	EmployeeName string `json:"employee_name"`
	Time         string `json:"time"`
	DeviceID     string `json:"device_id"`
}

type checkInSource struct {
	client   *Client
	branches *checkin.BranchMapper
}

// NewCheckInSource reads "Employee Checkin" documents, filtering terminals
// by the branch's LIKE patterns.
func NewCheckInSource(client *Client, branches *checkin.BranchMapper) checkin.Source {
	if branches == nil {
		branches = checkin.NewBranchMapper(nil)
	}
	return &checkInSource{client: client, branches: branches}
}

// FetchCheckIns implements checkin.Source.
func (s *checkInSource) FetchCheckIns(ctx context.Context, q checkin.Query) (checkin.FetchResult, error) {
	likes, ok := s.branches.LikePatterns(q.Branch)
	if !ok {
		return checkin.FetchResult{}, fmt.Errorf("%w: %s", checkin.ErrUnknownBranch, q.Branch)
	}

	lq := ListQuery{
		Fields: []string{"employee", "employee_name", "time", "device_id"},
		Filters: []Filter{
			{"time", ">=", q.Start.Format("2006-01-02") + " 00:00:00"},
			{"time", "<=", q.End.Format("2006-01-02") + " 23:59:59"},
		},
		OrderBy: "time asc",
	}
	for _, like := range likes {
		lq.OrFilters = append(lq.OrFilters, Filter{"device_id", "like", like})
	}

	rows, fetchErr := listAll[checkInRow](ctx, s.client, checkInDoctype, lq)

	var res checkin.FetchResult
	for _, row := range rows {
		code := strings.TrimSpace(row.Employee)
		ts, err := s.client.parseTimestamp(row.Time)
		if code == "" || err != nil {
			res.Skipped++
			slog.Warn("Skipping malformed check-in", "employee", row.Employee, "time", row.Time, "error", err)
			continue
		}
		res.Records = append(res.Records, checkin.CheckIn{
			EmployeeCode: code,
			EmployeeName: strings.TrimSpace(row.EmployeeName),
			Time:         ts,
			DeviceID:     strings.TrimSpace(row.DeviceID),
		})
	}
	res.Records = checkin.Dedupe(res.Records)

	if fetchErr != nil {
		res.Partial = true
		return res, fmt.Errorf("%w: %w", checkin.ErrSourceUnavailable, fetchErr)
	}
	return res, nil
}
