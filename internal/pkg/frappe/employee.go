package frappe

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
)

const employeeDoctype = "Employee"

type employeeRow struct {
	Name         string `json:"name"`
	EmployeeName string `json:"employee_name"`
	Branch       string `json:"branch"`
	Status       string `json:"status"`
}

type employeeDirectory struct {
	client *Client
}

// NewEmployeeDirectory reads the ERP "Employee" doctype as the employee directory.
func NewEmployeeDirectory(client *Client) employee.EmployeeRepository {
	return &employeeDirectory{client: client}
}

// GetActive implements employee.EmployeeRepository.
func (d *employeeDirectory) GetActive(ctx context.Context, branchFilter string) ([]employee.Employee, error) {
	lq := ListQuery{
		Fields:  []string{"name", "employee_name", "branch", "status"},
		Filters: []Filter{{"status", "=", "Active"}},
		OrderBy: "name asc",
	}
	if !checkin.IsAllBranches(branchFilter) {
		lq.Filters = append(lq.Filters, Filter{"branch", "like", strings.TrimSpace(branchFilter)})
	}

	rows, err := listAll[employeeRow](ctx, d.client, employeeDoctype, lq)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row.Name)
		if code == "" {
			continue
		}
		out = append(out, employee.Employee{
			Code:     code,
			FullName: strings.TrimSpace(row.EmployeeName),
			Branch:   strings.TrimSpace(row.Branch),
			Active:   true,
		})
	}
	return out, nil
}

// GetName implements employee.EmployeeRepository.
func (d *employeeDirectory) GetName(ctx context.Context, code string) (string, error) {
	lq := ListQuery{
		Fields:  []string{"name", "employee_name"},
		Filters: []Filter{{"name", "=", code}},
	}
	rows, err := listAll[employeeRow](ctx, d.client, employeeDoctype, lq)
	if err != nil {
		return "", fmt.Errorf("failed to get employee: %w", err)
	}
	if len(rows) == 0 {
		return "", employee.ErrEmployeeNotFound
	}
	return strings.TrimSpace(rows[0].EmployeeName), nil
}
