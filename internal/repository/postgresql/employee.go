package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActive(ctx context.Context, branchFilter string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT code, full_name, branch, active, created_at, updated_at
		FROM employees
		WHERE active`
	var args []interface{}
	if !checkin.IsAllBranches(branchFilter) {
		query += ` AND lower(branch) = lower($1)`
		args = append(args, branchFilter)
	}
	query += ` ORDER BY code`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(&emp.Code, &emp.FullName, &emp.Branch, &emp.Active, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// GetName implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetName(ctx context.Context, code string) (string, error) {
	q := GetQuerier(ctx, e.db)

	var name string
	err := q.QueryRow(ctx, `SELECT full_name FROM employees WHERE code = $1`, code).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", employee.ErrEmployeeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get employee name: %w", err)
	}
	return name, nil
}
