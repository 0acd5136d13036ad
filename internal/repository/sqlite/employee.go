package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
)

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

// GetActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetActive(ctx context.Context, branchFilter string) ([]employee.Employee, error) {
	query := `SELECT code, full_name, branch, active, created_at, updated_at FROM employees WHERE active = 1`
	var args []any
	if !checkin.IsAllBranches(branchFilter) {
		query += ` AND branch = ? COLLATE NOCASE`
		args = append(args, branchFilter)
	}
	query += ` ORDER BY code`

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		var (
			e                    employee.Employee
			createdAt, updatedAt string
		)
		if err := rows.Scan(&e.Code, &e.FullName, &e.Branch, &e.Active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		e.UpdatedAt = parseTimestamp(updatedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetName implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetName(ctx context.Context, code string) (string, error) {
	var name string
	err := r.store.db.QueryRowContext(ctx, `SELECT full_name FROM employees WHERE code = ?`, code).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", employee.ErrEmployeeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get employee name: %w", err)
	}
	return name, nil
}

// SaveEmployee inserts or updates an employee by code.
func (s *Store) SaveEmployee(ctx context.Context, e employee.Employee) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (code, full_name, branch, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			full_name = excluded.full_name,
			branch = excluded.branch,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, e.Code, e.FullName, e.Branch, e.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
