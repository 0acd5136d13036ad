package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/database"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// GetRules implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetRules(ctx context.Context, employeeCode string) ([]schedule.ScheduleRule, error) {
	byEmployee, err := r.GetRulesByEmployees(ctx, []string{employeeCode})
	if err != nil {
		return nil, err
	}
	rules := byEmployee[employeeCode]
	if rules == nil {
		rules = []schedule.ScheduleRule{}
	}
	return rules, nil
}

// GetRulesByEmployees implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetRulesByEmployees(ctx context.Context, employeeCodes []string) (map[string][]schedule.ScheduleRule, error) {
	out := make(map[string][]schedule.ScheduleRule, len(employeeCodes))
	if len(employeeCodes) == 0 {
		return out, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, branch_name, days, quincena,
			   entry_time::text, exit_time::text, crosses_midnight
		FROM schedule_rules
		WHERE employee_code = ANY($1)
		ORDER BY employee_code, id
	`

	rows, err := q.Query(ctx, query, employeeCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec schedule.RuleRecord
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeCode, &rec.BranchName, &rec.Days, &rec.Quincena,
			&rec.Entry, &rec.Exit, &rec.Overnight,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule rule: %w", err)
		}
		rule, err := rec.ToRule()
		if err != nil {
			slog.Warn("Skipping invalid schedule rule", "employee", rec.EmployeeCode, "error", err)
			continue
		}
		out[rec.EmployeeCode] = append(out[rec.EmployeeCode], rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule rules: %w", err)
	}
	return out, nil
}

// GetDayCatalog implements schedule.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetDayCatalog(ctx context.Context) ([]schedule.Day, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, letter FROM weekdays ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekdays: %w", err)
	}
	defer rows.Close()

	var days []schedule.Day
	for rows.Next() {
		var (
			id int16
			d  schedule.Day
		)
		if err := rows.Scan(&id, &d.Name, &d.Letter); err != nil {
			return nil, fmt.Errorf("failed to scan weekday: %w", err)
		}
		d.ID = schedule.Weekday(id)
		days = append(days, d)
	}
	return days, rows.Err()
}
