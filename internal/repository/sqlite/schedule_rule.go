package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

type scheduleRepositoryImpl struct {
	store *Store
}

func NewScheduleRepository(store *Store) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{store: store}
}

const ruleColumns = `id, employee_code, branch_name, days, quincena, entry_time, exit_time, crosses_midnight`

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

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(employeeCodes)), ",")
	args := make([]any, len(employeeCodes))
	for i, c := range employeeCodes {
		args[i] = c
	}

	query := `SELECT ` + ruleColumns + ` FROM schedule_rules WHERE employee_code IN (` + placeholders + `) ORDER BY employee_code, id`
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec schedule.RuleRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeCode, &rec.BranchName, &rec.Days, &rec.Quincena, &rec.Entry, &rec.Exit, &rec.Overnight); err != nil {
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
	rows, err := r.store.db.QueryContext(ctx, `SELECT id, name, letter FROM weekdays ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekdays: %w", err)
	}
	defer rows.Close()

	var days []schedule.Day
	for rows.Next() {
		var d schedule.Day
		if err := rows.Scan(&d.ID, &d.Name, &d.Letter); err != nil {
			return nil, fmt.Errorf("failed to scan weekday: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SaveRule inserts or replaces the rule identified by employee, branch, days
// and quincena, returning its id.
func (s *Store) SaveRule(ctx context.Context, rec schedule.RuleRecord) (int64, error) {
	if _, err := rec.ToRule(); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO schedule_rules (employee_code, branch_name, days, quincena, entry_time, exit_time, crosses_midnight)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_code, branch_name, days, quincena) DO UPDATE SET
			entry_time = excluded.entry_time,
			exit_time = excluded.exit_time,
			crosses_midnight = excluded.crosses_midnight
		RETURNING id
	`, rec.EmployeeCode, rec.BranchName, rec.Days, rec.Quincena, rec.Entry, rec.Exit, rec.Overnight).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save schedule rule: %w", err)
	}
	return id, nil
}
