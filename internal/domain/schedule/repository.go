package schedule

import (
	"context"
	"fmt"
)

type ScheduleRepository interface {
	// GetRules returns every rule scoped to the employee. Unknown employees yield an empty slice.
	GetRules(ctx context.Context, employeeCode string) ([]ScheduleRule, error)
	// GetRulesByEmployees loads rules for many employees in one round trip, keyed by employee code.
	GetRulesByEmployees(ctx context.Context, employeeCodes []string) (map[string][]ScheduleRule, error)
	GetDayCatalog(ctx context.Context) ([]Day, error)
}

// RuleRecord is a schedule rule as persisted: days as a weekday number or a
// pattern code, quincena as 0/1/2 and times as "HH:MM[:SS]" text.
type RuleRecord struct {
	ID           int64
	EmployeeCode string
	BranchName   string
	Days         string
	Quincena     int
	Entry        string
	Exit         string
	Overnight    bool
}

// ToRule validates the record and converts it to a ScheduleRule.
func (r RuleRecord) ToRule() (ScheduleRule, error) {
	days, err := ParseDaySelector(r.Days)
	if err != nil {
		return ScheduleRule{}, fmt.Errorf("rule %d: %w", r.ID, err)
	}
	q := Quincena(r.Quincena)
	if q < QuincenaAny || q > QuincenaSecond {
		return ScheduleRule{}, fmt.Errorf("rule %d: %w: %d", r.ID, ErrInvalidQuincena, r.Quincena)
	}
	entry, err := ParseTimeOfDay(r.Entry)
	if err != nil {
		return ScheduleRule{}, fmt.Errorf("rule %d: entry: %w", r.ID, err)
	}
	exit, err := ParseTimeOfDay(r.Exit)
	if err != nil {
		return ScheduleRule{}, fmt.Errorf("rule %d: exit: %w", r.ID, err)
	}
	return ScheduleRule{
		ID:           r.ID,
		EmployeeCode: r.EmployeeCode,
		BranchName:   r.BranchName,
		Days:         days,
		Quincena:     q,
		Entry:        entry,
		Exit:         exit,
		Overnight:    r.Overnight,
	}, nil
}
