package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScheduleRepository_GetRulesByEmployees(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-1", BranchName: "Villas", Days: "L-V", Entry: "08:00", Exit: "17:00"})
	require.NoError(t, err)
	_, err = s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-1", BranchName: "Villas", Days: "6", Quincena: 1, Entry: "09:00:00", Exit: "14:00:00"})
	require.NoError(t, err)
	_, err = s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-2", BranchName: "Nave", Days: "L-S", Entry: "22:00", Exit: "06:00", Overnight: true})
	require.NoError(t, err)

	// invalid rows are skipped on read
	_, err = s.db.ExecContext(ctx, `INSERT INTO schedule_rules (employee_code, days, entry_time, exit_time) VALUES ('EMP-2', 'Q-Z', '08:00', '17:00')`)
	require.NoError(t, err)

	repo := NewScheduleRepository(s)
	got, err := repo.GetRulesByEmployees(ctx, []string{"EMP-1", "EMP-2", "EMP-3"})
	require.NoError(t, err)

	require.Len(t, got["EMP-1"], 2)
	require.Len(t, got["EMP-2"], 1)
	assert.Empty(t, got["EMP-3"])

	saturday := got["EMP-1"][1]
	assert.True(t, saturday.Days.Exact())
	assert.Equal(t, schedule.QuincenaFirst, saturday.Quincena)
	assert.Equal(t, 1, saturday.Tier(schedule.Saturday, schedule.QuincenaFirst))

	night := got["EMP-2"][0]
	assert.True(t, night.IsOvernight())
	assert.Equal(t, 8*time.Hour, night.Shift().ExpectedDuration())
}

func TestScheduleRepository_SaveRuleUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-1", Days: "L-V", Entry: "08:00", Exit: "17:00"})
	require.NoError(t, err)
	second, err := s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-1", Days: "L-V", Entry: "07:00", Exit: "16:00"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rules, err := NewScheduleRepository(s).GetRules(ctx, "EMP-1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "07:00:00", rules[0].Entry.String())

	_, err = s.SaveRule(ctx, schedule.RuleRecord{EmployeeCode: "EMP-1", Days: "L-V", Entry: "25:00", Exit: "16:00"})
	assert.ErrorIs(t, err, schedule.ErrInvalidTimeOfDay)
}

func TestScheduleRepository_UnknownEmployeeHasNoRules(t *testing.T) {
	rules, err := NewScheduleRepository(newTestStore(t)).GetRules(context.Background(), "NOBODY")
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestScheduleRepository_GetDayCatalog(t *testing.T) {
	days, err := NewScheduleRepository(newTestStore(t)).GetDayCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schedule.DayCatalog, days)
}

func TestEmployeeRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmployee(ctx, employee.Employee{Code: "EMP-2", FullName: "Luis Pérez", Branch: "Nave", Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, employee.Employee{Code: "EMP-1", FullName: "Ana Ruiz", Branch: "Villas", Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, employee.Employee{Code: "EMP-3", FullName: "Baja", Branch: "Villas", Active: false}))

	repo := NewEmployeeRepository(s)

	all, err := repo.GetActive(ctx, "Todas")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EMP-1", all[0].Code)
	assert.False(t, all[0].CreatedAt.IsZero())

	villas, err := repo.GetActive(ctx, "villas")
	require.NoError(t, err)
	require.Len(t, villas, 1)
	assert.Equal(t, "Ana Ruiz", villas[0].FullName)

	name, err := repo.GetName(ctx, "EMP-2")
	require.NoError(t, err)
	assert.Equal(t, "Luis Pérez", name)

	_, err = repo.GetName(ctx, "EMP-404")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
