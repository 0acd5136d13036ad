package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

var testLoc = time.FixedZone("CST", -6*60*60)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, testLoc)
	require.NoError(t, err)
	return ts
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", value, testLoc)
	require.NoError(t, err)
	return d
}

func tod(t *testing.T, value string) schedule.TimeOfDay {
	t.Helper()
	v, err := schedule.ParseTimeOfDay(value)
	require.NoError(t, err)
	return v
}

func pattern(t *testing.T, code string) schedule.PatternDay {
	t.Helper()
	p, err := schedule.ParsePattern(code)
	require.NoError(t, err)
	return p
}

func weekdayRule(t *testing.T, id int64, entry, exit string) schedule.ScheduleRule {
	return schedule.ScheduleRule{
		ID:           id,
		EmployeeCode: "EMP-001",
		Days:         pattern(t, "L-V"),
		Entry:        tod(t, entry),
		Exit:         tod(t, exit),
	}
}
