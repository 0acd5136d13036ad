package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

func TestResolve_PriorityTiers(t *testing.T) {
	patternAny := schedule.ScheduleRule{ID: 1, Days: pattern(t, "L-V"), Entry: tod(t, "09:00"), Exit: tod(t, "18:00")}
	patternFirst := schedule.ScheduleRule{ID: 2, Days: pattern(t, "L-V"), Quincena: schedule.QuincenaFirst, Entry: tod(t, "08:30"), Exit: tod(t, "17:30")}
	exactAny := schedule.ScheduleRule{ID: 3, Days: schedule.ExactDay{Weekday: schedule.Monday}, Entry: tod(t, "08:00"), Exit: tod(t, "17:00")}
	exactFirst := schedule.ScheduleRule{ID: 4, Days: schedule.ExactDay{Weekday: schedule.Monday}, Quincena: schedule.QuincenaFirst, Entry: tod(t, "07:00"), Exit: tod(t, "16:00")}

	// 2024-03-04 is a Monday in the first quincena.
	monday := date(t, "2024-03-04")

	shift, ok := Resolve([]schedule.ScheduleRule{patternAny, patternFirst, exactAny, exactFirst}, monday)
	require.True(t, ok)
	assert.Equal(t, int64(4), shift.RuleID)

	shift, ok = Resolve([]schedule.ScheduleRule{patternAny, patternFirst, exactAny}, monday)
	require.True(t, ok)
	assert.Equal(t, int64(3), shift.RuleID)

	shift, ok = Resolve([]schedule.ScheduleRule{patternAny, patternFirst}, monday)
	require.True(t, ok)
	assert.Equal(t, int64(2), shift.RuleID)

	shift, ok = Resolve([]schedule.ScheduleRule{patternAny}, monday)
	require.True(t, ok)
	assert.Equal(t, int64(1), shift.RuleID)
}

func TestResolve_QuincenaMismatchExcluded(t *testing.T) {
	second := schedule.ScheduleRule{ID: 1, Days: schedule.ExactDay{Weekday: schedule.Monday}, Quincena: schedule.QuincenaSecond, Entry: tod(t, "08:00"), Exit: tod(t, "17:00")}
	fallback := schedule.ScheduleRule{ID: 2, Days: pattern(t, "L-V"), Entry: tod(t, "09:00"), Exit: tod(t, "18:00")}

	shift, ok := Resolve([]schedule.ScheduleRule{second, fallback}, date(t, "2024-03-04"))
	require.True(t, ok)
	assert.Equal(t, int64(2), shift.RuleID)

	// 2024-03-18 is a Monday in the second quincena.
	shift, ok = Resolve([]schedule.ScheduleRule{second, fallback}, date(t, "2024-03-18"))
	require.True(t, ok)
	assert.Equal(t, int64(1), shift.RuleID)
}

func TestResolve_TieBrokenByLowestID(t *testing.T) {
	a := schedule.ScheduleRule{ID: 9, Days: pattern(t, "L-V"), Entry: tod(t, "09:00"), Exit: tod(t, "18:00")}
	b := schedule.ScheduleRule{ID: 5, Days: pattern(t, "L,M,X"), Entry: tod(t, "08:00"), Exit: tod(t, "17:00")}

	shift, ok := Resolve([]schedule.ScheduleRule{a, b}, date(t, "2024-03-05"))
	require.True(t, ok)
	assert.Equal(t, int64(5), shift.RuleID)

	shift2, _ := Resolve([]schedule.ScheduleRule{b, a}, date(t, "2024-03-05"))
	assert.Equal(t, shift, shift2)
}

func TestResolve_NoMatchingRule(t *testing.T) {
	rules := []schedule.ScheduleRule{weekdayRule(t, 1, "08:00", "17:00")}

	_, ok := Resolve(rules, date(t, "2024-03-09")) // Saturday
	assert.False(t, ok)

	_, ok = Resolve(nil, date(t, "2024-03-04"))
	assert.False(t, ok)
}

func TestResolve_PatternCodes(t *testing.T) {
	cases := []struct {
		code string
		day  string
		want bool
	}{
		{"L-V", "2024-03-08", true},  // Friday
		{"L-J", "2024-03-08", false}, // Friday
		{"M-V", "2024-03-04", false}, // Monday
		{"M-V", "2024-03-05", true},  // Tuesday
		{"S,D", "2024-03-10", true},  // Sunday
		{"ljv", "2024-03-07", true},  // Thursday
	}
	for _, c := range cases {
		rule := schedule.ScheduleRule{ID: 1, Days: pattern(t, c.code), Entry: tod(t, "08:00"), Exit: tod(t, "17:00")}
		_, ok := Resolve([]schedule.ScheduleRule{rule}, date(t, c.day))
		assert.Equal(t, c.want, ok, "pattern %s on %s", c.code, c.day)
	}
}

func TestResolve_OvernightImpliedByTimes(t *testing.T) {
	rule := weekdayRule(t, 1, "22:00", "06:00")
	shift, ok := Resolve([]schedule.ScheduleRule{rule}, date(t, "2024-03-04"))
	require.True(t, ok)
	assert.True(t, shift.Overnight)
	assert.Equal(t, "8h0m0s", shift.ExpectedDuration().String())
}
