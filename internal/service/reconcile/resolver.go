package reconcile

import (
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

// Resolve picks the shift that applies on date from an employee's rules.
// The most specific tier wins and ties go to the lowest rule id. ok is false
// when no rule covers the date, which makes it a non-working day.
func Resolve(rules []schedule.ScheduleRule, date time.Time) (shift schedule.ShiftDefinition, ok bool) {
	weekday := schedule.WeekdayOf(date)
	quincena := schedule.QuincenaOf(date)

	best := -1
	bestTier := 0
	for i, rule := range rules {
		tier := rule.Tier(weekday, quincena)
		if tier == 0 {
			continue
		}
		if best < 0 || tier < bestTier || (tier == bestTier && rule.ID < rules[best].ID) {
			best = i
			bestTier = tier
		}
	}
	if best < 0 {
		return schedule.ShiftDefinition{}, false
	}
	return rules[best].Shift(), true
}
