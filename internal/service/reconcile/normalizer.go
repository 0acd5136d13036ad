package reconcile

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
)

// DayMarks is one calendar day of an employee before overnight reassignment.
type DayMarks struct {
	Date  time.Time
	Shift *schedule.ShiftDefinition
	Marks []time.Time
}

// Window is the normalized view of a shift's marks.
type Window struct {
	Marks  []time.Time
	Entry  *time.Time
	Exit   *time.Time
	Status report.MarkStatus
	Worked time.Duration
}

// AssignMarks moves early-morning marks to the previous day's overnight
// shift. days must be consecutive calendar days in ascending order. A mark
// on day D is reassigned when D-1 has an overnight shift, the mark falls no
// later than D-1's scheduled exit plus grace, and it precedes D's own
// scheduled entry (if any). The input is not modified.
func AssignMarks(days []DayMarks, grace time.Duration) [][]time.Time {
	out := make([][]time.Time, len(days))
	moved := make([][]bool, len(days))
	for i, d := range days {
		moved[i] = make([]bool, len(d.Marks))
	}

	for i := 1; i < len(days); i++ {
		prev := days[i-1].Shift
		if prev == nil || !prev.Overnight {
			continue
		}
		cutoff := prev.Exit.Duration() + grace
		current := days[i].Shift

		for j, m := range days[i].Marks {
			tod := schedule.TimeOfDayOf(m)
			if current != nil && tod >= current.Entry {
				continue
			}
			if tod.Duration() <= cutoff {
				moved[i][j] = true
				out[i-1] = append(out[i-1], m)
			}
		}
	}

	for i, d := range days {
		own := make([]time.Time, 0, len(d.Marks))
		for j, m := range d.Marks {
			if !moved[i][j] {
				own = append(own, m)
			}
		}
		out[i] = append(own, out[i]...)
		slices.SortFunc(out[i], func(a, b time.Time) int { return a.Compare(b) })
	}
	return out
}

// Normalize derives entry, exit and worked time for the shift starting on
// date. For overnight shifts, marks on date from the entry window onward form
// the night segment and marks on later days the morning segment. Earlier
// marks on date stay in Marks but never become the entry. A lone mark never
// yields worked time.
func Normalize(marks []time.Time, shift *schedule.ShiftDefinition, date time.Time) Window {
	sorted := slices.Clone(marks)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	w := Window{Marks: sorted, Status: report.MarkStatusNoMarks}
	if len(sorted) == 0 {
		return w
	}

	if shift == nil || !shift.Overnight {
		w.Entry = &sorted[0]
		if len(sorted) < 2 {
			w.Status = report.MarkStatusMissingExit
			return w
		}
		w.Exit = &sorted[len(sorted)-1]
		w.Worked = w.Exit.Sub(*w.Entry)
		w.Status = report.MarkStatusComplete
		return w
	}

	opens := shift.EntryOn(date).Add(-entryWindow)
	var night, morning []time.Time
	for _, m := range sorted {
		switch {
		case isAfterDay(m, date):
			morning = append(morning, m)
		case !m.Before(opens):
			night = append(night, m)
		}
	}

	switch {
	case len(night) > 0 && len(morning) > 0:
		w.span(night[0], morning[len(morning)-1])
	case len(night) > 1:
		w.span(night[0], night[len(night)-1])
	case len(night) == 1:
		entry := night[0]
		w.Entry = &entry
		w.Status = report.MarkStatusMissingExit
	case len(morning) > 1:
		// arrived after midnight
		w.span(morning[0], morning[len(morning)-1])
	case len(morning) == 1:
		exit := morning[0]
		w.Exit = &exit
		w.Status = report.MarkStatusMissingEntry
	}
	return w
}

// entryWindow bounds how early a mark may open an overnight shift. It matches
// the fold used by lateness.
const entryWindow = 12 * time.Hour

func (w *Window) span(entry, exit time.Time) {
	w.Entry, w.Exit = &entry, &exit
	w.Worked = exit.Sub(entry)
	w.Status = report.MarkStatusComplete
}

// shiftMarks returns the marks between entry and exit, inclusive. Marks outside
// the shift span do not take part in break calculation.
func (w Window) shiftMarks() []time.Time {
	if w.Entry == nil || w.Exit == nil {
		return w.Marks
	}
	out := make([]time.Time, 0, len(w.Marks))
	for _, m := range w.Marks {
		if !m.Before(*w.Entry) && !m.After(*w.Exit) {
			out = append(out, m)
		}
	}
	return out
}

// isAfterDay reports whether t falls on a calendar day after date, both
// read in date's location.
func isAfterDay(t time.Time, date time.Time) bool {
	y, m, d := date.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, date.Location())
	return !t.In(date.Location()).Before(next)
}
