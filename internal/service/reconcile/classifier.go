package reconcile

import (
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
)

type Classification struct {
	Incident       report.Incident
	Lateness       time.Duration
	EarlyDeparture bool
}

// Classify labels a day whose marks, shift and leave have been settled.
// Rules apply in order and the first match wins; early departure is an
// extra flag evaluated on its own.
func Classify(rec report.DailyAttendanceRecord, p Policy) Classification {
	var c Classification

	switch {
	case rec.ExpectedNet <= 0 && rec.HasLeave:
		c.Incident = report.IncidentJustified
		return c
	case rec.ExpectedNet <= 0:
		c.Incident = report.IncidentNotApplicable
		return c
	case len(rec.Marks) == 0 || rec.Shift == nil || rec.MarkStatus == report.MarkStatusNoMarks:
		// marks that fall outside the shift's entry window count as none
		c.Incident = report.IncidentAbsence
		return c
	}

	forgivable := rec.Worked >= rec.ExpectedNet

	if rec.EntryMark == nil {
		// A lone morning mark of an overnight shift: nothing to measure lateness against.
		c.Incident = report.IncidentOnTime
	} else {
		c.Lateness = lateness(*rec.EntryMark, rec.Shift.EntryOn(rec.Date))
		switch {
		case c.Lateness <= p.TardyTolerance:
			c.Incident = report.IncidentOnTime
		case c.Lateness <= p.UnexcusedThreshold:
			c.Incident = report.IncidentTardy
			if forgivable {
				c.Incident = report.IncidentForgiven
			}
		default:
			c.Incident = report.IncidentAbsence
			if p.ForgiveUnexcusedLateness && forgivable {
				c.Incident = report.IncidentForgiven
			}
		}
	}

	if rec.ExitMark != nil {
		scheduledExit := rec.Shift.ExitOn(rec.Date)
		c.EarlyDeparture = rec.ExitMark.Before(scheduledExit.Add(-p.EarlyDepartureTolerance))
	}
	return c
}

// lateness is entry - scheduled, folded into (-12h, 12h] so a mark just
// before midnight against a shortly-after-midnight entry reads as early.
func lateness(entry, scheduled time.Time) time.Duration {
	d := entry.Sub(scheduled)
	for d > 12*time.Hour {
		d -= 24 * time.Hour
	}
	for d <= -12*time.Hour {
		d += 24 * time.Hour
	}
	return d
}
