package reconcile

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
)

type BreakMode string

const (
	// BreakComputed sums the gaps between paired intermediate marks.
	BreakComputed BreakMode = "computed"
	// BreakFixed charges FixedBreak for every day with a complete entry/exit span.
	BreakFixed BreakMode = "fixed"
)

func ParseBreakMode(s string) (BreakMode, error) {
	switch BreakMode(s) {
	case "", BreakComputed:
		return BreakComputed, nil
	case BreakFixed:
		return BreakFixed, nil
	}
	return "", fmt.Errorf("invalid break mode %q, use %q or %q", s, BreakComputed, BreakFixed)
}

// Policy holds every tunable of the engine. It is passed by value; the
// engine keeps no other configuration.
type Policy struct {
	TardyTolerance          time.Duration
	UnexcusedThreshold      time.Duration
	EarlyDepartureTolerance time.Duration
	OvernightGrace          time.Duration

	// ForgiveUnexcusedLateness extends the worked-hours forgiveness to days
	// classified as absence because of lateness.
	ForgiveUnexcusedLateness bool

	BreakMode  BreakMode
	FixedBreak time.Duration

	Leave leave.Policy
}

func DefaultPolicy() Policy {
	return Policy{
		TardyTolerance:          15 * time.Minute,
		UnexcusedThreshold:      60 * time.Minute,
		EarlyDepartureTolerance: 15 * time.Minute,
		OvernightGrace:          59 * time.Minute,
		BreakMode:               BreakComputed,
		FixedBreak:              time.Hour,
		Leave:                   leave.DefaultPolicy(),
	}
}

func (p Policy) Validate() error {
	if p.TardyTolerance < 0 || p.UnexcusedThreshold < 0 || p.EarlyDepartureTolerance < 0 || p.OvernightGrace < 0 {
		return fmt.Errorf("tolerances must not be negative")
	}
	if p.UnexcusedThreshold < p.TardyTolerance {
		return fmt.Errorf("unexcused threshold %s is below tardy tolerance %s", p.UnexcusedThreshold, p.TardyTolerance)
	}
	if p.BreakMode == BreakFixed && p.FixedBreak <= 0 {
		return fmt.Errorf("fixed break must be positive")
	}
	return nil
}
