package reconcile

import (
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
)

type BreakResult struct {
	Duration time.Duration
	// Episodes counts the (out, back) pairs between entry and exit.
	Episodes int
}

// ComputeBreak sums the gaps between the 2nd and 3rd marks, the 4th and 5th,
// and so on. The first and last marks are the shift's entry and exit and
// never open a break. Fewer than four marks means no break.
func ComputeBreak(marks []time.Time) BreakResult {
	if len(marks) < 4 {
		return BreakResult{}
	}
	sorted := slices.Clone(marks)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	var res BreakResult
	for i := 1; i+1 < len(sorted)-1; i += 2 {
		res.Duration += sorted[i+1].Sub(sorted[i])
		res.Episodes++
	}
	return res
}

// breakFor applies the policy's break mode to a normalized window.
func breakFor(w Window, p Policy) BreakResult {
	res := ComputeBreak(w.shiftMarks())
	if p.BreakMode != BreakFixed {
		return res
	}
	if w.Status != report.MarkStatusComplete {
		res.Duration = 0
		return res
	}
	res.Duration = min(p.FixedBreak, w.Worked)
	return res
}
