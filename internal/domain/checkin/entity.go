package checkin

import (
	"strings"
	"time"
)

// CheckIn is a single badge/terminal event. Time is already in the local zone.
type CheckIn struct {
	EmployeeCode string
	EmployeeName string
	Time         time.Time
	DeviceID     string
}

func (c CheckIn) key() string {
	return c.EmployeeCode + "|" + c.Time.UTC().Format(time.RFC3339Nano) + "|" + c.DeviceID
}

// Dedupe drops repeated events for the same employee, instant and device,
// keeping the first occurrence and the original order.
func Dedupe(records []CheckIn) []CheckIn {
	seen := make(map[string]struct{}, len(records))
	out := make([]CheckIn, 0, len(records))
	for _, r := range records {
		k := r.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Query selects check-ins by local calendar dates (inclusive) and branch.
type Query struct {
	Start  time.Time
	End    time.Time
	Branch string
}

// FetchResult carries what a source managed to read. Partial is set when a
// page failed and the remaining pages were abandoned.
type FetchResult struct {
	Records []CheckIn
	Skipped int
	Partial bool
}

const (
	UnknownBranch = "unknown"
	AllBranches   = "Todas"
)

// IsAllBranches reports whether filter selects every branch.
func IsAllBranches(filter string) bool {
	f := strings.TrimSpace(filter)
	return f == "" || strings.EqualFold(f, AllBranches) || strings.EqualFold(f, "all")
}

// BranchPattern maps terminal identifiers containing any of Substrings to Branch.
type BranchPattern struct {
	Branch     string
	Substrings []string
}

// DefaultBranchPatterns is evaluated in order; the first match wins.
var DefaultBranchPatterns = []BranchPattern{
	{Branch: "Villas", Substrings: []string{"villas", "vlla"}},
	{Branch: "31pte", Substrings: []string{"31pte", "31 pte", "31-pte"}},
	{Branch: "Nave", Substrings: []string{"nave", "nav"}},
	{Branch: "RioBlanco", Substrings: []string{"rioblanco", "rio blanco", "rio-blanco"}},
}
