package spreadsheet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
)

type fileSource struct {
	records  []checkin.CheckIn
	skipped  int
	branches *checkin.BranchMapper
	loc      *time.Location
}

// NewFileSource loads a terminal export once and serves check-in queries from it.
func NewFileSource(path string, branches *checkin.BranchMapper, loc *time.Location) (checkin.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open check-in file: %w", err)
	}
	defer f.Close()

	records, skipped, err := ReadCheckIns(f, path, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to read check-in file %s: %w", path, err)
	}
	slog.Info("Check-in file loaded", "path", path, "records", len(records), "skipped", skipped)
	return NewMemorySource(records, skipped, branches, loc), nil
}

// NewMemorySource serves queries from records already in memory.
func NewMemorySource(records []checkin.CheckIn, skipped int, branches *checkin.BranchMapper, loc *time.Location) checkin.Source {
	if branches == nil {
		branches = checkin.NewBranchMapper(nil)
	}
	if loc == nil {
		loc = time.Local
	}
	return &fileSource{records: records, skipped: skipped, branches: branches, loc: loc}
}

// FetchCheckIns implements checkin.Source. The skipped count of the file is
// reported on every query.
func (s *fileSource) FetchCheckIns(ctx context.Context, q checkin.Query) (checkin.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return checkin.FetchResult{}, err
	}
	if _, ok := s.branches.LikePatterns(q.Branch); !ok {
		return checkin.FetchResult{}, fmt.Errorf("%w: %s", checkin.ErrUnknownBranch, q.Branch)
	}

	y, m, d := q.Start.In(s.loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	y, m, d = q.End.In(s.loc).Date()
	until := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)

	res := checkin.FetchResult{Skipped: s.skipped}
	for _, r := range s.records {
		t := r.Time.In(s.loc)
		if t.Before(from) || !t.Before(until) {
			continue
		}
		if !checkin.IsAllBranches(q.Branch) && !strings.EqualFold(s.branches.Resolve(r.DeviceID), q.Branch) {
			continue
		}
		res.Records = append(res.Records, r)
	}
	return res, nil
}
