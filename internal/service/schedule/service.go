package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
)

type scheduleServiceImpl struct {
	scheduleRepo schedule.ScheduleRepository
	loc          *time.Location
}

func NewScheduleService(scheduleRepo schedule.ScheduleRepository, loc *time.Location) schedule.ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleServiceImpl{scheduleRepo: scheduleRepo, loc: loc}
}

// ResolveShift implements schedule.ScheduleService. A date without a
// matching rule is not an error: the response reports a non-working day.
func (s *scheduleServiceImpl) ResolveShift(ctx context.Context, req schedule.ResolveShiftRequest) (schedule.ResolvedShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ResolvedShiftResponse{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
	if err != nil {
		return schedule.ResolvedShiftResponse{}, schedule.ErrInvalidDateFormat
	}

	rules, err := s.scheduleRepo.GetRules(ctx, req.EmployeeCode)
	if err != nil {
		return schedule.ResolvedShiftResponse{}, fmt.Errorf("failed to get schedule rules: %w", err)
	}

	resp := schedule.ResolvedShiftResponse{
		EmployeeCode:  req.EmployeeCode,
		Date:          req.Date,
		Weekday:       int(schedule.WeekdayOf(date)),
		Quincena:      schedule.QuincenaOf(date).String(),
		ExpectedHours: utils.FormatHMS(0),
	}

	shift, ok := reconcile.Resolve(rules, date)
	if !ok {
		return resp, nil
	}

	entry, exit := shift.Entry.String(), shift.Exit.String()
	ruleID := shift.RuleID
	resp.WorkingDay = true
	resp.RuleID = &ruleID
	resp.EntryTime = &entry
	resp.ExitTime = &exit
	resp.Overnight = shift.Overnight
	resp.ExpectedHours = utils.FormatHMS(shift.ExpectedDuration())
	return resp, nil
}

// GetDayCatalog implements schedule.ScheduleService.
func (s *scheduleServiceImpl) GetDayCatalog(ctx context.Context) ([]schedule.DayResponse, error) {
	days, err := s.scheduleRepo.GetDayCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get day catalog: %w", err)
	}

	resp := make([]schedule.DayResponse, 0, len(days))
	for _, d := range days {
		resp = append(resp, schedule.DayResponse{
			ID:     int(d.ID),
			Name:   d.Name,
			Letter: d.Letter,
		})
	}
	return resp, nil
}
