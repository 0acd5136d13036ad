package schedule

import "context"

type ScheduleService interface {
	ResolveShift(ctx context.Context, req ResolveShiftRequest) (ResolvedShiftResponse, error)
	GetDayCatalog(ctx context.Context) ([]DayResponse, error)
}
