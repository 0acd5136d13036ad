package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/handler/http/response"
)

type ScheduleHandler interface {
	ResolveShift(w http.ResponseWriter, r *http.Request)
	GetDayCatalog(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// ResolveShift handles GET /schedules/{employeeCode}/resolve?date=
func (h *scheduleHandlerImpl) ResolveShift(w http.ResponseWriter, r *http.Request) {
	req := schedule.ResolveShiftRequest{
		EmployeeCode: chi.URLParam(r, "employeeCode"),
		Date:         r.URL.Query().Get("date"),
	}

	result, err := h.scheduleService.ResolveShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDayCatalog handles GET /schedules/days
func (h *scheduleHandlerImpl) GetDayCatalog(w http.ResponseWriter, r *http.Request) {
	days, err := h.scheduleService.GetDayCatalog(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, days)
}
