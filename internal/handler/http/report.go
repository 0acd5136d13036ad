package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/handler/http/response"
)

type ReportHandler interface {
	// Employee and branch summaries for a date range
	GetAttendanceSummary(w http.ResponseWriter, r *http.Request)

	// Daily attendance rows
	GetAttendanceDetail(w http.ResponseWriter, r *http.Request)

	// Branch summaries only
	GetBranchSummary(w http.ResponseWriter, r *http.Request)

	// xlsx download
	ExportAttendance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func parseReportRequest(r *http.Request) report.AttendanceReportRequest {
	q := r.URL.Query()
	return report.AttendanceReportRequest{
		StartDate:    q.Get("start_date"),
		EndDate:      q.Get("end_date"),
		Branch:       q.Get("branch"),
		EmployeeCode: q.Get("employee"),
	}
}

// GetAttendanceSummary handles GET /reports/attendance
func (h *reportHandlerImpl) GetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetAttendanceSummary(r.Context(), parseReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		RunID:      result.RunID,
		TotalItems: int64(len(result.Employees)),
		Warnings:   result.Warnings,
	})
}

// GetAttendanceDetail handles GET /reports/attendance/detail
func (h *reportHandlerImpl) GetAttendanceDetail(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetAttendanceDetail(r.Context(), parseReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		RunID:      result.RunID,
		TotalItems: int64(result.TotalCount),
		Warnings:   result.Warnings,
	})
}

// GetBranchSummary handles GET /reports/attendance/branches
func (h *reportHandlerImpl) GetBranchSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GetBranchSummary(r.Context(), parseReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		RunID:      result.RunID,
		TotalItems: int64(len(result.Branches)),
		Warnings:   result.Warnings,
	})
}

// ExportAttendance handles GET /reports/attendance/export
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.ExportAttendance(r.Context(), parseReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}
