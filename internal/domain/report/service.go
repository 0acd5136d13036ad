package report

import "context"

type ReportService interface {
	// Generate runs a full reconciliation and returns the engine result.
	Generate(ctx context.Context, req AttendanceReportRequest) (Result, error)

	GetAttendanceSummary(ctx context.Context, req AttendanceReportRequest) (AttendanceSummaryResponse, error)
	GetAttendanceDetail(ctx context.Context, req AttendanceReportRequest) (AttendanceDetailResponse, error)
	GetBranchSummary(ctx context.Context, req AttendanceReportRequest) (BranchReportResponse, error)

	// ExportAttendance renders the run as an xlsx workbook.
	ExportAttendance(ctx context.Context, req AttendanceReportRequest) (ExportFile, error)
}
