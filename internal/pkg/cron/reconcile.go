package cron

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/storage"
)

const ReconcileJobName = "attendance_reconciliation"

// ReconcileJob reconciles the trailing LookbackDays (ending yesterday) and
// saves the workbook to the export storage.
type ReconcileJob struct {
	reportService report.ReportService
	exports       storage.FileStorage
	lookbackDays  int
	branch        string
	loc           *time.Location
	now           func() time.Time
}

func NewReconcileJob(reportService report.ReportService, exports storage.FileStorage, lookbackDays int, branch string, loc *time.Location) *ReconcileJob {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReconcileJob{
		reportService: reportService,
		exports:       exports,
		lookbackDays:  lookbackDays,
		branch:        branch,
		loc:           loc,
		now:           time.Now,
	}
}

func (j *ReconcileJob) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(Job{
		Name:     ReconcileJobName,
		Interval: interval,
		Fn:       j.Run,
	})
}

// Request is the range the job would reconcile if it ran now.
func (j *ReconcileJob) Request() report.AttendanceReportRequest {
	today := j.now().In(j.loc)
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, j.loc).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(j.lookbackDays - 1))
	return report.AttendanceReportRequest{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Branch:    j.branch,
	}
}

func (j *ReconcileJob) Run(ctx context.Context) error {
	req := j.Request()
	slog.Info("Cron: Starting attendance reconciliation", "start", req.StartDate, "end", req.EndDate, "branch", req.Branch)

	file, err := j.reportService.ExportAttendance(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to export attendance: %w", err)
	}

	path, err := j.exports.Save(ctx, file.Filename, bytes.NewReader(file.Content))
	if err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	slog.Info("Cron: Attendance reconciliation exported", "path", path, "bytes", len(file.Content))
	return nil
}
