package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/storage"
)

func newStorage(t *testing.T, dir string) storage.FileStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return s
}

type fakeReportService struct {
	report.ReportService
	req report.AttendanceReportRequest
	err error
}

func (f *fakeReportService) ExportAttendance(_ context.Context, req report.AttendanceReportRequest) (report.ExportFile, error) {
	f.req = req
	if f.err != nil {
		return report.ExportFile{}, f.err
	}
	return report.ExportFile{Filename: "asistencia_Todas_20240304_20240305.xlsx", Content: []byte("xlsx")}, nil
}

func TestReconcileJob_Request(t *testing.T) {
	cst := time.FixedZone("CST", -6*60*60)
	job := NewReconcileJob(&fakeReportService{}, newStorage(t, t.TempDir()), 2, "Villas", cst)
	// 03:00 UTC on the 6th is still the 5th in CST
	job.now = func() time.Time { return time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC) }

	req := job.Request()
	assert.Equal(t, "2024-03-03", req.StartDate)
	assert.Equal(t, "2024-03-04", req.EndDate)
	assert.Equal(t, "Villas", req.Branch)
}

func TestReconcileJob_WritesExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	svc := &fakeReportService{}
	job := NewReconcileJob(svc, newStorage(t, dir), 0, "", time.UTC)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, svc.req.StartDate, svc.req.EndDate)

	content, err := os.ReadFile(filepath.Join(dir, "asistencia_Todas_20240304_20240305.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), content)
}

func TestScheduler_RunOnceJoinsErrors(t *testing.T) {
	s := NewScheduler()
	job := NewReconcileJob(&fakeReportService{err: report.ErrReportGenerationFailed}, newStorage(t, t.TempDir()), 1, "", time.UTC)
	job.RegisterJobs(s, time.Hour)
	s.AddJob(Job{Name: "noop", Interval: time.Hour, Fn: func(context.Context) error { return nil }})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrReportGenerationFailed)
	assert.Contains(t, err.Error(), ReconcileJobName)
}

func TestScheduler_StartStop(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob(Job{
		Name:       "tick",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Fn: func(context.Context) error {
			runs.Add(1)
			return errors.New("ignored")
		},
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
