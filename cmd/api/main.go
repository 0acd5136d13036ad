package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/config"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/attendance-recon/internal/handler/http"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/frappe"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-recon/internal/repository"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
	reportService "github.com/cmlabs-hris/attendance-recon/internal/service/report"
	scheduleService "github.com/cmlabs-hris/attendance-recon/internal/service/schedule"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Name, cfg.App.Version, cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Validate already checked these
	loc, _ := cfg.Location()
	serverLoc, _ := cfg.ServerLocation()
	policy, _ := cfg.ReconcilePolicy()
	branches, _ := cfg.Branches()

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	client, err := frappe.NewClient(frappe.Config{
		BaseURL:        cfg.Frappe.BaseURL,
		APIKey:         cfg.Frappe.APIKey,
		APISecret:      cfg.Frappe.APISecret,
		PageSize:       cfg.Frappe.PageSize,
		Timeout:        cfg.Frappe.Timeout,
		ServerLocation: serverLoc,
		Location:       loc,
	})
	if err != nil {
		return fmt.Errorf("failed to create frappe client: %w", err)
	}

	var employees employee.EmployeeRepository = stores.Employees
	if cfg.Store.EmployeeSource == config.EmployeesFromFrappe {
		employees = frappe.NewEmployeeDirectory(client)
	}

	engine := reconcile.NewEngine(policy, branches, loc)
	reportSvc := reportService.NewReportService(
		frappe.NewCheckInSource(client, branches),
		frappe.NewLeaveSource(client),
		employees,
		stores.Schedules,
		engine,
		branches,
		loc,
	)
	scheduleSvc := scheduleService.NewScheduleService(stores.Schedules, loc)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Skew)
	reportHandler := appHTTP.NewReportHandler(reportSvc)
	scheduleHandler := appHTTP.NewScheduleHandler(scheduleSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		reportHandler,
		scheduleHandler,
	)

	if cfg.Job.Enabled {
		exports, err := storage.NewLocalStorage(cfg.Job.ExportDir)
		if err != nil {
			return err
		}
		scheduler := cron.NewScheduler()
		job := cron.NewReconcileJob(reportSvc, exports, cfg.Job.LookbackDays, cfg.Job.Branch, loc)
		job.RegisterJobs(scheduler, cfg.Job.Interval)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "store", cfg.Store.Driver, "employees", cfg.Store.EmployeeSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
