// Command reconcile runs one attendance reconciliation from the command line
// and writes the workbook to -out, or the JSON report to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cmlabs-hris/attendance-recon/internal/config"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/checkin"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/attendance-recon/internal/handler/http"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/frappe"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/attendance-recon/internal/repository"
	"github.com/cmlabs-hris/attendance-recon/internal/service/reconcile"
	reportService "github.com/cmlabs-hris/attendance-recon/internal/service/report"
)

type options struct {
	start    string
	end      string
	branch   string
	employee string
	checkIns string
	out      string
	detail   bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD (required)")
	fs.StringVar(&opts.end, "end", "", "last day, YYYY-MM-DD (defaults to -start)")
	fs.StringVar(&opts.branch, "branch", checkin.AllBranches, "branch name or Todas")
	fs.StringVar(&opts.employee, "employee", "", "limit the run to one employee code")
	fs.StringVar(&opts.checkIns, "checkins", "", "read check-ins from an .xls/.xlsx terminal export instead of the ERP")
	fs.StringVar(&opts.out, "out", "", "write the xlsx workbook to this path")
	fs.BoolVar(&opts.detail, "detail", false, "print daily rows instead of summaries when writing JSON")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.start == "" {
		return opts, fmt.Errorf("-start is required")
	}
	if opts.end == "" {
		opts.end = opts.start
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}
	slog.SetDefault(appHTTP.NewLogger(os.Stderr, cfg.App.Name, cfg.App.Version, cfg.App.Env, cfg.SlogLevel()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		slog.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer) error {
	loc, _ := cfg.Location()
	policy, _ := cfg.ReconcilePolicy()
	branches, _ := cfg.Branches()

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	var (
		checkIns  checkin.Source
		leaves    leave.Source
		employees employee.EmployeeRepository = stores.Employees
	)

	hasERP := cfg.Frappe.BaseURL != "" && cfg.Frappe.APIKey != "" && cfg.Frappe.APISecret != ""
	if hasERP {
		serverLoc, err := cfg.ServerLocation()
		if err != nil {
			return err
		}
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
			return err
		}
		checkIns = frappe.NewCheckInSource(client, branches)
		leaves = frappe.NewLeaveSource(client)
		if cfg.Store.EmployeeSource == config.EmployeesFromFrappe {
			employees = frappe.NewEmployeeDirectory(client)
		}
	}

	if opts.checkIns != "" {
		checkIns, err = spreadsheet.NewFileSource(opts.checkIns, branches, loc)
		if err != nil {
			return err
		}
	}
	if checkIns == nil {
		return fmt.Errorf("%w (or pass -checkins)", config.ErrMissingFrappeCredentials)
	}

	svc := reportService.NewReportService(checkIns, leaves, employees, stores.Schedules, reconcile.NewEngine(policy, branches, loc), branches, loc)
	req := report.AttendanceReportRequest{
		StartDate:    opts.start,
		EndDate:      opts.end,
		Branch:       opts.branch,
		EmployeeCode: opts.employee,
	}

	began := time.Now()
	if opts.out != "" {
		file, err := svc.ExportAttendance(ctx, req)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.out, file.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		slog.Info("Workbook written", "path", opts.out, "duration", time.Since(began))
		return nil
	}

	var result any
	if opts.detail {
		result, err = svc.GetAttendanceDetail(ctx, req)
	} else {
		result, err = svc.GetAttendanceSummary(ctx, req)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
