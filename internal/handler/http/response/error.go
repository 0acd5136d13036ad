package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/report"
	"github.com/cmlabs-hris/attendance-recon/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, err.Error())

	// Report domain errors
	case errors.Is(err, report.ErrUnknownBranch):
		BadRequest(w, "Unknown branch", nil)
	case errors.Is(err, report.ErrInvalidDateRange), errors.Is(err, report.ErrDateRangeTooLong):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrNoEmployees):
		NotFound(w, "No active employees for the requested filter")
	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error("Report generation failed", "error", err)
		BadGateway(w, "Attendance sources are unavailable")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrInvalidDateFormat):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, schedule.ErrEmployeeCodeRequired):
		BadRequest(w, err.Error(), nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
