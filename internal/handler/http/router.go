package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-recon/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-recon/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-recon/internal/pkg/jwt"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, reportHandler ReportHandler, scheduleHandler ScheduleHandler) *chi.Mux {
	r := chi.NewRouter()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/reports/attendance", func(r chi.Router) {
				r.Get("/", reportHandler.GetAttendanceSummary)
				r.Get("/detail", reportHandler.GetAttendanceDetail)
				r.Get("/branches", reportHandler.GetBranchSummary)

				// HR and admins only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR))
					r.Get("/export", reportHandler.ExportAttendance)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/days", scheduleHandler.GetDayCatalog)
				r.Get("/{employeeCode}/resolve", scheduleHandler.ResolveShift)
			})
		})
	})
	return r
}

// NewLogger builds the JSON logger shared by the access log and the
// application, with ECS field names.
func NewLogger(w io.Writer, app, version, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
