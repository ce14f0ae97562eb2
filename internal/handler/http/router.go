package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, systemConfigHandler SystemConfigHandler, streamHandler StreamHandler) *chi.Mux {
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	adminOnly := func(r chi.Router) {
		if JWTService == nil || !JWTService.Enabled() {
			return
		}
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)
		r.Use(middleware.AdminOnly)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Post("/", attendanceHandler.RecordClockEvent)
			r.Get("/", attendanceHandler.List)
			r.Get("/today", attendanceHandler.ListToday)
			if streamHandler != nil {
				r.Get("/stream", streamHandler.Stream)
			}

			r.Route("/overtime", func(r chi.Router) {
				r.Get("/eligible", attendanceHandler.ListOvertimeEligible)

				r.Group(func(r chi.Router) {
					adminOnly(r)
					r.Post("/", attendanceHandler.AssignOvertime)
				})
			})
		})

		// Admin only
		r.Group(func(r chi.Router) {
			adminOnly(r)

			r.Route("/absent-marking", func(r chi.Router) {
				r.Post("/run-now", attendanceHandler.RunAbsenceMarking)
				r.Post("/mark-date", attendanceHandler.MarkAbsentForDate)
			})

			r.Post("/missed-clockout/run-now", attendanceHandler.RunMissedClockOut)

			r.Route("/cleanup", func(r chi.Router) {
				r.Delete("/invalid-absences", attendanceHandler.RemoveInvalidAbsences)
				r.Delete("/all-absences", attendanceHandler.RemoveAllAbsences)
			})

			r.Post("/system-config/refresh", systemConfigHandler.Refresh)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
