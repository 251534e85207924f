package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"dealerdash/internal/core"
	"dealerdash/internal/metrics"
	"dealerdash/internal/middleware/custom"
	"dealerdash/internal/store"
)

// Server wraps dependencies for HTTP handlers.
type Server struct {
	Store      *store.Store
	Reports    *core.ReportService
	Dashboards *core.DashboardService
	Dispatcher *core.Dispatcher
	Mailer     core.Mailer
}

// NewServer creates a new API server instance.
func NewServer(st *store.Store) *Server {
	return &Server{
		Store:      st,
		Reports:    core.NewReportService(st),
		Dashboards: core.NewDashboardService(st),
		Dispatcher: core.NewDispatcher(),
		Mailer:     core.LogMailer{},
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/api/status", s.handleStatus)
	r.Handle("/metrics", metrics.Handler())

	// Login is rate limited per IP: 1 attempt/sec, burst of 5
	loginLimiter := custom.NewRateLimiter(rate.Every(time.Second), 5)
	r.With(loginLimiter.Limit).Post("/api/auth/login", s.handleLogin)

	// Everything below requires a valid token
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/me", s.handleMe)

		r.Get("/api/dashboard", s.handleDashboard)

		r.Route("/api/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.Get("/active", s.handleListActiveCampaigns)
			r.Post("/{campaignID}/visitors/import", s.handleVisitorImport)
		})

		r.Get("/api/visitors", s.handleListVisitors)
		r.Get("/api/leads", s.handleListLeads)

		r.Route("/api/reports/daily-recap-report", func(r chi.Router) {
			r.Get("/", s.handleRecapForm)
			r.Post("/", s.handleRecapReport)
			r.Get("/export", s.handleRecapExport)
		})

		r.Post("/api/import/appended-feed", s.handleAppendedFeed)

		r.Post("/api/tasks/recap-email", s.handleSubmitRecapEmail)
		r.Get("/api/tasks/{taskID}", s.handleTaskStatus)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ----------------------
// Status
// ----------------------

// handleStatus returns basic service health info.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"api": "ok", "db": "ok"}
	if db, err := s.Store.DB.DB(); err != nil || db.Ping() != nil {
		resp["db"] = "down"
	}
	writeJSON(w, http.StatusOK, resp)
}
