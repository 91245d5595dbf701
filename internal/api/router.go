package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/nikhilraghav/complaintdesk/internal/api/middleware"
	"github.com/nikhilraghav/complaintdesk/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	IngestHandler       http.HandlerFunc
	ProcessHandler      http.HandlerFunc
	PollJobHandler      http.HandlerFunc
	ListComplaints      http.HandlerFunc
	GetComplaint        http.HandlerFunc
	SummaryHandler      http.HandlerFunc
	SummaryChartHandler http.HandlerFunc
	ExportHandler       http.HandlerFunc
	ResetAllHandler     http.HandlerFunc
	PurgeHandler        http.HandlerFunc
	CreateKeyHandler    http.HandlerFunc
	ListKeysHandler     http.HandlerFunc
	RevokeKeyHandler    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/ingest", orNotImplemented(deps.IngestHandler))

		r.Post("/api/v1/process", orNotImplemented(deps.ProcessHandler))
		r.Get("/api/v1/process/{jobID}", orNotImplemented(deps.PollJobHandler))

		r.Get("/api/v1/complaints", orNotImplemented(deps.ListComplaints))
		r.Get("/api/v1/complaints/{id}", orNotImplemented(deps.GetComplaint))

		r.Get("/api/v1/summary", orNotImplemented(deps.SummaryHandler))
		r.Get("/api/v1/summary/chart", orNotImplemented(deps.SummaryChartHandler))
		r.Get("/api/v1/export", orNotImplemented(deps.ExportHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/reset", orNotImplemented(deps.ResetAllHandler))
			r.Post("/api/v1/admin/purge", orNotImplemented(deps.PurgeHandler))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
