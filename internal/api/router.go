package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions configures cross-cutting router behaviour.
type RouterOptions struct {
	CORSOrigins []string
	// RateLimit is the number of requests allowed per IP per minute.
	RateLimit int
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	// HealthChecks are probed by /api/v1/health.
	HealthChecks []HealthCheck
}

// NewRouter builds and returns the Chi router with all routes configured.
// Health, options, share links and workspace mounting are public; form and
// itinerary routes require the workspace to hold a session.
func NewRouter(handlers *Handlers, opts RouterOptions, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(StructuredLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(log, opts.HealthChecks...))
	r.Get("/api/v1/options", handlers.Options)
	r.Get("/api/v1/itineraries/{itineraryID}", handlers.SharedItinerary)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api/v1/workspaces", func(r chi.Router) {
		r.Post("/", handlers.CreateWorkspace)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(handlers.loadWorkspace)

			r.Get("/", handlers.GetWorkspace)
			r.Delete("/", handlers.DeleteWorkspace)
			r.Get("/events", handlers.Events)
			r.Post("/auth/signin", handlers.SignIn)
			r.Post("/auth/signup", handlers.SignUp)
			r.Post("/auth/signout", handlers.SignOut)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Put("/form/{field}", handlers.SetField)
				r.Post("/form/interests/{interest}/toggle", handlers.ToggleInterest)
				r.Post("/itinerary", handlers.Submit)
				r.Get("/itinerary", handlers.GetItinerary)
				r.Get("/itinerary/share", handlers.Share)
				r.Get("/itinerary/pdf", handlers.DownloadPDF)
			})
		})
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
