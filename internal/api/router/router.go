// Package router assembles the HTTP routing tree for the clinic API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightpaw/vetclinic-platform/internal/appointments"
	"github.com/brightpaw/vetclinic-platform/internal/http/handlers"
	httpmiddleware "github.com/brightpaw/vetclinic-platform/internal/http/middleware"
	"github.com/brightpaw/vetclinic-platform/internal/payments"
	"github.com/brightpaw/vetclinic-platform/internal/triage"
	"github.com/brightpaw/vetclinic-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	TriageHandler       *triage.Handler
	PaymentsHandler     *payments.Handler
	DirectoryHandler    *handlers.DirectoryHandler
	AdminDashboard      *handlers.AdminDashboardHandler
	MetricsHandler      http.Handler
	JWTSecret           string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/practitioners", cfg.DirectoryHandler.List)
		public.Get("/practitioners/{practitionerID}", cfg.DirectoryHandler.Get)
		public.Get("/practitioners/{practitionerID}/slots", cfg.DirectoryHandler.Slots)
		if cfg.TriageHandler != nil {
			public.Post("/triage/preview", cfg.TriageHandler.Preview)
		}
	})

	// Authenticated endpoints.
	r.Group(func(auth chi.Router) {
		auth.Use(httpmiddleware.ActorAuth(cfg.JWTSecret))

		auth.With(httpmiddleware.RequireRole(httpmiddleware.RoleCustomer)).
			Post("/practitioners/{practitionerID}/appointments", cfg.AppointmentsHandler.Book)

		auth.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.ListMine)
			r.Get("/{appointmentID}", cfg.AppointmentsHandler.Get)
			r.With(httpmiddleware.RequireRole(httpmiddleware.RoleCustomer)).
				Put("/{appointmentID}/cancel", cfg.AppointmentsHandler.Cancel)
			r.With(httpmiddleware.RequireRole(httpmiddleware.RolePractitioner)).
				Put("/{appointmentID}/complete", cfg.AppointmentsHandler.Complete)
			if cfg.TriageHandler != nil {
				r.Get("/{appointmentID}/triage", cfg.TriageHandler.GetByAppointment)
			}
		})

		if cfg.TriageHandler != nil {
			auth.Get("/triage/{questionnaireID}", cfg.TriageHandler.Get)
		}

		if cfg.PaymentsHandler != nil {
			auth.Route("/payments", func(r chi.Router) {
				r.Use(httpmiddleware.RequireRole(httpmiddleware.RoleCustomer))
				r.Get("/cards", cfg.PaymentsHandler.ListCards)
				r.Post("/cards", cfg.PaymentsHandler.SaveCard)
				r.Delete("/cards/{cardID}", cfg.PaymentsHandler.DeleteCard)
				r.Post("/charge", cfg.PaymentsHandler.Charge)
				r.Post("/cash", cfg.PaymentsHandler.ChooseCash)
			})
		}

		if cfg.AdminDashboard != nil {
			auth.Route("/admin", func(r chi.Router) {
				r.Use(httpmiddleware.RequireRole(httpmiddleware.RoleAdmin))
				r.Get("/dashboard", cfg.AdminDashboard.GetDashboardOverview)
				r.Put("/practitioners/{practitionerID}/active", cfg.AdminDashboard.SetPractitionerActive)
			})
		}
	})

	return r
}
