package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/outreachly/outreach-backend/internal/controller"
	"github.com/outreachly/outreach-backend/internal/handler"
	"github.com/outreachly/outreach-backend/internal/middleware"
)

// Controllers groups the API controllers mounted under /api
type Controllers struct {
	Email    *controller.EmailController
	Tracking *controller.TrackingController
	Import   *controller.ImportController
	FollowUp *controller.FollowUpController
}

// New creates and configures the HTTP router
func New(c Controllers, h *handler.Handler, mw *middleware.Middleware, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Post("/send-email", c.Email.SendEmail)
		r.Get("/emails", c.Email.ListEmails)
		r.Get("/emails/{email_id}", c.Email.GetEmail)
		r.Get("/stats", c.Email.Stats)

		r.Post("/process-csv", c.Import.ProcessCSV)
		r.Get("/prospects", c.Import.ListProspects)

		r.Post("/followup-job", c.FollowUp.TriggerFollowUps)

		// opened by mail clients, never by the dashboard
		r.Get("/track/{email_id}", c.Tracking.Track)
	})

	return r
}
