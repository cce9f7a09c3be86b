// internal/controller/email_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/service"
)

type EmailController struct {
	EmailService *service.EmailService
	Log          *logger.Logger
}

// SendEmail generates, stores and delivers one email
func (c *EmailController) SendEmail(w http.ResponseWriter, r *http.Request) {
	var body service.SendRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, c.Log, err)
		return
	}

	res, err := c.EmailService.Send(r.Context(), body)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *EmailController) ListEmails(w http.ResponseWriter, r *http.Request) {
	page, err := c.EmailService.ListEmails(r.Context(),
		queryInt(r, "page"),
		queryInt(r, "page_size"),
		r.URL.Query().Get("status"),
	)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (c *EmailController) GetEmail(w http.ResponseWriter, r *http.Request) {
	email, err := c.EmailService.GetEmail(r.Context(), chi.URLParam(r, "email_id"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, email)
}

// Stats returns the dashboard counters
func (c *EmailController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.EmailService.Stats(r.Context())
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
