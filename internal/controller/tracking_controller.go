// internal/controller/tracking_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/outreachly/outreach-backend/internal/service"
)

type TrackingController struct {
	TrackingService *service.TrackingService
}

// Track records an open and always answers with the pixel, whatever
// happened to the record.
func (c *TrackingController) Track(w http.ResponseWriter, r *http.Request) {
	c.TrackingService.RecordOpen(r.Context(), chi.URLParam(r, "email_id"))

	h := w.Header()
	h.Set("Content-Type", "image/gif")
	h.Set("Content-Length", strconv.Itoa(len(service.TrackingPixel)))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	w.Write(service.TrackingPixel)
}
