// internal/controller/import_controller.go
package controller

import (
	"net/http"

	"github.com/outreachly/outreach-backend/internal/logger"
	"github.com/outreachly/outreach-backend/internal/service"
)

type ImportController struct {
	ImportService   *service.ImportService
	ProspectService *service.ProspectService
	Log             *logger.Logger
}

// ProcessCSV imports prospects from a file already in object storage
func (c *ImportController) ProcessCSV(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, c.Log, err)
		return
	}

	res, err := c.ImportService.ImportCSV(r.Context(), body.Path)
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (c *ImportController) ListProspects(w http.ResponseWriter, r *http.Request) {
	page, err := c.ProspectService.ListProspects(r.Context(), queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		writeError(w, c.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
