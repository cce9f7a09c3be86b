package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	appErrors "github.com/outreachly/outreach-backend/internal/errors"
	"github.com/outreachly/outreach-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with {"error": msg}. Server-side failures are logged
// with the full chain; clients only see the top-level message.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := appErrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return appErrors.NewValidation("", "invalid request body")
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
