// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps error kinds to HTTP statuses: validation 400, authorization
// 403, not-found 404, delivery 502, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case appErrors.IsValidation(err):
		status = http.StatusBadRequest
	case appErrors.IsAuthorization(err):
		status = http.StatusForbidden
	case appErrors.IsNotFound(err):
		status = http.StatusNotFound
	case appErrors.IsDelivery(err):
		status = http.StatusBadGateway
	default:
		logger.Log.Error().Err(err).Msg("unhandled API error")
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
