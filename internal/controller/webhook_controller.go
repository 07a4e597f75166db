// internal/controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/leadrail/leadrail-backend/internal/service"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

type WebhookController struct {
	SendService *service.SendService
}

// DeliveryCallback receives asynchronous carrier status callbacks and
// reconciles them with the matching message rows.
func (c *WebhookController) DeliveryCallback(w http.ResponseWriter, r *http.Request) {
	var rcpt sms.DeliveryReceipt
	if err := json.NewDecoder(r.Body).Decode(&rcpt); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.SendService.ApplyDeliveryReceipt(r.Context(), rcpt); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": true})
}
