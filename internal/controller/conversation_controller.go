// internal/controller/conversation_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadrail/leadrail-backend/internal/service"
)

type ConversationController struct {
	SendService  *service.SendService
	ReplyService *service.ReplyService
}

// SendMessage handles a manual operator send. The UI confirms the AI
// interruption before calling this; the response reports whether a handoff
// happened so the screen can reflect the new owner.
func (c *ConversationController) SendMessage(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.SendService.SendManual(r.Context(), tenantID, leadID, body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// RecordInbound stores a prospect's incoming SMS.
func (c *ConversationController) RecordInbound(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	msg, err := c.SendService.RecordInbound(r.Context(), tenantID, leadID, body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// GenerateAIReply composes and queues one AI reply for a lead. Fails with 403
// once an operator has taken the conversation over.
func (c *ConversationController) GenerateAIReply(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	result, err := c.ReplyService.GenerateAndSend(r.Context(), tenantID, leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// RetryMessage creates and enqueues a retry row for a failed message.
func (c *ConversationController) RetryMessage(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	messageID := chi.URLParam(r, "messageID")

	result, err := c.SendService.RetryMessage(r.Context(), tenantID, messageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ReenableAI hands the conversation back to the AI.
func (c *ConversationController) ReenableAI(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	if err := c.SendService.ReenableAI(r.Context(), tenantID, leadID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ai_conversation_enabled": true})
}

// ListMessages returns the conversation history for a lead.
func (c *ConversationController) ListMessages(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	msgs, err := c.SendService.ListConversation(r.Context(), tenantID, leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": msgs})
}

// DeliveryStats returns the retry diagnostics for one lead's conversation.
func (c *ConversationController) DeliveryStats(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	stats, err := c.SendService.LeadDeliveryStats(r.Context(), tenantID, leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
