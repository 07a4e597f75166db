// internal/controller/settings_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadrail/leadrail-backend/internal/followup"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/service"
)

type SettingsController struct {
	Instructions *service.InstructionService
}

// SavePersona encodes and stores the initial and engagement bundles for a
// tenant's persona configuration.
func (c *SettingsController) SavePersona(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var cfg model.PersonaConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.Instructions.SavePersonaConfig(r.Context(), tenantID, cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

type followupsRequest struct {
	Base  model.PersonaConfig  `json:"base"`
	Rules []model.FollowupRule `json:"rules"`
}

// SaveFollowups validates and stores the follow-up cadence. Duplicate day
// offsets come back as warnings, not errors.
func (c *SettingsController) SaveFollowups(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req followupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	warnings, err := c.Instructions.SaveFollowupRules(r.Context(), tenantID, req.Base, req.Rules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"saved":    true,
		"warnings": warnings,
	})
}

// GetFollowup answers the external timer's question: what bundle and what day
// offset apply at slot n. When that offset occurs on the wall clock is the
// timer's business, not ours.
func (c *SettingsController) GetFollowup(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || slot < 1 {
		http.Error(w, "invalid follow-up slot", http.StatusBadRequest)
		return
	}

	bundleText, dayOffset, err := c.Instructions.FollowupAt(r.Context(), tenantID, slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"slot":       slot,
		"day_offset": dayOffset,
		"bundle":     bundleText,
	})
}

// DeleteFollowup removes one follow-up slot's bundle and delay.
func (c *SettingsController) DeleteFollowup(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || slot < 1 {
		http.Error(w, "invalid follow-up slot", http.StatusBadRequest)
		return
	}

	if err := c.Instructions.DeleteFollowupRule(r.Context(), tenantID, slot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot": slot, "deleted": true})
}

// PreviewSchedule generates the time-ordered schedule for a rule set without
// persisting anything.
func (c *SettingsController) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req followupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	entries, err := followup.GenerateSchedule(req.Base, req.Rules)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedule": entries})
}
