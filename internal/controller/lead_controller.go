// internal/controller/lead_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/repository"
)

type LeadController struct {
	LeadRepo repository.LeadRepositoryInterface
}

func (c *LeadController) CreateLead(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var body struct {
		Phone      string `json:"phone"`
		CampaignID string `json:"campaign_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.Phone == "" {
		http.Error(w, "phone is required", http.StatusBadRequest)
		return
	}

	lead := &model.Lead{
		TenantID:              tenantID,
		Phone:                 body.Phone,
		CampaignID:            body.CampaignID,
		Status:                model.LeadStatusNew,
		AIConversationEnabled: true,
	}
	if err := c.LeadRepo.Create(lead); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (c *LeadController) GetLead(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	lead, err := c.LeadRepo.GetByID(tenantID, leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	leads, total, err := c.LeadRepo.ListByTenant(tenantID, pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, map[string]any{
		"data": leads,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// UpdateStatus applies the external scoring outcome. Moving a lead into
// unsubscribed or do_not_contact suspends its conversation at the next send
// check; the ai_conversation_enabled flag is deliberately left alone.
func (c *LeadController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	leadID := chi.URLParam(r, "leadID")

	var body struct {
		Status model.LeadStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.LeadRepo.UpdateStatus(tenantID, leadID, body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": body.Status})
}
