// internal/repository/lead_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

type LeadRepositoryInterface interface {
	Create(lead *model.Lead) error
	GetByID(tenantID, id string) (*model.Lead, error)
	ListByTenant(tenantID string, limit, offset int) ([]model.Lead, int, error)
	UpdateStatus(tenantID, id string, status model.LeadStatus) error
	SetAIEnabled(tenantID, id string, enabled bool) error
}

type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, tenant_id, phone, campaign_id, status, ai_conversation_enabled, last_manual_contact, created_at, updated_at`

func (r *LeadRepository) Create(lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = ulid.Make().String()
	}
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
        INSERT INTO leads (id, tenant_id, phone, campaign_id, status, ai_conversation_enabled, last_manual_contact, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.Exec(query,
		lead.ID, lead.TenantID, lead.Phone, lead.CampaignID, lead.Status,
		lead.AIConversationEnabled, lead.LastManualContact, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) GetByID(tenantID, id string) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id=$1 AND id=$2`
	var lead model.Lead
	err := r.DB.QueryRow(query, tenantID, id).Scan(
		&lead.ID, &lead.TenantID, &lead.Phone, &lead.CampaignID, &lead.Status,
		&lead.AIConversationEnabled, &lead.LastManualContact, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("lead", id)
		}
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) ListByTenant(tenantID string, limit, offset int) ([]model.Lead, int, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id=$1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(
			&lead.ID, &lead.TenantID, &lead.Phone, &lead.CampaignID, &lead.Status,
			&lead.AIConversationEnabled, &lead.LastManualContact, &lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM leads WHERE tenant_id=$1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) UpdateStatus(tenantID, id string, status model.LeadStatus) error {
	query := `UPDATE leads SET status=$1, updated_at=NOW() WHERE tenant_id=$2 AND id=$3`
	res, err := r.DB.Exec(query, status, tenantID, id)
	if err != nil {
		return err
	}
	return requireRow(res, "lead", id)
}

// SetAIEnabled flips conversation ownership from an explicit operator action
// (re-enable AI, or disable without sending).
func (r *LeadRepository) SetAIEnabled(tenantID, id string, enabled bool) error {
	query := `UPDATE leads SET ai_conversation_enabled=$1, updated_at=NOW() WHERE tenant_id=$2 AND id=$3`
	res, err := r.DB.Exec(query, enabled, tenantID, id)
	if err != nil {
		return err
	}
	return requireRow(res, "lead", id)
}

func requireRow(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound(resource, id)
	}
	return nil
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
