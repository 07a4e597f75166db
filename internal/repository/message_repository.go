// internal/repository/message_repository.go
package repository

import (
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

type MessageRepositoryInterface interface {
	Create(msg *model.Message) error
	// CreateWithHandoff inserts the message and flips the lead's
	// ai_conversation_enabled flag in one transaction. The flip is a
	// compare-and-set on the flag, so a racing manual send applies the
	// ownership side effects at most once.
	CreateWithHandoff(msg *model.Message, manualContactAt time.Time) error
	GetByID(tenantID, id string) (*model.Message, error)
	GetByProviderMessageID(providerMessageID string) (*model.Message, error)
	ListByLead(tenantID, leadID string) ([]model.Message, error)
	UpdateStatus(id string, status model.MessageStatus, lastError string, statusAt time.Time) error
	MarkSent(id, providerMessageID string) error
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, lead_id, tenant_id, direction, message_body, status, sender, original_message_id, weighted_score, provider_message_id, last_error, timestamp, status_updated_at`

func (r *MessageRepository) Create(msg *model.Message) error {
	prepareInsert(msg)
	_, err := r.DB.Exec(insertMessageSQL,
		msg.ID, msg.LeadID, msg.TenantID, msg.Direction, msg.Body, msg.Status,
		msg.Sender, msg.OriginalMessageID, msg.WeightedScore, msg.ProviderMessageID,
		msg.LastError, msg.Timestamp, msg.StatusUpdatedAt,
	)
	return err
}

const insertMessageSQL = `
        INSERT INTO messages (id, lead_id, tenant_id, direction, message_body, status, sender, original_message_id, weighted_score, provider_message_id, last_error, timestamp, status_updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `

func (r *MessageRepository) CreateWithHandoff(msg *model.Message, manualContactAt time.Time) error {
	prepareInsert(msg)

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(insertMessageSQL,
		msg.ID, msg.LeadID, msg.TenantID, msg.Direction, msg.Body, msg.Status,
		msg.Sender, msg.OriginalMessageID, msg.WeightedScore, msg.ProviderMessageID,
		msg.LastError, msg.Timestamp, msg.StatusUpdatedAt,
	); err != nil {
		return err
	}

	// Conditional update: a concurrent handoff that got here first leaves
	// zero rows affected, which is fine - the flag is already down.
	if _, err := tx.Exec(`
        UPDATE leads
        SET ai_conversation_enabled=false, last_manual_contact=$1, updated_at=NOW()
        WHERE tenant_id=$2 AND id=$3 AND ai_conversation_enabled=true
    `, manualContactAt, msg.TenantID, msg.LeadID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *MessageRepository) GetByID(tenantID, id string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE tenant_id=$1 AND id=$2`
	return r.scanOne(r.DB.QueryRow(query, tenantID, id), id)
}

func (r *MessageRepository) GetByProviderMessageID(providerMessageID string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE provider_message_id=$1`
	return r.scanOne(r.DB.QueryRow(query, providerMessageID), providerMessageID)
}

func (r *MessageRepository) ListByLead(tenantID, leadID string) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE tenant_id=$1 AND lead_id=$2 ORDER BY timestamp ASC, id ASC`
	rows, err := r.DB.Query(query, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(
			&msg.ID, &msg.LeadID, &msg.TenantID, &msg.Direction, &msg.Body, &msg.Status,
			&msg.Sender, &msg.OriginalMessageID, &msg.WeightedScore, &msg.ProviderMessageID,
			&msg.LastError, &msg.Timestamp, &msg.StatusUpdatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) UpdateStatus(id string, status model.MessageStatus, lastError string, statusAt time.Time) error {
	query := `UPDATE messages SET status=$1, last_error=$2, status_updated_at=$3 WHERE id=$4`
	res, err := r.DB.Exec(query, status, lastError, statusAt, id)
	if err != nil {
		return err
	}
	return requireRow(res, "message", id)
}

// MarkSent records the carrier ack along with the provider's message id, which
// later delivery receipts are matched on.
func (r *MessageRepository) MarkSent(id, providerMessageID string) error {
	query := `UPDATE messages SET status=$1, provider_message_id=$2, last_error='', status_updated_at=NOW() WHERE id=$3`
	res, err := r.DB.Exec(query, model.MessageStatusSent, providerMessageID, id)
	if err != nil {
		return err
	}
	return requireRow(res, "message", id)
}

func (r *MessageRepository) scanOne(row *sql.Row, id string) (*model.Message, error) {
	var msg model.Message
	err := row.Scan(
		&msg.ID, &msg.LeadID, &msg.TenantID, &msg.Direction, &msg.Body, &msg.Status,
		&msg.Sender, &msg.OriginalMessageID, &msg.WeightedScore, &msg.ProviderMessageID,
		&msg.LastError, &msg.Timestamp, &msg.StatusUpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("message", id)
		}
		return nil, err
	}
	return &msg, nil
}

func prepareInsert(msg *model.Message) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Status == "" {
		msg.Status = model.MessageStatusQueued
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
