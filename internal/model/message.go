// internal/model/message.go
package model

import "time"

// MessageStatus tracks delivery lifecycle: queued -> sent -> delivered,
// with failed reachable from queued (immediate rejection) or sent (carrier DLR).
// delivered and failed are terminal for a given row.
type MessageStatus string

const (
	MessageStatusQueued    MessageStatus = "queued"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
)

// Terminal reports whether no further status transition is allowed.
func (s MessageStatus) Terminal() bool {
	return s == MessageStatusDelivered || s == MessageStatusFailed
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Sender string

const (
	SenderAI     Sender = "ai"
	SenderManual Sender = "manual"
)

// Message is one SMS in a lead conversation. A row with OriginalMessageID set
// is a retry of that earlier message; the earlier row is never mutated by the
// retry's outcome. Rows advance status in place and are never deleted.
type Message struct {
	ID                string        `db:"id" json:"id"`
	LeadID            string        `db:"lead_id" json:"lead_id"`
	TenantID          string        `db:"tenant_id" json:"tenant_id"`
	Direction         Direction     `db:"direction" json:"direction"`
	Body              string        `db:"message_body" json:"message_body"`
	Status            MessageStatus `db:"status" json:"status"`
	Sender            Sender        `db:"sender" json:"sender"`
	OriginalMessageID *string       `db:"original_message_id" json:"original_message_id,omitempty"`
	WeightedScore     *float64      `db:"weighted_score" json:"weighted_score,omitempty"`
	ProviderMessageID string        `db:"provider_message_id" json:"provider_message_id,omitempty"`
	LastError         string        `db:"last_error" json:"last_error,omitempty"`
	Timestamp         time.Time     `db:"timestamp" json:"timestamp"`
	// StatusUpdatedAt is the carrier-reported time of the latest status change,
	// nil while the row is still queued.
	StatusUpdatedAt *time.Time `db:"status_updated_at" json:"status_updated_at,omitempty"`
}

// IsRetry reports whether this row was created as a retry of an earlier one.
func (m *Message) IsRetry() bool {
	return m.OriginalMessageID != nil && *m.OriginalMessageID != ""
}
