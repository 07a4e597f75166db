// internal/model/lead.go
package model

import "time"

// LeadStatus is the funnel status assigned by the external scoring logic.
type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusWarm         LeadStatus = "warm"
	LeadStatusHot          LeadStatus = "hot"
	LeadStatusCold         LeadStatus = "cold"
	LeadStatusUnsubscribed LeadStatus = "unsubscribed"
	LeadStatusDoNotContact LeadStatus = "do_not_contact"
)

// Suspended reports whether the status forbids any outbound contact.
func (s LeadStatus) Suspended() bool {
	return s == LeadStatusUnsubscribed || s == LeadStatusDoNotContact
}

// Lead is a prospect tracked through the funnel. AIConversationEnabled and
// Status are independent fields: suspension does not imply the flag is false,
// and both are checked separately at send time.
type Lead struct {
	ID                    string     `db:"id" json:"id"`
	TenantID              string     `db:"tenant_id" json:"tenant_id"`
	Phone                 string     `db:"phone" json:"phone"`
	CampaignID            string     `db:"campaign_id" json:"campaign_id"`
	Status                LeadStatus `db:"status" json:"status"`
	AIConversationEnabled bool       `db:"ai_conversation_enabled" json:"ai_conversation_enabled"`
	LastManualContact     *time.Time `db:"last_manual_contact" json:"last_manual_contact,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}
