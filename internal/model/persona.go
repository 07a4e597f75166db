// internal/model/persona.go
package model

// PersonaConfig is the structured AI-persona configuration a tenant operator
// edits. No field value may contain a newline; the bundle codec rejects
// configs that violate this because the wire format is line based.
type PersonaConfig struct {
	Tone             string            `json:"tone"`
	Persona          string            `json:"persona"`
	Industry         string            `json:"industry"`
	Role             string            `json:"role"`
	BusinessName     string            `json:"business_name"`
	LeadDetails      string            `json:"lead_details"`
	KnowledgeBase    string            `json:"knowledge_base"`
	CampaignMetadata map[string]string `json:"campaign_metadata,omitempty"`
}

// FollowupRule is one step of a tenant's follow-up cadence. Tone is optional
// and falls back to the base engagement tone when empty.
type FollowupRule struct {
	ID        string `json:"id"`
	DayOffset int    `json:"day_offset"`
	Type      string `json:"type"`
	Tone      string `json:"tone,omitempty"`
	Persona   string `json:"persona"`
	Enabled   bool   `json:"enabled"`
}

// Known follow-up rule types. The set is open ended; these are the product
// defaults.
const (
	FollowupTypeGentleReminder = "gentle_reminder"
	FollowupTypeValueAdd       = "value_add"
	FollowupTypeFinalAttempt   = "final_attempt"
)
