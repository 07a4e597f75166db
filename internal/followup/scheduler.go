// internal/followup/scheduler.go
package followup

import (
	"fmt"
	"sort"

	"github.com/leadrail/leadrail-backend/internal/bundle"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

// Day-offset bounds for a follow-up rule, inclusive.
const (
	MinDayOffset = 1
	MaxDayOffset = 90
)

// Per-tenant settings keys the scheduler and instruction service read/write.
// Follow-up keys are 1-based and keyed per rule, so editing one rule never
// touches another rule's persisted bundle.
const (
	KeyInitialInstruction = "ai_instruction_initial"
	KeyEngagementBundle   = "aiinstruction_bundle"
)

// InstructionKey returns the settings key for the nth follow-up bundle.
func InstructionKey(n int) string {
	return fmt.Sprintf("ai_instruction_followup_%d", n)
}

// DelayKey returns the settings key for the nth follow-up day offset.
func DelayKey(n int) string {
	return fmt.Sprintf("followup_delay_%d", n)
}

// ScheduleEntry is one planned contact attempt: which rule it came from, how
// many days after initial contact it fires, and the instruction bundle the
// generation step consumes for it.
type ScheduleEntry struct {
	RuleID    string `json:"rule_id"`
	DayOffset int    `json:"day_offset"`
	Bundle    string `json:"bundle"`
}

// ValidateRule checks a single rule. Day offsets outside [1,90] fail closed.
func ValidateRule(rule model.FollowupRule) error {
	if rule.DayOffset < MinDayOffset || rule.DayOffset > MaxDayOffset {
		return appErrors.NewValidation(
			"follow-up day offset must be between %d and %d, got %d",
			MinDayOffset, MaxDayOffset, rule.DayOffset,
		)
	}
	return nil
}

// ValidateRules validates every rule and returns non-fatal warnings for
// duplicate day offsets. Duplicates are accepted; the ambiguity is surfaced
// to the operator rather than rejected.
func ValidateRules(rules []model.FollowupRule) ([]string, error) {
	seen := map[int]bool{}
	var warnings []string
	for _, rule := range rules {
		if err := ValidateRule(rule); err != nil {
			return nil, err
		}
		if seen[rule.DayOffset] {
			warnings = append(warnings,
				fmt.Sprintf("multiple follow-up rules share day offset %d", rule.DayOffset))
		}
		seen[rule.DayOffset] = true
	}
	return warnings, nil
}

// GenerateSchedule turns the enabled rules into a time-ordered schedule.
// Each rule's tone falls back to the base engagement tone when unset, and its
// bundle is encoded independently. Entries are sorted ascending by day
// offset; ties keep the original rule order.
func GenerateSchedule(base model.PersonaConfig, rules []model.FollowupRule) ([]ScheduleEntry, error) {
	entries := make([]ScheduleEntry, 0, len(rules))
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if err := ValidateRule(rule); err != nil {
			return nil, err
		}
		text, err := EncodeRuleBundle(base, rule)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ScheduleEntry{
			RuleID:    rule.ID,
			DayOffset: rule.DayOffset,
			Bundle:    text,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DayOffset < entries[j].DayOffset
	})
	return entries, nil
}

// EncodeRuleBundle merges one rule into the base persona config and encodes
// the followup-variant bundle for it.
func EncodeRuleBundle(base model.PersonaConfig, rule model.FollowupRule) (string, error) {
	merged := base
	if rule.Tone != "" {
		merged.Tone = rule.Tone
	}
	if rule.Persona != "" {
		merged.Persona = rule.Persona
	}
	meta := make(map[string]string, len(base.CampaignMetadata)+1)
	for k, v := range base.CampaignMetadata {
		meta[k] = v
	}
	meta[bundle.MetadataKeyFollowupType] = rule.Type
	merged.CampaignMetadata = meta

	return bundle.Encode(bundle.VariantFollowup, merged)
}
