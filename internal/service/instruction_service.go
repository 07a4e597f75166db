// internal/service/instruction_service.go
package service

import (
	"context"
	"strconv"

	"github.com/leadrail/leadrail-backend/internal/bundle"
	"github.com/leadrail/leadrail-backend/internal/followup"
	"github.com/leadrail/leadrail-backend/internal/logger"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/repository"
)

// InstructionService persists instruction bundles and follow-up cadence
// settings per tenant. Each follow-up rule is written under its own key pair,
// so editing one rule never rewrites another rule's bundle.
type InstructionService struct {
	Settings repository.SettingsRepositoryInterface
}

// SavePersonaConfig validates and encodes the initial-contact and engagement
// bundles and stores both. Nothing is written if either encode fails.
func (s *InstructionService) SavePersonaConfig(ctx context.Context, tenantID string, cfg model.PersonaConfig) error {
	initial, err := bundle.Encode(bundle.VariantInitial, cfg)
	if err != nil {
		return err
	}
	engagement, err := bundle.Encode(bundle.VariantEngagement, cfg)
	if err != nil {
		return err
	}

	if err := s.Settings.Put(tenantID, followup.KeyInitialInstruction, initial); err != nil {
		return err
	}
	if err := s.Settings.Put(tenantID, followup.KeyEngagementBundle, engagement); err != nil {
		return err
	}

	logger.Log.Info().Str("tenant_id", tenantID).Msg("persona bundles saved")
	return nil
}

// SaveFollowupRules validates the whole rule set, then persists one bundle
// and one delay per rule, keyed 1-based by position. Returns the non-fatal
// duplicate-offset warnings for the caller to surface.
func (s *InstructionService) SaveFollowupRules(ctx context.Context, tenantID string, base model.PersonaConfig, rules []model.FollowupRule) ([]string, error) {
	warnings, err := followup.ValidateRules(rules)
	if err != nil {
		return nil, err
	}

	for i, rule := range rules {
		if err := s.SaveFollowupRule(ctx, tenantID, i+1, base, rule); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// SaveFollowupRule persists a single rule's bundle and delay under its own
// slot without touching any other slot.
func (s *InstructionService) SaveFollowupRule(ctx context.Context, tenantID string, slot int, base model.PersonaConfig, rule model.FollowupRule) error {
	if err := followup.ValidateRule(rule); err != nil {
		return err
	}
	text, err := followup.EncodeRuleBundle(base, rule)
	if err != nil {
		return err
	}
	if err := s.Settings.Put(tenantID, followup.InstructionKey(slot), text); err != nil {
		return err
	}
	return s.Settings.Put(tenantID, followup.DelayKey(slot), strconv.Itoa(rule.DayOffset))
}

// DeleteFollowupRule removes a slot's bundle and delay. Deleting a slot that
// was never saved is a NotFoundError; other slots are untouched either way.
func (s *InstructionService) DeleteFollowupRule(ctx context.Context, tenantID string, slot int) error {
	if err := s.Settings.Delete(tenantID, followup.InstructionKey(slot)); err != nil {
		return err
	}
	return s.Settings.Delete(tenantID, followup.DelayKey(slot))
}

// EngagementBundle loads the ongoing-engagement bundle used for generated
// replies.
func (s *InstructionService) EngagementBundle(ctx context.Context, tenantID string) (string, error) {
	return s.Settings.Get(tenantID, followup.KeyEngagementBundle)
}

// InitialBundle loads the first-touch bundle.
func (s *InstructionService) InitialBundle(ctx context.Context, tenantID string) (string, error) {
	return s.Settings.Get(tenantID, followup.KeyInitialInstruction)
}

// FollowupAt answers "what bundle and what delay applies at slot n". When
// a follow-up fires on the wall clock is the external scheduler's problem.
func (s *InstructionService) FollowupAt(ctx context.Context, tenantID string, slot int) (bundleText string, dayOffset int, err error) {
	bundleText, err = s.Settings.Get(tenantID, followup.InstructionKey(slot))
	if err != nil {
		return "", 0, err
	}
	raw, err := s.Settings.Get(tenantID, followup.DelayKey(slot))
	if err != nil {
		return "", 0, err
	}
	dayOffset, err = strconv.Atoi(raw)
	if err != nil {
		return "", 0, err
	}
	return bundleText, dayOffset, nil
}
