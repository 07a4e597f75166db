package followup_test

import (
	"testing"

	"github.com/leadrail/leadrail-backend/internal/bundle"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/followup"
	"github.com/leadrail/leadrail-backend/internal/model"
)

func baseConfig() model.PersonaConfig {
	return model.PersonaConfig{
		Tone:     "Friendly & Casual",
		Persona:  "Nurturer",
		Industry: "Real Estate",
		Role:     "Wholesaler",
	}
}

func TestValidateRuleBoundaries(t *testing.T) {
	cases := []struct {
		offset int
		ok     bool
	}{
		{0, false},
		{1, true},
		{90, true},
		{91, false},
	}

	for _, tc := range cases {
		err := followup.ValidateRule(model.FollowupRule{DayOffset: tc.offset})
		if tc.ok && err != nil {
			t.Errorf("offset %d: unexpected error %v", tc.offset, err)
		}
		if !tc.ok && !appErrors.IsValidation(err) {
			t.Errorf("offset %d: expected ValidationError, got %v", tc.offset, err)
		}
	}
}

func TestGenerateScheduleOrder(t *testing.T) {
	rules := []model.FollowupRule{
		{ID: "r14", DayOffset: 14, Type: model.FollowupTypeFinalAttempt, Persona: "Closer", Enabled: true},
		{ID: "r3", DayOffset: 3, Type: model.FollowupTypeGentleReminder, Persona: "Nurturer", Enabled: true},
		{ID: "r7", DayOffset: 7, Type: model.FollowupTypeValueAdd, Persona: "Educator", Enabled: true},
	}

	entries, err := followup.GenerateSchedule(baseConfig(), rules)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{3, 7, 14} {
		if entries[i].DayOffset != want {
			t.Errorf("entry %d: day offset = %d, want %d", i, entries[i].DayOffset, want)
		}
	}

	// Disabling the middle rule drops only that entry.
	rules[2].Enabled = false
	entries, err = followup.GenerateSchedule(baseConfig(), rules)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after disabling one rule, got %d", len(entries))
	}
	if entries[0].DayOffset != 3 || entries[1].DayOffset != 14 {
		t.Errorf("got offsets [%d,%d], want [3,14]", entries[0].DayOffset, entries[1].DayOffset)
	}
}

func TestGenerateScheduleStableTies(t *testing.T) {
	rules := []model.FollowupRule{
		{ID: "first", DayOffset: 5, Type: model.FollowupTypeGentleReminder, Persona: "A", Enabled: true},
		{ID: "second", DayOffset: 5, Type: model.FollowupTypeValueAdd, Persona: "B", Enabled: true},
	}

	entries, err := followup.GenerateSchedule(baseConfig(), rules)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if entries[0].RuleID != "first" || entries[1].RuleID != "second" {
		t.Errorf("tie broke original order: got [%s,%s]", entries[0].RuleID, entries[1].RuleID)
	}
}

func TestGenerateScheduleToneFallback(t *testing.T) {
	rules := []model.FollowupRule{
		{ID: "own", DayOffset: 3, Type: model.FollowupTypeGentleReminder, Tone: "Urgent", Persona: "Closer", Enabled: true},
		{ID: "inherit", DayOffset: 7, Type: model.FollowupTypeValueAdd, Persona: "Nurturer", Enabled: true},
	}

	entries, err := followup.GenerateSchedule(baseConfig(), rules)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}

	if got := bundle.DecodeField(entries[0].Bundle, "TONE"); got != "Urgent" {
		t.Errorf("rule tone not used: got %q", got)
	}
	if got := bundle.DecodeField(entries[1].Bundle, "TONE"); got != "Friendly & Casual" {
		t.Errorf("base tone fallback not applied: got %q", got)
	}
	if got := bundle.DecodeField(entries[0].Bundle, "FOLLOWUP_TYPE"); got != model.FollowupTypeGentleReminder {
		t.Errorf("FOLLOWUP_TYPE = %q, want %q", got, model.FollowupTypeGentleReminder)
	}
}

func TestValidateRulesDuplicateWarning(t *testing.T) {
	rules := []model.FollowupRule{
		{ID: "a", DayOffset: 3, Persona: "A", Enabled: true},
		{ID: "b", DayOffset: 3, Persona: "B", Enabled: true},
		{ID: "c", DayOffset: 9, Persona: "C", Enabled: true},
	}

	warnings, err := followup.ValidateRules(rules)
	if err != nil {
		t.Fatalf("duplicates must not fail validation: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
}

func TestGenerateScheduleRejectsBadOffset(t *testing.T) {
	rules := []model.FollowupRule{
		{ID: "bad", DayOffset: 120, Persona: "A", Enabled: true},
	}
	_, err := followup.GenerateSchedule(baseConfig(), rules)
	if !appErrors.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSettingsKeys(t *testing.T) {
	if got := followup.InstructionKey(2); got != "ai_instruction_followup_2" {
		t.Errorf("InstructionKey(2) = %q", got)
	}
	if got := followup.DelayKey(3); got != "followup_delay_3" {
		t.Errorf("DelayKey(3) = %q", got)
	}
}
