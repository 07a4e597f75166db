// internal/bundle/bundle.go
package bundle

import (
	"strings"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

// Variant selects which persona fields an instruction bundle carries. All
// variants share the same line-based encoding; they differ only in label set.
type Variant string

const (
	VariantInitial    Variant = "initial"
	VariantEngagement Variant = "engagement"
	VariantFollowup   Variant = "followup"
)

// Labels used in bundle text. Matching on decode is exact and anchored to the
// start of a line, so a label is never confused with a longer label that
// contains it.
const (
	LabelTone          = "TONE"
	LabelPersona       = "PERSONA"
	LabelIndustry      = "INDUSTRY"
	LabelRole          = "ROLE"
	LabelBusinessName  = "BUSINESS_NAME"
	LabelLeadDetails   = "LEAD_DETAILS"
	LabelKnowledgeBase = "KNOWLEDGE_BASE"
	LabelFollowupType  = "FOLLOWUP_TYPE"
)

// variantLabels fixes the label set and emit order per variant.
var variantLabels = map[Variant][]string{
	VariantInitial: {
		LabelTone, LabelPersona, LabelIndustry, LabelRole,
		LabelBusinessName, LabelLeadDetails,
	},
	VariantEngagement: {
		LabelTone, LabelPersona, LabelIndustry, LabelRole,
		LabelBusinessName, LabelKnowledgeBase,
	},
	VariantFollowup: {
		LabelTone, LabelPersona, LabelIndustry, LabelRole,
		LabelFollowupType,
	},
}

// MetadataKeyFollowupType is the CampaignMetadata key the followup variant
// reads its FOLLOWUP_TYPE value from.
const MetadataKeyFollowupType = "followup_type"

// Labels returns the ordered label set for a variant, nil for an unknown one.
func Labels(v Variant) []string {
	src := variantLabels[v]
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Encode renders cfg as bundle text for the given variant: one "LABEL: value"
// line per non-empty field the variant includes. Empty fields are omitted
// entirely rather than emitted as blank lines, so DecodeField returns "" for
// them just as it does for labels outside the variant.
//
// Tone and Persona are required; a missing one, an unknown variant, or any
// field value containing a newline fails with a ValidationError before
// anything is emitted.
func Encode(v Variant, cfg model.PersonaConfig) (string, error) {
	labels, ok := variantLabels[v]
	if !ok {
		return "", appErrors.NewValidation("unknown bundle variant %q", v)
	}
	if strings.TrimSpace(cfg.Tone) == "" || strings.TrimSpace(cfg.Persona) == "" {
		return "", appErrors.NewValidation("persona config requires tone and persona")
	}

	var b strings.Builder
	for _, label := range labels {
		value := fieldValue(cfg, label)
		if value == "" {
			continue
		}
		if strings.ContainsRune(value, '\n') {
			return "", appErrors.NewValidation("field %s must not contain a newline", label)
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// DecodeField returns the value of the first line whose label exactly equals
// label, or "" when no such line exists. The match is anchored to the line
// start: "TONE" never matches a "STONE:" line or a label it is a prefix of.
// Only the label side is trimmed; the value comes back verbatim, minus the one
// separator space the encoder emits, so padded values survive a round trip.
func DecodeField(bundleText, label string) string {
	for _, line := range strings.Split(bundleText, "\n") {
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		if strings.TrimSpace(line[:colon]) != label {
			continue
		}
		return strings.TrimPrefix(line[colon+1:], " ")
	}
	return ""
}

func fieldValue(cfg model.PersonaConfig, label string) string {
	switch label {
	case LabelTone:
		return cfg.Tone
	case LabelPersona:
		return cfg.Persona
	case LabelIndustry:
		return cfg.Industry
	case LabelRole:
		return cfg.Role
	case LabelBusinessName:
		return cfg.BusinessName
	case LabelLeadDetails:
		return cfg.LeadDetails
	case LabelKnowledgeBase:
		return cfg.KnowledgeBase
	case LabelFollowupType:
		return cfg.CampaignMetadata[MetadataKeyFollowupType]
	}
	return ""
}
