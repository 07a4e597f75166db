// internal/conversation/state.go
package conversation

import (
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

// State says who currently owns a lead's conversation. It is derived at check
// time from Lead.Status and Lead.AIConversationEnabled, never stored: the two
// underlying fields stay independent, and suspension wins over both.
type State string

const (
	StateAIManaged    State = "ai_managed"
	StateHumanManaged State = "human_managed"
	StateSuspended    State = "suspended"
)

// StateOf derives the ownership state for a lead.
func StateOf(lead *model.Lead) State {
	if lead.Status.Suspended() {
		return StateSuspended
	}
	if lead.AIConversationEnabled {
		return StateAIManaged
	}
	return StateHumanManaged
}

// AuthorizeSend is the guard every send attempt runs first. A suspended lead
// rejects with an AuthorizationError and the caller must not create a message
// row. There is no transition out of suspended here; un-suspension is an
// administrative action elsewhere.
func AuthorizeSend(lead *model.Lead) error {
	if StateOf(lead) == StateSuspended {
		return appErrors.NewAuthorization(
			"lead %s is %s and cannot be contacted", lead.ID, lead.Status)
	}
	return nil
}

// AuthorizeAISend additionally requires the AI to own the conversation: once
// a human has taken over, generated replies stay off the thread until an
// operator re-enables AI.
func AuthorizeAISend(lead *model.Lead) error {
	if err := AuthorizeSend(lead); err != nil {
		return err
	}
	if StateOf(lead) != StateAIManaged {
		return appErrors.NewAuthorization(
			"conversation for lead %s is human managed", lead.ID)
	}
	return nil
}

// HandoffOnManualSend reports whether a manual send must flip ownership from
// AI to human. The flip itself is applied atomically with the message insert
// by the repository, so two racing manual sends cannot both observe AI
// ownership and double-apply side effects.
func HandoffOnManualSend(lead *model.Lead) bool {
	return StateOf(lead) == StateAIManaged
}
