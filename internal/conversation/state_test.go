package conversation_test

import (
	"testing"

	"github.com/leadrail/leadrail-backend/internal/conversation"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

func TestStateOf(t *testing.T) {
	cases := []struct {
		name   string
		status model.LeadStatus
		aiFlag bool
		want   conversation.State
	}{
		{"ai owns new lead", model.LeadStatusNew, true, conversation.StateAIManaged},
		{"human owns after handoff", model.LeadStatusWarm, false, conversation.StateHumanManaged},
		{"unsubscribed suspends regardless of flag", model.LeadStatusUnsubscribed, true, conversation.StateSuspended},
		{"do_not_contact suspends", model.LeadStatusDoNotContact, false, conversation.StateSuspended},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lead := &model.Lead{ID: "l1", Status: tc.status, AIConversationEnabled: tc.aiFlag}
			if got := conversation.StateOf(lead); got != tc.want {
				t.Errorf("StateOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAuthorizeSend(t *testing.T) {
	active := &model.Lead{ID: "l1", Status: model.LeadStatusHot, AIConversationEnabled: false}
	if err := conversation.AuthorizeSend(active); err != nil {
		t.Errorf("active lead should be sendable: %v", err)
	}

	suspended := &model.Lead{ID: "l2", Status: model.LeadStatusUnsubscribed, AIConversationEnabled: true}
	if err := conversation.AuthorizeSend(suspended); !appErrors.IsAuthorization(err) {
		t.Errorf("expected AuthorizationError for suspended lead, got %v", err)
	}
}

func TestAuthorizeAISend(t *testing.T) {
	aiOwned := &model.Lead{ID: "l1", Status: model.LeadStatusNew, AIConversationEnabled: true}
	if err := conversation.AuthorizeAISend(aiOwned); err != nil {
		t.Errorf("AI-owned lead should accept AI sends: %v", err)
	}

	humanOwned := &model.Lead{ID: "l2", Status: model.LeadStatusNew, AIConversationEnabled: false}
	if err := conversation.AuthorizeAISend(humanOwned); !appErrors.IsAuthorization(err) {
		t.Errorf("expected AuthorizationError for human-owned lead, got %v", err)
	}

	suspended := &model.Lead{ID: "l3", Status: model.LeadStatusDoNotContact, AIConversationEnabled: true}
	if err := conversation.AuthorizeAISend(suspended); !appErrors.IsAuthorization(err) {
		t.Errorf("expected AuthorizationError for suspended lead, got %v", err)
	}
}

func TestHandoffOnManualSend(t *testing.T) {
	aiOwned := &model.Lead{Status: model.LeadStatusNew, AIConversationEnabled: true}
	if !conversation.HandoffOnManualSend(aiOwned) {
		t.Error("manual send while AI managed must hand off")
	}

	humanOwned := &model.Lead{Status: model.LeadStatusNew, AIConversationEnabled: false}
	if conversation.HandoffOnManualSend(humanOwned) {
		t.Error("already human managed, no handoff expected")
	}
}
