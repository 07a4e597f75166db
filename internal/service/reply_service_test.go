package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/leadrail/leadrail-backend/internal/ai"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/service"
)

type scriptedReplier struct {
	reply       string
	instruction string
	history     []ai.Turn
}

func (r *scriptedReplier) Reply(ctx context.Context, instructionBundle string, history []ai.Turn) (string, error) {
	r.instruction = instructionBundle
	r.history = history
	return r.reply, nil
}

func TestGenerateAndSend(t *testing.T) {
	sendSvc, _, msgRepo, q := newSendService(aiManagedLead())
	msgRepo.msgs = append(msgRepo.msgs,
		&model.Message{ID: "in-1", LeadID: "lead-1", TenantID: "t1", Direction: model.DirectionInbound, Body: "is the duplex still available?"},
	)

	settings := newMockSettingsRepo()
	instructions := &service.InstructionService{Settings: settings}
	if err := instructions.SavePersonaConfig(context.Background(), "t1", personaConfig()); err != nil {
		t.Fatalf("SavePersonaConfig failed: %v", err)
	}

	replier := &scriptedReplier{reply: "Yes, it is! Want to see it this week?"}
	svc := &service.ReplyService{
		Instructions: instructions,
		MessageRepo:  msgRepo,
		Replier:      replier,
		Send:         sendSvc,
	}

	result, err := svc.GenerateAndSend(context.Background(), "t1", "lead-1")
	if err != nil {
		t.Fatalf("GenerateAndSend failed: %v", err)
	}

	if !strings.Contains(replier.instruction, "TONE: Friendly & Casual") {
		t.Errorf("replier did not receive the engagement bundle:\n%s", replier.instruction)
	}
	if len(replier.history) != 1 || replier.history[0].Role != "user" {
		t.Errorf("unexpected history passed to replier: %+v", replier.history)
	}
	if len(q.published) != 1 || q.published[0].MessageID != result.MessageID {
		t.Errorf("generated reply not enqueued: %+v", q.published)
	}

	sent := msgRepo.msgs[len(msgRepo.msgs)-1]
	if sent.Sender != model.SenderAI {
		t.Errorf("sender = %s, want ai", sent.Sender)
	}
}

func TestGenerateAndSendBlockedAfterHandoff(t *testing.T) {
	lead := aiManagedLead()
	lead.AIConversationEnabled = false
	sendSvc, _, msgRepo, _ := newSendService(lead)

	settings := newMockSettingsRepo()
	instructions := &service.InstructionService{Settings: settings}
	if err := instructions.SavePersonaConfig(context.Background(), "t1", personaConfig()); err != nil {
		t.Fatalf("SavePersonaConfig failed: %v", err)
	}

	svc := &service.ReplyService{
		Instructions: instructions,
		MessageRepo:  msgRepo,
		Replier:      &scriptedReplier{reply: "generated"},
		Send:         sendSvc,
	}

	_, err := svc.GenerateAndSend(context.Background(), "t1", "lead-1")
	if !appErrors.IsAuthorization(err) {
		t.Fatalf("expected AuthorizationError after handoff, got %v", err)
	}
	if len(msgRepo.msgs) != 0 {
		t.Errorf("blocked reply created %d rows, want 0", len(msgRepo.msgs))
	}
}
