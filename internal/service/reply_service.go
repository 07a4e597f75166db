// internal/service/reply_service.go
package service

import (
	"context"

	"github.com/leadrail/leadrail-backend/internal/ai"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/repository"
)

// ReplyService produces AI replies: it loads the tenant's engagement bundle,
// feeds the conversation history to the generation model and pushes the
// result through the same send pipeline as every other outbound message.
type ReplyService struct {
	Instructions *InstructionService
	MessageRepo  repository.MessageRepositoryInterface
	Replier      ai.Replier
	Send         *SendService
}

// GenerateAndSend builds and sends one AI reply for a lead. The send guard
// inside SendAI re-checks ownership, so a handoff or suspension that happened
// after this was triggered still blocks the message.
func (s *ReplyService) GenerateAndSend(ctx context.Context, tenantID, leadID string) (*SendResult, error) {
	instruction, err := s.Instructions.EngagementBundle(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.MessageRepo.ListByLead(tenantID, leadID)
	if err != nil {
		return nil, err
	}

	reply, err := s.Replier.Reply(ctx, instruction, historyTurns(msgs))
	if err != nil {
		return nil, err
	}
	if reply == "" {
		return nil, appErrors.NewValidation("generation produced an empty reply")
	}

	return s.Send.SendAI(ctx, tenantID, leadID, reply)
}

func historyTurns(msgs []model.Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Direction == model.DirectionOutbound {
			role = "assistant"
		}
		turns = append(turns, ai.Turn{Role: role, Text: m.Body})
	}
	return turns
}
