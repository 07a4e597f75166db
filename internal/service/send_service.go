// internal/service/send_service.go
package service

import (
	"context"
	"time"

	"github.com/leadrail/leadrail-backend/internal/conversation"
	"github.com/leadrail/leadrail-backend/internal/delivery"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/logger"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/queue"
	"github.com/leadrail/leadrail-backend/internal/repository"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

// SendService owns the send pipeline: guard, message row creation, ownership
// handoff and enqueueing. Delivery outcomes are reconciled later by the
// worker and the DLR webhook - the insert-then-send sequence is "create
// intent, then reconcile outcome", never an atomic unit.
type SendService struct {
	LeadRepo    repository.LeadRepositoryInterface
	MessageRepo repository.MessageRepositoryInterface
	Phones      sms.PhoneResolver
	Queue       queue.Queue
}

// SendResult reports what a send attempt did.
type SendResult struct {
	MessageID string             `json:"message_id"`
	State     conversation.State `json:"state"`
	// Handoff is true when this manual send took the conversation over
	// from the AI.
	Handoff bool `json:"handoff"`
}

// SendManual sends an operator-written message. If the conversation was
// AI-managed, ownership transfers to the human as a side effect of the same
// transaction that creates the message row; callers confirm the interruption
// with the operator before invoking this.
func (s *SendService) SendManual(ctx context.Context, tenantID, leadID, body string) (*SendResult, error) {
	return s.send(ctx, tenantID, leadID, body, model.SenderManual)
}

// SendAI sends a generated message. It requires the AI to still own the
// conversation at send time; it never transfers ownership.
func (s *SendService) SendAI(ctx context.Context, tenantID, leadID, body string) (*SendResult, error) {
	return s.send(ctx, tenantID, leadID, body, model.SenderAI)
}

func (s *SendService) send(ctx context.Context, tenantID, leadID, body string, sender model.Sender) (*SendResult, error) {
	if body == "" {
		return nil, appErrors.NewValidation("message body must not be empty")
	}

	lead, err := s.LeadRepo.GetByID(tenantID, leadID)
	if err != nil {
		return nil, err
	}

	// Guard first: a suspended lead rejects before any row exists.
	if sender == model.SenderAI {
		err = conversation.AuthorizeAISend(lead)
	} else {
		err = conversation.AuthorizeSend(lead)
	}
	if err != nil {
		return nil, err
	}

	// Phone resolution is also pre-persistence: an unprovisioned campaign
	// must not leave an orphaned queued row behind.
	if _, err := s.Phones.ResolveOutboundNumber(ctx, lead.CampaignID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		LeadID:    leadID,
		TenantID:  tenantID,
		Direction: model.DirectionOutbound,
		Body:      body,
		Status:    model.MessageStatusQueued,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}

	handoff := sender == model.SenderManual && conversation.HandoffOnManualSend(lead)
	if handoff {
		err = s.MessageRepo.CreateWithHandoff(msg, msg.Timestamp)
	} else {
		err = s.MessageRepo.Create(msg)
	}
	if err != nil {
		return nil, err
	}

	state := conversation.StateOf(lead)
	if handoff {
		state = conversation.StateHumanManaged
	}

	if err := s.Queue.Publish(queue.TopicConversationSends, queue.SendJob{
		MessageID: msg.ID,
		TenantID:  tenantID,
	}); err != nil {
		// The row stays queued; the outcome is reconciled when the queue
		// recovers or the operator retries.
		logger.Log.Error().Err(err).Str("message_id", msg.ID).Msg("failed to enqueue send")
	}

	logger.Log.Info().
		Str("tenant_id", tenantID).
		Str("lead_id", leadID).
		Str("message_id", msg.ID).
		Str("sender", string(sender)).
		Bool("handoff", handoff).
		Msg("outbound message queued")

	return &SendResult{MessageID: msg.ID, State: state, Handoff: handoff}, nil
}

// RetryMessage creates a new queued row for a failed message and enqueues it.
// The original row is left untouched; the chain is linked through
// original_message_id. The ownership guard is re-checked because the lead may
// have been suspended since the first attempt.
func (s *SendService) RetryMessage(ctx context.Context, tenantID, messageID string) (*SendResult, error) {
	orig, err := s.MessageRepo.GetByID(tenantID, messageID)
	if err != nil {
		return nil, err
	}

	lead, err := s.LeadRepo.GetByID(tenantID, orig.LeadID)
	if err != nil {
		return nil, err
	}
	if err := conversation.AuthorizeSend(lead); err != nil {
		return nil, err
	}

	retry, err := delivery.NewRetry(orig)
	if err != nil {
		return nil, err
	}
	if err := s.MessageRepo.Create(retry); err != nil {
		return nil, err
	}

	if err := s.Queue.Publish(queue.TopicConversationSends, queue.SendJob{
		MessageID: retry.ID,
		TenantID:  tenantID,
	}); err != nil {
		logger.Log.Error().Err(err).Str("message_id", retry.ID).Msg("failed to enqueue retry")
	}

	logger.Log.Info().
		Str("tenant_id", tenantID).
		Str("original_message_id", messageID).
		Str("message_id", retry.ID).
		Msg("retry queued")

	return &SendResult{MessageID: retry.ID, State: conversation.StateOf(lead)}, nil
}

// RecordInbound stores a prospect's incoming SMS. Inbound traffic never moves
// ownership; it only builds history for scoring and reply generation.
func (s *SendService) RecordInbound(ctx context.Context, tenantID, leadID, body string) (*model.Message, error) {
	if body == "" {
		return nil, appErrors.NewValidation("message body must not be empty")
	}
	if _, err := s.LeadRepo.GetByID(tenantID, leadID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		LeadID:    leadID,
		TenantID:  tenantID,
		Direction: model.DirectionInbound,
		Body:      body,
		Status:    model.MessageStatusDelivered,
		Timestamp: time.Now().UTC(),
	}
	if err := s.MessageRepo.Create(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ReenableAI is the explicit operator action that hands the conversation back
// to the AI. It has no effect on a suspended lead's status.
func (s *SendService) ReenableAI(ctx context.Context, tenantID, leadID string) error {
	if _, err := s.LeadRepo.GetByID(tenantID, leadID); err != nil {
		return err
	}
	return s.LeadRepo.SetAIEnabled(tenantID, leadID, true)
}

// ApplyDeliveryReceipt reconciles an asynchronous carrier callback with the
// matching message row. Receipts for unknown provider ids or illegal
// transitions are rejected without touching anything.
func (s *SendService) ApplyDeliveryReceipt(ctx context.Context, rcpt sms.DeliveryReceipt) error {
	msg, err := s.MessageRepo.GetByProviderMessageID(rcpt.MessageID)
	if err != nil {
		return err
	}
	if err := delivery.ApplyReceipt(msg, rcpt.Status, rcpt.Timestamp, rcpt.Error); err != nil {
		return err
	}
	return s.MessageRepo.UpdateStatus(msg.ID, msg.Status, msg.LastError, *msg.StatusUpdatedAt)
}

// ListConversation returns a lead's messages ordered by timestamp.
func (s *SendService) ListConversation(ctx context.Context, tenantID, leadID string) ([]model.Message, error) {
	if _, err := s.LeadRepo.GetByID(tenantID, leadID); err != nil {
		return nil, err
	}
	return s.MessageRepo.ListByLead(tenantID, leadID)
}

// DeliveryStats computes the retry diagnostics for one lead's conversation.
type DeliveryStats struct {
	delivery.RetryStats
	FirstContactFailed bool `json:"first_contact_failed"`
}

func (s *SendService) LeadDeliveryStats(ctx context.Context, tenantID, leadID string) (*DeliveryStats, error) {
	if _, err := s.LeadRepo.GetByID(tenantID, leadID); err != nil {
		return nil, err
	}
	msgs, err := s.MessageRepo.ListByLead(tenantID, leadID)
	if err != nil {
		return nil, err
	}
	return &DeliveryStats{
		RetryStats:         delivery.ComputeRetryStats(msgs),
		FirstContactFailed: delivery.FirstContactFailed(msgs),
	}, nil
}
