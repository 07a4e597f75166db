// internal/service/worker.go
package service

import (
	"context"
	"time"

	"github.com/leadrail/leadrail-backend/internal/conversation"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/logger"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/repository"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

// Worker processes queued outbound messages: it re-checks the ownership
// guard, resolves the sender number and hands the body to the carrier.
// Carrier rejections are recorded on the row as failed, never raised back to
// the caller - a product-level retry is a new row created elsewhere.
type Worker struct {
	LeadRepo    repository.LeadRepositoryInterface
	MessageRepo repository.MessageRepositoryInterface
	Phones      sms.PhoneResolver
	Provider    sms.Provider
}

// Process handles one queued message id. A returned error means the job
// should be redelivered (infrastructure trouble); a message that was sent or
// recorded as failed returns nil.
func (w *Worker) Process(ctx context.Context, tenantID, messageID string) error {
	msg, err := w.MessageRepo.GetByID(tenantID, messageID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			logger.Log.Warn().Str("message_id", messageID).Msg("queued message no longer exists")
			return nil
		}
		return err
	}
	if msg.Status != model.MessageStatusQueued {
		// Redelivered job for a row the callback already advanced.
		return nil
	}

	lead, err := w.LeadRepo.GetByID(tenantID, msg.LeadID)
	if err != nil {
		return err
	}

	// Cancellation is advisory: the guard runs again immediately before the
	// send, because suspending a lead or disabling AI does not recall jobs
	// already in flight.
	if guardErr := w.recheckGuard(lead, msg); guardErr != nil {
		return w.MessageRepo.UpdateStatus(msg.ID, model.MessageStatusFailed, guardErr.Error(), time.Now().UTC())
	}

	from, err := w.Phones.ResolveOutboundNumber(ctx, lead.CampaignID)
	if err != nil {
		return w.MessageRepo.UpdateStatus(msg.ID, model.MessageStatusFailed, err.Error(), time.Now().UTC())
	}

	providerID, err := w.Provider.Send(ctx, lead.Phone, from, msg.Body)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("message_id", msg.ID).
			Str("lead_id", lead.ID).
			Msg("carrier rejected message")
		return w.MessageRepo.UpdateStatus(msg.ID, model.MessageStatusFailed, err.Error(), time.Now().UTC())
	}

	logger.Log.Info().
		Str("message_id", msg.ID).
		Str("provider_message_id", providerID).
		Msg("message sent")
	return w.MessageRepo.MarkSent(msg.ID, providerID)
}

func (w *Worker) recheckGuard(lead *model.Lead, msg *model.Message) error {
	if msg.Sender == model.SenderAI {
		return conversation.AuthorizeAISend(lead)
	}
	return conversation.AuthorizeSend(lead)
}
