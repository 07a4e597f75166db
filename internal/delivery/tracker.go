// internal/delivery/tracker.go
package delivery

import (
	"math"
	"sort"
	"time"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

// CanTransition reports whether a message may move from one delivery status
// to another. delivered and failed are terminal; a failed message is retried
// by creating a new row, never by reviving the old one.
func CanTransition(from, to model.MessageStatus) bool {
	if from.Terminal() {
		return false
	}
	switch from {
	case model.MessageStatusQueued:
		return to == model.MessageStatusSent || to == model.MessageStatusFailed
	case model.MessageStatusSent:
		return to == model.MessageStatusDelivered || to == model.MessageStatusFailed
	}
	return false
}

// ApplyReceipt advances a message's status from an asynchronous carrier
// callback and stamps the row with the carrier's timestamp. Receipts arriving
// after a terminal status, or carrying an unknown status, are rejected with a
// ValidationError and leave the row untouched.
func ApplyReceipt(msg *model.Message, status model.MessageStatus, at time.Time, carrierError string) error {
	switch status {
	case model.MessageStatusSent, model.MessageStatusDelivered, model.MessageStatusFailed:
	default:
		return appErrors.NewValidation("unknown delivery status %q", status)
	}
	if !CanTransition(msg.Status, status) {
		return appErrors.NewValidation(
			"message %s cannot move from %s to %s", msg.ID, msg.Status, status)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	msg.Status = status
	msg.StatusUpdatedAt = &at
	if status == model.MessageStatusFailed && carrierError != "" {
		msg.LastError = carrierError
	}
	return nil
}

// NewRetry builds the retry row for a failed message. The original row keeps
// its status; the chain is linked through OriginalMessageID.
func NewRetry(orig *model.Message) (*model.Message, error) {
	if orig.Status != model.MessageStatusFailed {
		return nil, appErrors.NewValidation(
			"message %s is %s; only failed messages can be retried", orig.ID, orig.Status)
	}
	id := orig.ID
	return &model.Message{
		LeadID:            orig.LeadID,
		TenantID:          orig.TenantID,
		Direction:         model.DirectionOutbound,
		Body:              orig.Body,
		Status:            model.MessageStatusQueued,
		Sender:            orig.Sender,
		OriginalMessageID: &id,
		Timestamp:         time.Now().UTC(),
	}, nil
}

// RetryStats are the aggregate retry diagnostics for a message set.
type RetryStats struct {
	FailedMessages    int `json:"failed_messages"`
	RetryMessages     int `json:"retry_messages"`
	SuccessfulRetries int `json:"successful_retries"`
	// RetrySuccessRate is a rounded percentage, 0 when nothing was retried.
	RetrySuccessRate int `json:"retry_success_rate"`
}

// ComputeRetryStats aggregates delivery diagnostics over a message set. A
// retry counts as successful once it reaches sent or delivered.
func ComputeRetryStats(msgs []model.Message) RetryStats {
	var stats RetryStats
	for i := range msgs {
		m := &msgs[i]
		if m.Status == model.MessageStatusFailed {
			stats.FailedMessages++
		}
		if !m.IsRetry() {
			continue
		}
		stats.RetryMessages++
		if m.Status == model.MessageStatusSent || m.Status == model.MessageStatusDelivered {
			stats.SuccessfulRetries++
		}
	}
	if stats.RetryMessages > 0 {
		rate := float64(stats.SuccessfulRetries) / float64(stats.RetryMessages) * 100
		stats.RetrySuccessRate = int(math.Round(rate))
	}
	return stats
}

// FirstContactFailed reports whether the earliest outbound message for a lead
// failed, which usually means the number is bad or blocked from the start.
func FirstContactFailed(msgs []model.Message) bool {
	outbound := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Direction == model.DirectionOutbound {
			outbound = append(outbound, m)
		}
	}
	if len(outbound) == 0 {
		return false
	}
	sort.SliceStable(outbound, func(i, j int) bool {
		return outbound[i].Timestamp.Before(outbound[j].Timestamp)
	})
	return outbound[0].Status == model.MessageStatusFailed
}
