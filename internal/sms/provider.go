// internal/sms/provider.go
package sms

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
)

// Provider is the carrier port. Send returns the provider-side message id
// that later delivery receipts are correlated on.
type Provider interface {
	Send(ctx context.Context, to, from, body string) (providerMessageID string, err error)
}

// DeliveryReceipt is the asynchronous carrier status callback payload.
type DeliveryReceipt struct {
	MessageID string              `json:"message_id"`
	Status    model.MessageStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Error     string              `json:"error,omitempty"`
}

// PhoneResolver maps a campaign to the outbound number provisioned for it.
// Provisioning and A2P registration live outside this service.
type PhoneResolver interface {
	ResolveOutboundNumber(ctx context.Context, campaignID string) (string, error)
}

// StaticPhoneResolver answers every campaign with one configured number.
// Used in development and as the fallback when no per-campaign number exists.
type StaticPhoneResolver struct {
	Number string
}

func (r *StaticPhoneResolver) ResolveOutboundNumber(ctx context.Context, campaignID string) (string, error) {
	if r.Number == "" {
		return "", appErrors.NewNotFound("outbound number for campaign", campaignID)
	}
	return r.Number, nil
}

// MockProvider simulates a carrier with a 90% accept rate.
type MockProvider struct{}

func (p *MockProvider) Send(ctx context.Context, to, from, body string) (string, error) {
	if rand.Float64() < 0.9 {
		return "mock-" + ulid.Make().String(), nil
	}
	return "", appErrors.NewDelivery("mock carrier rejected message", nil)
}

var (
	_ Provider      = (*MockProvider)(nil)
	_ PhoneResolver = (*StaticPhoneResolver)(nil)
)
