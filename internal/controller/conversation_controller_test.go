package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadrail/leadrail-backend/internal/controller"
	appErrors "github.com/leadrail/leadrail-backend/internal/errors"
	"github.com/leadrail/leadrail-backend/internal/model"
	"github.com/leadrail/leadrail-backend/internal/queue"
	"github.com/leadrail/leadrail-backend/internal/service"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

// --- Mock repositories ---

type mockLeadRepo struct {
	leads map[string]*model.Lead
}

func (m *mockLeadRepo) Create(lead *model.Lead) error {
	m.leads[lead.ID] = lead
	return nil
}

func (m *mockLeadRepo) GetByID(tenantID, id string) (*model.Lead, error) {
	lead, ok := m.leads[id]
	if !ok || lead.TenantID != tenantID {
		return nil, appErrors.NewNotFound("lead", id)
	}
	copied := *lead
	return &copied, nil
}

func (m *mockLeadRepo) ListByTenant(tenantID string, limit, offset int) ([]model.Lead, int, error) {
	return nil, 0, nil
}

func (m *mockLeadRepo) UpdateStatus(tenantID, id string, status model.LeadStatus) error {
	return nil
}

func (m *mockLeadRepo) SetAIEnabled(tenantID, id string, enabled bool) error {
	lead, ok := m.leads[id]
	if !ok {
		return appErrors.NewNotFound("lead", id)
	}
	lead.AIConversationEnabled = enabled
	return nil
}

type mockMessageRepo struct {
	msgs  []*model.Message
	leads *mockLeadRepo
}

func (m *mockMessageRepo) Create(msg *model.Message) error {
	msg.ID = "msg-1"
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *mockMessageRepo) CreateWithHandoff(msg *model.Message, manualContactAt time.Time) error {
	if err := m.Create(msg); err != nil {
		return err
	}
	if lead, ok := m.leads.leads[msg.LeadID]; ok && lead.AIConversationEnabled {
		lead.AIConversationEnabled = false
		at := manualContactAt
		lead.LastManualContact = &at
	}
	return nil
}

func (m *mockMessageRepo) GetByID(tenantID, id string) (*model.Message, error) {
	for _, msg := range m.msgs {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, appErrors.NewNotFound("message", id)
}

func (m *mockMessageRepo) GetByProviderMessageID(providerMessageID string) (*model.Message, error) {
	return nil, appErrors.NewNotFound("message", providerMessageID)
}

func (m *mockMessageRepo) ListByLead(tenantID, leadID string) ([]model.Message, error) {
	var out []model.Message
	for _, msg := range m.msgs {
		if msg.LeadID == leadID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepo) UpdateStatus(id string, status model.MessageStatus, lastError string, statusAt time.Time) error {
	return nil
}

func (m *mockMessageRepo) MarkSent(id, providerMessageID string) error {
	return nil
}

type mockQueue struct{ published int }

func (m *mockQueue) Publish(topic string, payload any) error {
	m.published++
	return nil
}

func (m *mockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

var _ queue.Queue = (*mockQueue)(nil)

// --- Test helpers ---

func newRouter(leads ...*model.Lead) (*chi.Mux, *mockLeadRepo, *mockMessageRepo) {
	leadRepo := &mockLeadRepo{leads: map[string]*model.Lead{}}
	for _, l := range leads {
		leadRepo.leads[l.ID] = l
	}
	msgRepo := &mockMessageRepo{leads: leadRepo}

	sendService := &service.SendService{
		LeadRepo:    leadRepo,
		MessageRepo: msgRepo,
		Phones:      &sms.StaticPhoneResolver{Number: "+15550001111"},
		Queue:       &mockQueue{},
	}
	c := &controller.ConversationController{SendService: sendService}

	r := chi.NewRouter()
	r.Post("/tenants/{tenantID}/leads/{leadID}/messages", c.SendMessage)
	r.Get("/tenants/{tenantID}/leads/{leadID}/delivery-stats", c.DeliveryStats)
	r.Post("/tenants/{tenantID}/leads/{leadID}/reenable-ai", c.ReenableAI)
	return r, leadRepo, msgRepo
}

func postJSON(t *testing.T, r http.Handler, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestSendMessageHandoff(t *testing.T) {
	r, leadRepo, msgRepo := newRouter(&model.Lead{
		ID: "lead-1", TenantID: "t1", Phone: "+15557772222",
		Status: model.LeadStatusNew, AIConversationEnabled: true,
	})

	w := postJSON(t, r, "/tenants/t1/leads/lead-1/messages", map[string]string{"body": "hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Handoff bool `json:"handoff"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !resp.Handoff {
		t.Error("response did not report the handoff")
	}
	if leadRepo.leads["lead-1"].AIConversationEnabled {
		t.Error("flag still enabled after manual send")
	}
	if len(msgRepo.msgs) != 1 {
		t.Errorf("expected 1 message row, got %d", len(msgRepo.msgs))
	}
}

func TestSendMessageSuspendedReturns403(t *testing.T) {
	r, _, msgRepo := newRouter(&model.Lead{
		ID: "lead-1", TenantID: "t1", Phone: "+15557772222",
		Status: model.LeadStatusUnsubscribed, AIConversationEnabled: true,
	})

	w := postJSON(t, r, "/tenants/t1/leads/lead-1/messages", map[string]string{"body": "hello"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", w.Code, w.Body.String())
	}
	if len(msgRepo.msgs) != 0 {
		t.Errorf("rejected send created %d rows, want 0", len(msgRepo.msgs))
	}
}

func TestSendMessageUnknownLeadReturns404(t *testing.T) {
	r, _, _ := newRouter()

	w := postJSON(t, r, "/tenants/t1/leads/ghost/messages", map[string]string{"body": "hello"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestDeliveryStatsEndpoint(t *testing.T) {
	r, _, msgRepo := newRouter(&model.Lead{
		ID: "lead-1", TenantID: "t1", Status: model.LeadStatusWarm,
	})
	orig := "A"
	msgRepo.msgs = append(msgRepo.msgs,
		&model.Message{ID: "A", LeadID: "lead-1", TenantID: "t1", Direction: model.DirectionOutbound, Status: model.MessageStatusFailed},
		&model.Message{ID: "B", LeadID: "lead-1", TenantID: "t1", Direction: model.DirectionOutbound, Status: model.MessageStatusDelivered, OriginalMessageID: &orig},
	)

	req := httptest.NewRequest(http.MethodGet, "/tenants/t1/leads/lead-1/delivery-stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var stats struct {
		RetryMessages    int `json:"retry_messages"`
		RetrySuccessRate int `json:"retry_success_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if stats.RetryMessages != 1 || stats.RetrySuccessRate != 100 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReenableAIEndpoint(t *testing.T) {
	r, leadRepo, _ := newRouter(&model.Lead{
		ID: "lead-1", TenantID: "t1", Status: model.LeadStatusWarm, AIConversationEnabled: false,
	})

	w := postJSON(t, r, "/tenants/t1/leads/lead-1/reenable-ai", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !leadRepo.leads["lead-1"].AIConversationEnabled {
		t.Error("flag not re-enabled")
	}
}
