package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"townbeat/internal/cart"
	"townbeat/internal/checkout"
	"townbeat/internal/config"
	"townbeat/internal/domain"
	"townbeat/internal/notifications"
	"townbeat/internal/payments"
	"townbeat/internal/repository"
)

type fakeSubmissionRepo struct {
	saved   []*domain.Submission
	failing bool
}

func (f *fakeSubmissionRepo) Create(_ context.Context, sub *domain.Submission) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.saved = append(f.saved, sub)
	return nil
}

func (f *fakeSubmissionRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Submission, error) {
	return nil, nil
}

func postForm(t *testing.T, handler http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestContactFormValidation(t *testing.T) {
	repo := &fakeSubmissionRepo{}
	s := &Server{
		config:   &config.Config{},
		notifier: notifications.NewEmailNotifier(nil),
		repos:    &repository.Repositories{Submissions: repo},
	}

	cases := []struct {
		name   string
		values url.Values
		status int
	}{
		{"missing name", url.Values{"email": {"a@b.test"}, "message": {"hi"}}, http.StatusBadRequest},
		{"bad email", url.Values{"name": {"A"}, "email": {"nope"}, "message": {"hi"}}, http.StatusBadRequest},
		{"missing message", url.Values{"name": {"A"}, "email": {"a@b.test"}}, http.StatusBadRequest},
		{"valid", url.Values{"name": {"A"}, "email": {"a@b.test"}, "message": {"hi"}}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postForm(t, s.handleContactForm, tc.values)
			if rec.Code != tc.status {
				t.Errorf("status = %d; want %d", rec.Code, tc.status)
			}
			body := decodeEnvelope(t, rec)
			if success, _ := body["success"].(bool); success != (tc.status == http.StatusOK) {
				t.Errorf("success = %v for status %d", body["success"], rec.Code)
			}
		})
	}

	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d; only the valid submission should persist", len(repo.saved))
	}
	if repo.saved[0].Kind != domain.SubmissionContact {
		t.Errorf("kind = %s", repo.saved[0].Kind)
	}
}

func TestContactFormStorageFailureIs5xx(t *testing.T) {
	s := &Server{
		config:   &config.Config{},
		notifier: notifications.NewEmailNotifier(nil),
		repos:    &repository.Repositories{Submissions: &fakeSubmissionRepo{failing: true}},
	}

	rec := postForm(t, s.handleContactForm, url.Values{
		"name": {"A"}, "email": {"a@b.test"}, "message": {"hi"},
	})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", rec.Code)
	}
}

func TestContactFormNotifiesOperator(t *testing.T) {
	mail := notifications.NewMockEmailProvider()
	s := &Server{
		config:   &config.Config{Business: config.Business{OperatorEmail: "ops@townbeat.test"}},
		notifier: notifications.NewEmailNotifier(mail),
		repos:    &repository.Repositories{Submissions: &fakeSubmissionRepo{}},
	}

	rec := postForm(t, s.handleContactForm, url.Values{
		"name": {"A"}, "email": {"a@b.test"}, "message": {"hi"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(mail.Sent) != 1 || mail.Sent[0].To != "ops@townbeat.test" {
		t.Errorf("operator mail = %+v", mail.Sent)
	}
}

type webhookOrderRepo struct {
	orders []*domain.Order
}

func (f *webhookOrderRepo) Create(_ context.Context, o *domain.Order) error {
	o.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, o)
	return nil
}

func (f *webhookOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *webhookOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.SessionID == sessionID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *webhookOrderRepo) MarkPaid(_ context.Context, sessionID, customerRef string, paidAt time.Time) error {
	for _, o := range f.orders {
		if o.SessionID == sessionID && o.Status == domain.OrderStatusPending {
			o.Status = domain.OrderStatusPaid
			o.CustomerRef = customerRef
			o.PaidAt = paidAt
		}
	}
	return nil
}

func (f *webhookOrderRepo) UpdateStatus(_ context.Context, _ int64, _ string) error { return nil }

func (f *webhookOrderRepo) ListByUser(_ context.Context, _ int64, _, _ int) ([]domain.Order, error) {
	return nil, nil
}

func (f *webhookOrderRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Order, error) {
	return nil, nil
}

func newWebhookServer(provider *payments.MockProvider, orders *webhookOrderRepo) *Server {
	svc := checkout.NewService(orders, cart.NewMemoryStore(), provider,
		notifications.NewEmailNotifier(notifications.NewMockEmailProvider()),
		checkout.NewMemoryProcessedStore(), checkout.Config{SiteName: "Townbeat"})
	return &Server{config: &config.Config{}, checkout: svc}
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	provider := payments.NewMockProvider()
	provider.WebhookErr = errors.New("signature mismatch")
	s := newWebhookServer(provider, &webhookOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader("{}"))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()
	s.handlePaymentWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestWebhookEndpointMalformedPayloadIsServerError(t *testing.T) {
	provider := payments.NewMockProvider()
	provider.WebhookErr = fmt.Errorf("decode session: %w", payments.ErrPayload)
	s := newWebhookServer(provider, &webhookOrderRepo{})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader("not json"))
	req.Header.Set("Stripe-Signature", "sig")
	rec := httptest.NewRecorder()
	s.handlePaymentWebhook(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; a signed but unparsable payload is our failure, not the sender's", rec.Code)
	}
}

func TestWebhookEndpointAcknowledgesVerifiedDeliveries(t *testing.T) {
	orders := &webhookOrderRepo{}
	orders.Create(context.Background(), &domain.Order{
		SessionID: "cs_1", Status: domain.OrderStatusPending, CustomerEmail: "a@b.test",
	})

	provider := payments.NewMockProvider()
	provider.WebhookEvent = &payments.WebhookEvent{
		Type:      payments.EventCheckoutCompleted,
		SessionID: "cs_1",
	}
	s := newWebhookServer(provider, orders)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader("{}"))
		req.Header.Set("Stripe-Signature", "sig")
		rec := httptest.NewRecorder()
		s.handlePaymentWebhook(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d status = %d; want 200", i, rec.Code)
		}
		body := decodeEnvelope(t, rec)
		if received, _ := body["received"].(bool); !received {
			t.Errorf("delivery %d body = %v", i, body)
		}
	}

	if orders.orders[0].Status != domain.OrderStatusPaid {
		t.Errorf("order status = %s; want paid", orders.orders[0].Status)
	}
}

func TestDirectoryListingsFilterAndOrder(t *testing.T) {
	s := &Server{}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	in := []domain.Business{
		{Name: "Zeta", Tier: domain.TierBasic},
		{Name: "Acme", Tier: domain.TierFeatured},
		{Name: "Beta", Tier: domain.TierStandard},
		{Name: "Alpha", Tier: domain.TierBasic},
		{Name: "Gone", Tier: domain.TierFeatured, ActiveUntil: "2025-01-01"},
	}

	got := s.directoryListings(in, now)
	want := []string{"Acme", "Beta", "Alpha", "Zeta"}
	if len(got) != len(want) {
		t.Fatalf("len = %d; want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("got[%d] = %s; want %s", i, got[i].Name, name)
		}
	}
}

func TestSlugify(t *testing.T) {
	slug := slugify("Hello, World! 2025")
	if !strings.HasPrefix(slug, "hello-world-2025-") {
		t.Errorf("slug = %s", slug)
	}
	if strings.ContainsAny(slug, " ,!") {
		t.Errorf("slug carries punctuation: %s", slug)
	}

	a, b := slugify("Same Title"), slugify("Same Title")
	if a == b {
		t.Error("slugs for identical titles must still differ")
	}
}
