package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"townbeat/internal/cart"
	"townbeat/internal/domain"
	"townbeat/internal/notifications"
	"townbeat/internal/payments"
)

// fakeOrderRepo implements the subset of repository.OrderRepository the
// checkout service touches.
type fakeOrderRepo struct {
	orders []*domain.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	o.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.SessionID == sessionID {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) MarkPaid(_ context.Context, sessionID, customerRef string, paidAt time.Time) error {
	for _, o := range f.orders {
		if o.SessionID == sessionID && o.Status == domain.OrderStatusPending {
			o.Status = domain.OrderStatusPaid
			o.CustomerRef = customerRef
			o.PaidAt = paidAt
		}
	}
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
		}
	}
	return nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	orders   *fakeOrderRepo
	carts    cart.Store
	provider *payments.MockProvider
	mail     *notifications.MockEmailProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orders := &fakeOrderRepo{}
	carts := cart.NewMemoryStore()
	provider := payments.NewMockProvider()
	mail := notifications.NewMockEmailProvider()

	svc := NewService(orders, carts, provider, notifications.NewEmailNotifier(mail),
		NewMemoryProcessedStore(), Config{
			SuccessURL:    "https://townbeat.test/shop/thanks",
			CancelURL:     "https://townbeat.test/shop/cart",
			Currency:      "usd",
			OperatorEmail: "orders@townbeat.test",
			SiteName:      "Townbeat",
		})
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, orders: orders, carts: carts, provider: provider, mail: mail}
}

func (f *fixture) fillCart(t *testing.T, user *domain.User) {
	t.Helper()
	c := cart.Add(cart.Cart{}, cart.Item{ProductID: 1, Name: "Mug", UnitPrice: 1500, Qty: 2})
	c = cart.Add(c, cart.Item{ProductID: 2, Name: "Tote", UnitPrice: 2200, Qty: 1})
	if err := f.carts.Save(context.Background(), CartKey(user.ID), c); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

var buyer = &domain.User{ID: 7, Email: "buyer@example.com", Name: "Buyer"}

func TestStartRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background(), buyer)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v; want ErrEmptyCart", err)
	}
	if len(f.orders.orders) != 0 {
		t.Error("no order should be created for an empty cart")
	}
}

func TestStartCreatesPendingOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)

	url, err := f.svc.Start(context.Background(), buyer)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if url == "" {
		t.Error("expected a redirect URL")
	}

	if len(f.orders.orders) != 1 {
		t.Fatalf("orders = %d; want 1", len(f.orders.orders))
	}
	o := f.orders.orders[0]
	if o.Status != domain.OrderStatusPending {
		t.Errorf("status = %s", o.Status)
	}
	if o.Total != 5200 {
		t.Errorf("total = %d; want 5200", o.Total)
	}
	if o.SessionID == "" || o.PickupCode == "" {
		t.Errorf("order missing session/pickup identifiers: %+v", o)
	}

	// Cart stays intact until the webhook confirms payment.
	c, _ := f.carts.Load(context.Background(), CartKey(buyer.ID))
	if len(c.Items) != 2 {
		t.Errorf("cart should remain intact after starting checkout, has %d lines", len(c.Items))
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)

	f.provider.WebhookErr = errors.New("signature mismatch")
	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "t=1,v1=bad")
	if !errors.Is(err, ErrSignature) {
		t.Fatalf("err = %v; want ErrSignature", err)
	}

	if len(f.mail.Sent) != 0 {
		t.Error("no email may be sent for an unverified delivery")
	}
	if f.orders.orders[0].Status != domain.OrderStatusPending {
		t.Error("order must be untouched after a signature failure")
	}
}

func TestWebhookMarksPaidAndSendsBothEmails(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)
	sessionID := f.orders.orders[0].SessionID

	f.provider.WebhookEvent = &payments.WebhookEvent{
		Type:       payments.EventCheckoutCompleted,
		SessionID:  sessionID,
		CustomerID: "cus_abc123",
	}
	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	o := f.orders.orders[0]
	if o.Status != domain.OrderStatusPaid {
		t.Errorf("status = %s; want paid", o.Status)
	}
	if o.PaidAt.IsZero() {
		t.Error("paidAt not set")
	}
	if o.CustomerRef != "cus_abc123" {
		t.Errorf("customerRef = %q; want the provider customer ID", o.CustomerRef)
	}

	if len(f.mail.Sent) != 2 {
		t.Fatalf("emails sent = %d; want customer + operator", len(f.mail.Sent))
	}
	if f.mail.Sent[0].To != "buyer@example.com" {
		t.Errorf("first email to %s", f.mail.Sent[0].To)
	}
	if f.mail.Sent[1].To != "orders@townbeat.test" {
		t.Errorf("second email to %s", f.mail.Sent[1].To)
	}
	if !strings.Contains(f.mail.Sent[0].Body, o.PickupCode) {
		t.Error("receipt body missing pickup code")
	}
	if len(f.mail.Sent[0].Attachments) != 1 || f.mail.Sent[0].Attachments[0].ContentType != "image/png" {
		t.Error("receipt missing QR attachment")
	}

	// Payment confirmed clears the cart.
	c, _ := f.carts.Load(context.Background(), CartKey(buyer.ID))
	if len(c.Items) != 0 {
		t.Errorf("cart should be cleared after payment, has %d lines", len(c.Items))
	}
}

func TestWebhookDeduplicatesDeliveries(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)
	sessionID := f.orders.orders[0].SessionID

	f.provider.WebhookEvent = &payments.WebhookEvent{
		Type:      payments.EventCheckoutCompleted,
		SessionID: sessionID,
	}

	for i := 0; i < 3; i++ {
		if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	if len(f.mail.Sent) != 2 {
		t.Errorf("emails sent = %d; provider retries must not produce more", len(f.mail.Sent))
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := newFixture(t)

	f.provider.WebhookEvent = &payments.WebhookEvent{Type: "checkout.session.expired", SessionID: "cs_x"}
	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if len(f.mail.Sent) != 0 {
		t.Error("non-completion events must not trigger email")
	}
}

func TestOperatorCopyFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)
	sessionID := f.orders.orders[0].SessionID

	f.mail.FailFor["orders@townbeat.test"] = errors.New("mailbox full")
	f.provider.WebhookEvent = &payments.WebhookEvent{
		Type:      payments.EventCheckoutCompleted,
		SessionID: sessionID,
	}

	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("operator copy failure must not fail the webhook: %v", err)
	}
	if len(f.mail.Sent) != 1 || f.mail.Sent[0].To != "buyer@example.com" {
		t.Errorf("customer receipt should still be delivered: %+v", f.mail.Sent)
	}
}

func TestWebhookMalformedPayloadIsNotSignatureFailure(t *testing.T) {
	f := newFixture(t)

	f.provider.WebhookErr = fmt.Errorf("decode session: %w", payments.ErrPayload)
	err := f.svc.HandleWebhook(context.Background(), []byte("not json"), "sig")
	if err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
	if errors.Is(err, ErrSignature) {
		t.Error("a signed but unparsable payload must not be reported as a signature failure")
	}
	if !errors.Is(err, payments.ErrPayload) {
		t.Errorf("err = %v; want the payload sentinel preserved", err)
	}
}

func TestPortalURLUsesStoredCustomer(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)

	f.provider.WebhookEvent = &payments.WebhookEvent{
		Type:       payments.EventCheckoutCompleted,
		SessionID:  f.orders.orders[0].SessionID,
		CustomerID: "cus_abc123",
	}
	if err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	url, err := f.svc.PortalURL(context.Background(), buyer.ID)
	if err != nil {
		t.Fatalf("portal: %v", err)
	}
	if url == "" {
		t.Error("expected a portal URL")
	}
	if f.provider.PortalCustomer != "cus_abc123" {
		t.Errorf("portal opened for %q; want the stored customer ID, never an email", f.provider.PortalCustomer)
	}
}

func TestPortalURLRequiresPaidOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, buyer)
	f.svc.Start(context.Background(), buyer)

	// Pending order only; the provider never minted a customer.
	_, err := f.svc.PortalURL(context.Background(), buyer.ID)
	if !errors.Is(err, ErrNoBillingAccount) {
		t.Fatalf("err = %v; want ErrNoBillingAccount", err)
	}
	if f.provider.PortalCustomer != "" {
		t.Error("no portal session may be created without a customer ID")
	}
}

func TestMemoryProcessedStore(t *testing.T) {
	s := NewMemoryProcessedStore()
	ctx := context.Background()

	first, err := s.MarkProcessed(ctx, "cs_1")
	if err != nil || !first {
		t.Fatalf("first mark: first=%v err=%v", first, err)
	}
	again, err := s.MarkProcessed(ctx, "cs_1")
	if err != nil || again {
		t.Fatalf("second mark: first=%v err=%v", again, err)
	}
}
