// Package payments provides interfaces for payment processing
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPayload marks a delivery whose signature checked out but whose body
// could not be parsed. Distinct from a signature failure so callers can
// answer it as a processing error rather than blaming the sender.
var ErrPayload = errors.New("webhook payload malformed")

// LineItem is one purchasable line sent to the payment provider.
// UnitPrice is in cents.
type LineItem struct {
	Name      string
	UnitPrice int64
	Qty       int64
	Currency  string
}

// Session represents a hosted checkout session at the provider.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
}

// Event types surfaced by VerifyWebhook.
const (
	EventCheckoutCompleted = "checkout.session.completed"
)

// WebhookEvent is a verified, parsed webhook delivery. Completion of a
// checkout session is the single trustworthy signal that payment succeeded.
// CustomerID is the provider's customer identifier minted for the session;
// it is the only handle later billing-portal calls accept.
type WebhookEvent struct {
	Type          string
	SessionID     string
	CustomerID    string
	CustomerEmail string
	AmountTotal   int64
}

// Provider defines the interface for payment providers
type Provider interface {
	CreateCheckoutSession(ctx context.Context, items []LineItem, customerEmail, successURL, cancelURL string) (*Session, error)
	// CreatePortalSession needs the provider-side customer ID captured from
	// a completed checkout session; an email address will not do.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// VerifyWebhook checks the payload signature before parsing. A signature
	// failure is terminal for that delivery: no side effect may be taken.
	VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error)
}

// MockProvider is a scriptable provider for development and tests
type MockProvider struct {
	WebhookEvent   *WebhookEvent
	WebhookErr     error
	FailCreate     bool
	PortalCustomer string // last customer ID a portal session was created for
	created        int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, items []LineItem, customerEmail, successURL, cancelURL string) (*Session, error) {
	if m.FailCreate {
		return nil, fmt.Errorf("mock provider: create refused")
	}
	m.created++
	var total int64
	for _, it := range items {
		total += it.UnitPrice * it.Qty
	}
	return &Session{
		ID:            fmt.Sprintf("cs_mock_%d_%d", m.created, time.Now().Unix()),
		URL:           "https://pay.example.test/session",
		PaymentStatus: "unpaid",
		CustomerEmail: customerEmail,
		AmountTotal:   total,
	}, nil
}

func (m *MockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	m.PortalCustomer = customerID
	return "https://pay.example.test/portal", nil
}

func (m *MockProvider) VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if m.WebhookErr != nil {
		return nil, m.WebhookErr
	}
	return m.WebhookEvent, nil
}
