// Package notifications provides interfaces for sending notifications
package notifications

import (
	"context"
)

// Email represents an email to send
type Email struct {
	To          string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

// Attachment is an inline or attached file
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailProvider defines the interface for email providers
type EmailProvider interface {
	Send(ctx context.Context, email Email) error
}

// Notifier is the surface the rest of the application talks to
type Notifier interface {
	SendEmail(ctx context.Context, email Email) error
}

// EmailNotifier implements Notifier using a configurable provider
type EmailNotifier struct {
	provider EmailProvider
}

// NewEmailNotifier creates a notifier over the given provider
func NewEmailNotifier(provider EmailProvider) *EmailNotifier {
	return &EmailNotifier{provider: provider}
}

func (n *EmailNotifier) SendEmail(ctx context.Context, email Email) error {
	if n.provider == nil {
		return nil // Silently skip if not configured
	}
	return n.provider.Send(ctx, email)
}

// MockEmailProvider records sends for tests and development
type MockEmailProvider struct {
	Sent    []Email
	FailFor map[string]error
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{FailFor: map[string]error{}}
}

func (m *MockEmailProvider) Send(ctx context.Context, email Email) error {
	if err, ok := m.FailFor[email.To]; ok {
		return err
	}
	m.Sent = append(m.Sent, email)
	return nil
}
