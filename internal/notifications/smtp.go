package notifications

import (
	"context"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"
)

// SMTPProvider sends email through an SMTP relay.
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPProvider creates a provider for the given relay.
func NewSMTPProvider(host string, port int, username, password, from string) *SMTPProvider {
	return &SMTPProvider{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (p *SMTPProvider) Send(_ context.Context, email Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)

	if email.HTML {
		m.SetBody("text/html", email.Body)
	} else {
		m.SetBody("text/plain", email.Body)
	}

	for _, att := range email.Attachments {
		data := att.Data
		m.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
		)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email.To, err)
	}
	return nil
}
