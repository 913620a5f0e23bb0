package mail

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	"github.com/supportdesk/ticketing-service/internal/config"
)

// Email is a minimal plaintext message.
type Email struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender dispatches a single email over the mail transport.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPSender sends mail through an SMTP relay. Credentials are injected at
// construction; the dialer negotiates STARTTLS opportunistically and uses
// implicit TLS when UseTLS is set.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender from transport configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.UseTLS
	return &SMTPSender{dialer: dialer}
}

// Send composes and dispatches the message. The underlying dialer has no
// context support; ctx is accepted for interface symmetry.
func (s *SMTPSender) Send(_ context.Context, email Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)
	return s.dialer.DialAndSend(msg)
}
