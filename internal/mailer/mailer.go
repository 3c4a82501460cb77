// Package mailer delivers notification emails over SMTP.
package mailer

import (
	"time"

	mail "github.com/go-mail/mail/v2"

	"github.com/nestegg/backend/internal/config"
)

// Mailer sends plain-text notification mail. It satisfies the service layer's
// EmailSender interface.
type Mailer struct {
	dialer *mail.Dialer
	sender string
}

func New(cfg config.SMTPConfig) *Mailer {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = 10 * time.Second

	return &Mailer{
		dialer: dialer,
		sender: cfg.Sender,
	}
}

// Send delivers a single message. Callers treat failures as non-fatal.
func (m *Mailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
