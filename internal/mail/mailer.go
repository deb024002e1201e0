package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/deephumans/deephumans/internal/config"
)

// Mailer sends HTML mail over SMTP via gomail.
type Mailer struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.cfg.Host == "" || m.cfg.Port == 0 || m.cfg.From == "" {
		return fmt.Errorf("mail transport not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}
