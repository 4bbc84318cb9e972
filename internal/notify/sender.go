package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/subtrack/internal/config"
)

// Sender delivers a composed reminder.
type Sender interface {
	Send(subject, body string) error
}

// SMTPSender mails reminders through the configured SMTP server.
type SMTPSender struct {
	cfg    config.NotifyConfig
	logger *logrus.Logger
}

// NewSMTPSender creates a new email sender.
func NewSMTPSender(cfg config.NotifyConfig, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Message builds the e-mail without sending it.
func (s *SMTPSender) Message(subject, body string) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.From
	if e.From == "" {
		e.From = s.cfg.Username
	}
	for _, to := range strings.Split(s.cfg.To, ",") {
		if to = strings.TrimSpace(to); to != "" {
			e.To = append(e.To, to)
		}
	}
	e.Subject = subject
	e.Text = []byte(body)
	return e
}

// Send mails subject and body to every configured recipient.
func (s *SMTPSender) Send(subject, body string) error {
	e := s.Message(subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send reminder to %s: %v", s.cfg.To, err)
		return fmt.Errorf("sending reminder: %w", err)
	}

	s.logger.Infof("Reminder sent to %s: %s", s.cfg.To, subject)
	return nil
}

// LogSender writes reminders to the log instead of mailing them.
type LogSender struct {
	Logger *logrus.Logger
}

// Send logs the reminder at info level.
func (l LogSender) Send(subject, body string) error {
	l.Logger.WithField("subject", subject).Info(body)
	return nil
}
