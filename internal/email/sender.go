package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers mail over SMTP.
type Sender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

var _ Mailer = (*Sender)(nil)

func (s *Sender) Ready() error {
	if s.Host == "" || s.From == "" {
		return fmt.Errorf("smtp: %w", ErrNotConfigured)
	}
	if s.User != "" && s.Password == "" {
		return fmt.Errorf("smtp password missing for %s: %w", s.User, ErrNotConfigured)
	}
	return nil
}

// Send builds the message and hands it to the SMTP server.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.From, s.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		code := smtpStatus(err)
		return &SendError{
			Kind:   classifySMTP(code),
			Status: code,
			Err:    fmt.Errorf("smtp send error: %w", err),
		}
	}

	return nil
}
