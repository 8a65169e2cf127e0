package email

import (
	"context"
	"fmt"
	"strings"

	"WeddingSite/internal/config"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Ready() error
	Send(ctx context.Context, to, subject, html string) error
}

// New returns the provider selected by MAIL_PROVIDER.
func New(cfg *config.Config) (Mailer, error) {
	switch strings.ToLower(cfg.MailProvider) {
	case "", "smtp":
		return &Sender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		}, nil
	case "brevo":
		return NewBrevo(cfg.BrevoAPIKey, cfg.MailFrom, cfg.MailFromName), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// Unavailable is a Mailer that reports err from every call. It stands in
// when the provider cannot be built so runs fail with a clear reason.
func Unavailable(err error) Mailer { return unavailable{err: err} }

type unavailable struct{ err error }

func (u unavailable) Ready() error { return fmt.Errorf("%w: %v", ErrNotConfigured, u.err) }

func (u unavailable) Send(ctx context.Context, to, subject, html string) error {
	return u.Ready()
}
