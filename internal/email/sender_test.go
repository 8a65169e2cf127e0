package email

import (
	"context"
	"errors"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"WeddingSite/internal/config"
)

func TestSender_Ready(t *testing.T) {
	s := &Sender{Host: "smtp.example.com", Port: 587, From: "rsvp@ourwedding.example"}
	require.NoError(t, s.Ready())

	s.User = "mailer"
	require.ErrorIs(t, s.Ready(), ErrNotConfigured)

	s.Password = "secret"
	require.NoError(t, s.Ready())

	require.ErrorIs(t, (&Sender{From: "a@b.c"}).Ready(), ErrNotConfigured)
}

func TestSender_SendHonoursCancelledContext(t *testing.T) {
	s := &Sender{Host: "localhost", Port: 1, From: "a@b.c"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Send(ctx, "x@y.z", "s", "b"), context.Canceled)
}

func TestSMTPStatus(t *testing.T) {
	typed := &textproto.Error{Code: 452, Msg: "4.2.2 mailbox full"}
	require.Equal(t, 452, smtpStatus(typed))
	require.Equal(t, FailureQuota, classifySMTP(smtpStatus(typed)))

	flat := errors.New("gomail: could not send email 1: 421 4.7.0 try again later")
	require.Equal(t, 421, smtpStatus(flat))
	require.Equal(t, FailureRateLimited, classifySMTP(smtpStatus(flat)))

	require.Equal(t, 0, smtpStatus(errors.New("connection refused")))
	require.Equal(t, 0, smtpStatus(errors.New("dial tcp 203.0.113.7:465: connect: connection refused")))
	require.Equal(t, 0, smtpStatus(errors.New("gomail: could not send email 1: sent 450 of 500")))
	require.Equal(t, 552, smtpStatus(errors.New("552-5.2.2 mailbox full")))
	require.Equal(t, FailureOther, classifySMTP(0))
}

func TestNew_SelectsProvider(t *testing.T) {
	m, err := New(&config.Config{MailProvider: "smtp", SMTPHost: "h", MailFrom: "a@b.c"})
	require.NoError(t, err)
	require.IsType(t, &Sender{}, m)

	m, err = New(&config.Config{MailProvider: "Brevo", BrevoAPIKey: "k", MailFrom: "a@b.c"})
	require.NoError(t, err)
	require.IsType(t, &Brevo{}, m)

	_, err = New(&config.Config{MailProvider: "pigeon"})
	require.Error(t, err)
}

func TestUnavailable(t *testing.T) {
	m := Unavailable(errors.New(`unknown mail provider "pigeon"`))

	require.ErrorIs(t, m.Ready(), ErrNotConfigured)
	require.ErrorIs(t, m.Send(context.Background(), "a@b.c", "s", "b"), ErrNotConfigured)
	require.Contains(t, m.Ready().Error(), "pigeon")
}

func TestNew_DefaultConfigIsNotReady(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	for _, key := range []string{"MAIL_PROVIDER", "SMTP_HOST"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	m, err := New(cfg)
	require.NoError(t, err)
	require.ErrorIs(t, m.Ready(), ErrNotConfigured)
}
