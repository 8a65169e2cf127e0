package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo delivers mail through the Brevo transactional API.
type Brevo struct {
	apiKey   string
	from     string
	fromName string
	http     *http.Client
}

var _ Mailer = (*Brevo)(nil)

func NewBrevo(apiKey, from, fromName string) *Brevo {
	return &Brevo{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (b *Brevo) Ready() error {
	if b.apiKey == "" || b.from == "" {
		return fmt.Errorf("brevo: %w", ErrNotConfigured)
	}
	return nil
}

func (b *Brevo) Send(ctx context.Context, to, subject, html string) error {
	payload := brevoEmail{
		Sender:      brevoAddress{Email: b.from, Name: b.fromName},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return &SendError{Kind: FailureOther, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &SendError{
			Kind:   classifyHTTP(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("brevo send failed: %s %s", resp.Status, bytes.TrimSpace(body)),
		}
	}
	return nil
}
