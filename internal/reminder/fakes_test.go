package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"WeddingSite/internal/models"
)

type staticRecipients []models.Recipient

func (s staticRecipients) ListReminderRecipients(ctx context.Context) ([]models.Recipient, error) {
	return s, nil
}

type staticCampaigns []models.Campaign

func (s staticCampaigns) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s, nil
}

// memLog enforces the unique key the way the database constraint does.
type memLog struct {
	mu       sync.Mutex
	rows     map[models.SendKey]models.SendLogEntry
	ensured  int
	released []string
}

func newMemLog() *memLog {
	return &memLog{rows: make(map[models.SendKey]models.SendLogEntry)}
}

func (m *memLog) EnsureSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured++
	return nil
}

func (m *memLog) Claim(ctx context.Context, e models.SendLogEntry) (*models.SendLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[e.Key()]; ok {
		return &existing, nil
	}
	m.rows[e.Key()] = e
	return &e, nil
}

func (m *memLog) Release(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.rows {
		if v.ID == id {
			delete(m.rows, k)
		}
	}
	m.released = append(m.released, id)
	return nil
}

func (m *memLog) entries() []models.SendLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SendLogEntry, 0, len(m.rows))
	for _, v := range m.rows {
		out = append(out, v)
	}
	return out
}

// rivalLog behaves as if another run always won the claim first.
type rivalLog struct{ *memLog }

func (r *rivalLog) Claim(ctx context.Context, e models.SendLogEntry) (*models.SendLogEntry, error) {
	e.ID = "someone-else"
	return &e, nil
}

type sentMail struct {
	to, subject, html string
}

type recordingMailer struct {
	mu       sync.Mutex
	readyErr error
	failFor  map[string]error
	sent     []sentMail
}

func (m *recordingMailer) Ready() error { return m.readyErr }

func (m *recordingMailer) Send(ctx context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

func (m *recordingMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.ReminderEvent
}

func (r *recordingEvents) Publish(ctx context.Context, ev models.ReminderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

var errQuota = errors.New("quota exceeded")

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptrTime(s string) *time.Time {
	t := at(s)
	return &t
}

func ptrInt(n int) *int { return &n }
