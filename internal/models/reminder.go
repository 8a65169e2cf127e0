package models

import (
	"encoding/json"
	"time"
)

type ReminderKind string

const (
	KindAbsolute ReminderKind = "ABSOLUTE"
	KindDaysOut  ReminderKind = "DAYS_OUT"
)

// SendKey is the deduplication key of the send log.
type SendKey struct {
	CampaignTitle  string
	RecipientEmail string
	DayBucket      string
}

type SendLogEntry struct {
	ID             string       `json:"id"`
	CampaignTitle  string       `json:"campaign_title"`
	RecipientEmail string       `json:"recipient_email"`
	DayBucket      string       `json:"day_bucket"`
	Kind           ReminderKind `json:"kind"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (e SendLogEntry) Key() SendKey {
	return SendKey{
		CampaignTitle:  e.CampaignTitle,
		RecipientEmail: e.RecipientEmail,
		DayBucket:      e.DayBucket,
	}
}

type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeDuplicate Outcome = "skipped_duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Summary is the result of one dispatcher run.
type Summary struct {
	OK         bool     `json:"ok"`
	Processed  int      `json:"processed"`
	Sent       int      `json:"sent,omitempty"`
	Failed     int      `json:"failed,omitempty"`
	Duplicates int      `json:"duplicates,omitempty"`
	Malformed  int      `json:"malformed,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// MarshalJSON renders a run that failed before processing anything as
// {"ok": false, "error": "..."}.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	if s.OK || s.Processed > 0 {
		return json.Marshal(plain(s))
	}

	return json.Marshal(struct {
		OK        bool     `json:"ok"`
		Malformed int      `json:"malformed,omitempty"`
		Skipped   []string `json:"skipped,omitempty"`
		Error     string   `json:"error"`
	}{s.OK, s.Malformed, s.Skipped, s.Error})
}

// ReminderEvent is published for every claim-and-send outcome.
type ReminderEvent struct {
	Campaign  string       `json:"campaign"`
	Email     string       `json:"email"`
	DayBucket string       `json:"day_bucket"`
	Kind      ReminderKind `json:"kind"`
	Outcome   Outcome      `json:"outcome"`
	Error     string       `json:"error,omitempty"`
	At        time.Time    `json:"at"`
}

type HistoryFilter struct {
	Campaign string
	Email    string
	Limit    int
}
