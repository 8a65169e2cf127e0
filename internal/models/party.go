package models

import "time"

type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// Party is one invitation on the guest list.
type Party struct {
	ID               string     `json:"id"`
	DisplayName      string     `json:"display_name"`
	ContactEmail     string     `json:"contact_email"`
	RSVPDeadline     *time.Time `json:"rsvp_deadline,omitempty"`
	RemindersEnabled bool       `json:"reminders_enabled"`

	RSVPStatus  RSVPStatus `json:"rsvp_status"`
	Headcount   int        `json:"headcount"`
	Message     string     `json:"message,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recipient is the read-only view of a party the reminder dispatcher works with.
type Recipient struct {
	DisplayName  string     `json:"display_name"`
	ContactEmail string     `json:"contact_email"`
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
}

type RSVPSubmission struct {
	Email     string `json:"email"`
	Attending bool   `json:"attending"`
	Headcount int    `json:"headcount"`
	Message   string `json:"message"`
}
