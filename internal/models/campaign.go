package models

import "time"

// Campaign is a reminder definition. Exactly one of SendAt and
// DaysBeforeDeadline is expected to be set.
type Campaign struct {
	Title              string     `json:"title"`
	TemplateIndex      int        `json:"template_index"`
	SendAt             *time.Time `json:"send_at,omitempty"`
	DaysBeforeDeadline *int       `json:"days_before_deadline,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
